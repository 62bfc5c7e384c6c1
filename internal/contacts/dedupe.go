package contacts

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultNameDistance is the normalized levenshtein distance below
// which two contact names are treated as the same person.
const DefaultNameDistance = 0.4

// DuplicateGroup is one cluster of contacts resolved to a survivor
// plus the duplicates to fold into it. Confidence is the weakest
// pairwise similarity inside the group, in [0, 1].
type DuplicateGroup struct {
	Survivor   Contact
	Duplicates []Contact
	Confidence float64
}

// FindDuplicates clusters a contact list into duplicate groups. Two
// contacts match when they share an email address, or when their
// names are within maxDistance normalized levenshtein distance of
// each other. Contacts that match nothing are omitted. Groups come
// back ordered by descending confidence.
func FindDuplicates(list []Contact, maxDistance float64) []DuplicateGroup {
	if maxDistance <= 0 {
		maxDistance = DefaultNameDistance
	}

	assigned := make([]bool, len(list))
	var groups []DuplicateGroup

	for i := range list {
		if assigned[i] {
			continue
		}
		members := []Contact{list[i]}
		confidence := 1.0
		for j := i + 1; j < len(list); j++ {
			if assigned[j] {
				continue
			}
			if !matchExact(list[i], list[j]) && !matchFuzzyName(list[i], list[j], maxDistance) {
				continue
			}
			assigned[j] = true
			members = append(members, list[j])
			if s := nameSimilarity(list[i], list[j]); s < confidence {
				confidence = s
			}
		}
		if len(members) < 2 {
			continue
		}
		assigned[i] = true

		survivor, duplicates := chooseSurvivor(members)
		groups = append(groups, DuplicateGroup{
			Survivor:   survivor,
			Duplicates: duplicates,
			Confidence: confidence,
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Confidence > groups[b].Confidence
	})
	return groups
}

// MergedSurvivor returns the group's survivor carrying metadata from
// the duplicates: the union of all email addresses, and cards from a
// duplicate when the survivor has none.
func MergedSurvivor(g DuplicateGroup) Contact {
	merged := g.Survivor
	for _, dup := range g.Duplicates {
		for _, email := range dup.Emails {
			if !merged.HasEmail(email) {
				merged.Emails = append(merged.Emails, email)
			}
		}
		if len(merged.Cards) == 0 && len(dup.Cards) > 0 {
			merged.Cards = dup.Cards
		}
	}
	return merged
}

// FilterGroups drops ignored pairs from duplicate groups: a duplicate
// leaves its group when ignore reports true for it against the
// survivor, and a group with no duplicates left disappears. Ignoring
// a pair of two non-survivors does not split the group; both still
// matched the survivor.
func FilterGroups(groups []DuplicateGroup, ignore func(a, b ID) bool) []DuplicateGroup {
	if ignore == nil {
		return groups
	}

	filtered := make([]DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		kept := make([]Contact, 0, len(g.Duplicates))
		for _, dup := range g.Duplicates {
			if !ignore(g.Survivor.ID, dup.ID) {
				kept = append(kept, dup)
			}
		}
		if len(kept) == 0 {
			continue
		}
		g.Duplicates = kept
		filtered = append(filtered, g)
	}
	return filtered
}

func matchExact(a, b Contact) bool {
	for _, email := range a.Emails {
		if b.HasEmail(email) {
			return true
		}
	}
	return false
}

func matchFuzzyName(a, b Contact, maxDistance float64) bool {
	if a.Name == "" || b.Name == "" {
		return false
	}
	dist := levenshtein.ComputeDistance(strings.ToUpper(a.Name), strings.ToUpper(b.Name))
	maxlen := float64(len(a.Name))
	if len(b.Name) > len(a.Name) {
		maxlen = float64(len(b.Name))
	}
	return float64(dist)/maxlen < maxDistance
}

func nameSimilarity(a, b Contact) float64 {
	if matchExact(a, b) {
		return 1
	}
	maxlen := max(len(a.Name), len(b.Name))
	if maxlen == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a.Name, b.Name))/float64(maxlen)
}

// chooseSurvivor picks the record to keep: the one with the most
// cards, then the most emails, then the first seen.
func chooseSurvivor(members []Contact) (Contact, []Contact) {
	keep := 0
	for i := 1; i < len(members); i++ {
		if len(members[i].Cards) > len(members[keep].Cards) {
			keep = i
			continue
		}
		if len(members[i].Cards) == len(members[keep].Cards) &&
			len(members[i].Emails) > len(members[keep].Emails) {
			keep = i
		}
	}
	duplicates := make([]Contact, 0, len(members)-1)
	for i, m := range members {
		if i != keep {
			duplicates = append(duplicates, m)
		}
	}
	return members[keep], duplicates
}

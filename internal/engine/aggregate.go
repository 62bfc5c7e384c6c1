package engine

import "github.com/ldellis/rolo/internal/contacts"

// UnitResult is the outcome of one update-and-remove unit: at most
// one updated survivor, the IDs actually removed, the failure
// messages collected along the way, and the number of contacts the
// unit was responsible for.
type UnitResult struct {
	Updated *contacts.Contact
	Removed []contacts.ID
	Errors  []string
	Total   int
}

// Summary is the reduction of all unit results of one batch
// operation. Total is the sum of unit totals; the slices concatenate
// unit fields in completion order, which is unspecified across units.
type Summary struct {
	Updated []contacts.Contact
	Removed []contacts.ID
	Errors  []string
	Total   int
}

// Summarize reduces unit results into one summary. Pure and
// commutative on every field's mathematical result: permuting the
// input changes slice order but never the total or the multiset of
// entries. Empty input yields the zero summary.
func Summarize(results []UnitResult) Summary {
	var s Summary
	for _, r := range results {
		if r.Updated != nil {
			s.Updated = append(s.Updated, *r.Updated)
		}
		s.Removed = append(s.Removed, r.Removed...)
		s.Errors = append(s.Errors, r.Errors...)
		s.Total += r.Total
	}
	return s
}

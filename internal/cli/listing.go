package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/errs"
	"github.com/ldellis/rolo/internal/logging"
)

// percentScale converts a confidence fraction to a percentage.
const percentScale = 100

// loadContacts returns the address book, from the snapshot cache when
// it is fresh, otherwise from the store. Fresh listings are cached and
// fed to the email index.
func loadContacts(ctx context.Context, rt *runtime, refresh bool) ([]contacts.Contact, error) {
	log := logging.FromContext(ctx)

	if !refresh {
		if cached, err := rt.Snapshot.Load(); err == nil {
			log.Debug().Ctx(ctx).
				Str("component", "cli").
				Str("operation", "load_contacts").
				Int("contacts", len(cached)).
				Msg("serving contacts from snapshot")
			return cached, nil
		}
	}

	list, err := rt.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := rt.Snapshot.Save(list); err != nil {
		log.Warn().Ctx(ctx).
			Str("component", "cli").
			Err(err).
			Msg("snapshot save failed")
	}
	if err := rt.Emails.Put(list...); err != nil {
		log.Warn().Ctx(ctx).
			Str("component", "cli").
			Err(err).
			Msg("email index update failed")
	}
	return list, nil
}

// findContact locates one contact by ID, refreshing the listing when
// the cached one does not know the ID.
func findContact(ctx context.Context, rt *runtime, id contacts.ID) (contacts.Contact, error) {
	for _, refresh := range []bool{false, true} {
		list, err := loadContacts(ctx, rt, refresh)
		if err != nil {
			return contacts.Contact{}, err
		}
		for _, c := range list {
			if c.ID == id {
				return c, nil
			}
		}
	}
	return contacts.Contact{}, errs.Errorf(errs.ENOTFOUND, "no contact with ID %s", id)
}

// printDuplicateGroups renders duplicate groups, survivor first.
func printDuplicateGroups(w io.Writer, groups []contacts.DuplicateGroup) {
	fmt.Fprintf(w, "Found %d duplicate group(s):\n", len(groups))
	for i, g := range groups {
		fmt.Fprintf(w, "\nGroup %d (confidence %.0f%%)\n", i+1, g.Confidence*percentScale)
		printContactLine(w, "keep", g.Survivor)
		for _, dup := range g.Duplicates {
			printContactLine(w, "fold", dup)
		}
	}
}

func printContactLine(w io.Writer, label string, c contacts.Contact) {
	fmt.Fprintf(w, "  %s  %s", label, c.Name)
	if email := c.PrimaryEmail(); email != "" {
		fmt.Fprintf(w, " <%s>", email)
	}
	fmt.Fprintf(w, "  [%s]\n", c.ID)
}

// printMergeSummary renders the outcome of a merge.
func printMergeSummary(w io.Writer, updated, removed int, failures []string) {
	fmt.Fprintf(w, "Merged: %d updated, %d removed", updated, removed)
	if len(failures) > 0 {
		fmt.Fprintf(w, ", %d failed", len(failures))
	}
	fmt.Fprintln(w)
	for _, msg := range failures {
		fmt.Fprintf(w, "  failed: %s\n", msg)
	}
}

package contacts

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for user-facing strings.
// Uses English locale for consistent number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// DefaultCreationFailure is shown when the store rejects a single
// create without giving a reason.
const DefaultCreationFailure = "Contact could not be created."

// DeletionSuccess returns the message shown after deleting count
// contacts, singular/plural aware.
func DeletionSuccess(count int) string {
	if count == 1 {
		return "Contact deleted."
	}
	return printer.Sprintf("%d contacts deleted.", count)
}

// AllDeletionSuccess returns the message shown after clearing the
// whole address book.
func AllDeletionSuccess() string {
	return "All contacts deleted."
}

// DeleteConfirmTitle returns the confirmation dialog title.
func DeleteConfirmTitle(all bool) string {
	if all {
		return "Delete all contacts"
	}
	return "Delete contacts"
}

// DeleteConfirmMessage returns the confirmation dialog body. The
// phrasing differs between wiping the address book and removing a
// known number of contacts.
func DeleteConfirmMessage(count int, all bool) string {
	if all {
		return "This will permanently delete every contact in your address book. Continue?"
	}
	if count == 1 {
		return "This will permanently delete 1 contact. Continue?"
	}
	return printer.Sprintf("This will permanently delete %d contacts. Continue?", count)
}

// UpdateSuccess returns the message shown after a contact update.
func UpdateSuccess(name string) string {
	return printer.Sprintf("Contact %s updated.", name)
}

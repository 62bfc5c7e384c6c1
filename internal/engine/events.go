package engine

import "github.com/ldellis/rolo/internal/contacts"

// Event is the sealed union of notifications the engine emits.
// Consumers switch on the concrete type; the unexported marker method
// keeps the set closed.
type Event interface {
	isEvent()
}

// Bus delivers engine events to listeners. Implementations must not
// block the emitting operation.
type Bus interface {
	Emit(Event)
}

// BatchCreated is emitted after a successful batch create.
type BatchCreated struct {
	Created []contacts.Contact
	Total   int
	Errors  []ItemError
	Mode    Mode
	State   string
}

// ContactUpdated is emitted after a single contact update, carrying
// the canonical contact and its card payloads.
type ContactUpdated struct {
	Contact contacts.Contact
	Cards   []contacts.Card
}

// ContactsChanged signals that the contact list is stale and should
// be re-fetched.
type ContactsChanged struct{}

// MergeCompleted carries the summary of a finished merge.
type MergeCompleted struct {
	Summary Summary
}

// SelectionCleared tells the UI to drop its contact selection.
type SelectionCleared struct{}

func (BatchCreated) isEvent()     {}
func (ContactUpdated) isEvent()   {}
func (ContactsChanged) isEvent()  {}
func (MergeCompleted) isEvent()   {}
func (SelectionCleared) isEvent() {}

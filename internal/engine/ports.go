package engine

import (
	"context"

	"github.com/ldellis/rolo/internal/contacts"
)

// Mode selects the delivery behavior of a batch creation.
type Mode string

const (
	// ModeDefault is a foreground create: no progress tracking, the
	// outcome is registered with the in-flight tracker.
	ModeDefault Mode = ""

	// ModeImport is a background bulk import: contacts are encrypted
	// first, the loader surface is shown, and progress is tracked.
	ModeImport Mode = "import"

	// ModeMerge marks the loader surface shown during a merge. Merge
	// is not cancellable, so the loader's close only dismisses it.
	ModeMerge Mode = "merge"
)

// ItemError is a per-contact failure reported by the store, carrying
// the wire error code. It doubles as the error returned by
// CreateSingular so callers keep access to the code.
type ItemError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ItemError) Error() string {
	if e.Message == "" {
		return contacts.DefaultCreationFailure
	}
	return e.Message
}

// CreationOutcome is the store's response to a batch create: the
// contacts that were created, per-item failures, and the number of
// contacts attempted.
type CreationOutcome struct {
	Created []contacts.Contact `json:"created"`
	Errors  []ItemError        `json:"errors,omitempty"`
	Total   int                `json:"total"`
}

// UpdateResult is the store's response to an update: the canonical
// contact and its card payloads after the write.
type UpdateResult struct {
	Contact contacts.Contact `json:"contact"`
	Cards   []contacts.Card  `json:"cards,omitempty"`
}

// RemoveError is a per-ID removal failure.
type RemoveError struct {
	ID      contacts.ID `json:"id"`
	Message string      `json:"message"`
}

// RemoveOutcome is the store's response to a targeted removal.
type RemoveOutcome struct {
	Removed []contacts.ID `json:"removed"`
	Errors  []RemoveError `json:"errors,omitempty"`
}

// CreateOptions carries the cancellation and progress wiring for a
// batch create. Progress is only reported when TrackProgress is set;
// small interactive creates skip the overhead.
type CreateOptions struct {
	Token         *Token
	TrackProgress bool

	// OnProgress receives the cumulative number of contacts the store
	// has finished processing. Nil when progress is not tracked.
	OnProgress func(completed int)
}

// Store is the remote contact store consumed by the engine. A store
// must honor context cancellation and the explicit token, returning a
// cancelled-kind error when an in-flight call is aborted.
type Store interface {
	CreateMany(ctx context.Context, list []contacts.Contact, opts CreateOptions) (CreationOutcome, error)
	UpdateOne(ctx context.Context, c contacts.Contact) (UpdateResult, error)
	UpdateUnencryptedOne(ctx context.Context, c contacts.Contact) (UpdateResult, error)
	RemoveMany(ctx context.Context, ids []contacts.ID) (RemoveOutcome, error)
	RemoveAll(ctx context.Context) error
}

// Encryptor prepares contact card payloads before an import reaches
// the store. A failure here aborts the whole batch before any remote
// call is made.
type Encryptor interface {
	Process(ctx context.Context, list []contacts.Contact) ([]contacts.Contact, error)
}

// Syncer reconciles local state with the server after mutations.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Notifier shows a user-facing success message.
type Notifier interface {
	Success(message string)
}

// Confirmation describes a confirmation dialog. Exactly one of the
// two callbacks runs: OnConfirm when the user accepts, OnCancel when
// the user declines.
type Confirmation struct {
	Title     string
	Message   string
	OnConfirm func(ctx context.Context) error
	OnCancel  func()
}

// Confirmer gates destructive operations behind a user decision.
type Confirmer interface {
	Confirm(ctx context.Context, c Confirmation) error
}

// LoaderConfig configures one activation of the loader surface.
// OnClose runs when the user dismisses the surface; import wires it
// to the token's cancel, merge leaves it a plain dismissal.
type LoaderConfig struct {
	Mode    Mode
	OnClose func()
}

// Loader is the modal progress surface shown during long batch
// operations. Deactivate must be safe to call regardless of whether
// the surface is visible.
type Loader interface {
	Activate(cfg LoaderConfig)
	Deactivate()
}

// Tracker registers in-flight operations for observability. The
// returned release function marks the operation finished.
type Tracker interface {
	Track(name string) (release func())
}

// Navigator moves the UI back to the contact list view.
type Navigator interface {
	ShowContactList()
}

// ContactCache is local derived state that must be invalidated when
// contacts are deleted.
type ContactCache interface {
	Evict(ids []contacts.ID) error
	Clear() error
}

// No-op collaborator defaults.

type passthroughEncryptor struct{}

func (passthroughEncryptor) Process(_ context.Context, list []contacts.Contact) ([]contacts.Contact, error) {
	return list, nil
}

type nopSyncer struct{}

func (nopSyncer) Sync(context.Context) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Success(string) {}

// acceptConfirmer proceeds without asking. Wired when no confirmation
// surface is available (non-interactive runs).
type acceptConfirmer struct{}

func (acceptConfirmer) Confirm(ctx context.Context, c Confirmation) error {
	if c.OnConfirm == nil {
		return nil
	}
	return c.OnConfirm(ctx)
}

type nopLoader struct{}

func (nopLoader) Activate(LoaderConfig) {}
func (nopLoader) Deactivate()           {}

type nopBus struct{}

func (nopBus) Emit(Event) {}

type nopTracker struct{}

func (nopTracker) Track(string) func() { return func() {} }

type nopNavigator struct{}

func (nopNavigator) ShowContactList() {}

// Package engine orchestrates batch operations against a remote
// contact store: bulk creation with optional encryption preprocessing,
// concurrent duplicate-group merging, contact updates, and bulk
// deletion. Each operation aggregates partial successes and failures
// into a single outcome, reports progress proportional to completed
// work, and supports cooperative cancellation where the operation
// allows it.
package engine

import (
	"errors"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/errs"
)

// Configuration errors.
var (
	ErrNilStore = errors.New("engine requires a store")
)

// Config wires the engine to its collaborators. Store is required;
// every other collaborator defaults to a no-op implementation so the
// engine stays usable as a bare library.
type Config struct {
	Store     Store
	Encryptor Encryptor
	Syncer    Syncer
	Notifier  Notifier
	Confirmer Confirmer
	Loader    Loader
	Bus       Bus
	Tracker   Tracker
	Navigator Navigator

	// Caches are invalidated by the deletion path: cleared wholesale
	// on delete-all, evicted per-ID on targeted deletion.
	Caches []ContactCache

	// ProgressListeners receive mapped progress values from batch
	// operations that track progress.
	ProgressListeners []ProgressFunc
}

// Engine coordinates contact batch operations. All methods are safe
// for concurrent use; each operation owns its own cancellation token
// and progress reporter.
type Engine struct {
	store     Store
	encryptor Encryptor
	syncer    Syncer
	notifier  Notifier
	confirmer Confirmer
	loader    Loader
	bus       Bus
	tracker   Tracker
	navigator Navigator
	caches    []ContactCache
	listeners []ProgressFunc
}

// New builds an Engine from cfg. Optional collaborators are replaced
// with no-ops when absent.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, ErrNilStore
	}

	e := &Engine{
		store:     cfg.Store,
		encryptor: cfg.Encryptor,
		syncer:    cfg.Syncer,
		notifier:  cfg.Notifier,
		confirmer: cfg.Confirmer,
		loader:    cfg.Loader,
		bus:       cfg.Bus,
		tracker:   cfg.Tracker,
		navigator: cfg.Navigator,
		caches:    cfg.Caches,
		listeners: cfg.ProgressListeners,
	}

	if e.encryptor == nil {
		e.encryptor = passthroughEncryptor{}
	}
	if e.syncer == nil {
		e.syncer = nopSyncer{}
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.confirmer == nil {
		e.confirmer = acceptConfirmer{}
	}
	if e.loader == nil {
		e.loader = nopLoader{}
	}
	if e.bus == nil {
		e.bus = nopBus{}
	}
	if e.tracker == nil {
		e.tracker = nopTracker{}
	}
	if e.navigator == nil {
		e.navigator = nopNavigator{}
	}

	return e, nil
}

// errorText returns the user-facing message for an error: the message
// of an application or item error, or the error text verbatim for
// anything else. Used when folding failures into summary error lists.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var itemErr ItemError
	if errors.As(err, &itemErr) && itemErr.Message != "" {
		return itemErr.Message
	}
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// evictFromCaches removes ids from every configured cache. Cache
// failures are reported to the caller for logging, never escalated.
func (e *Engine) evictFromCaches(ids []contacts.ID) []error {
	var failures []error
	for _, c := range e.caches {
		if err := c.Evict(ids); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

// clearCaches wipes every configured cache.
func (e *Engine) clearCaches() []error {
	var failures []error
	for _, c := range e.caches {
		if err := c.Clear(); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

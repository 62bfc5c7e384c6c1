package engine

import (
	"context"
	"fmt"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/logging"
)

// RemoveRequest describes a deletion: either an explicit ID list or
// the whole address book. Confirm gates the operation behind the
// confirmation surface.
type RemoveRequest struct {
	IDs     []contacts.ID
	All     bool
	Confirm bool
}

// Remove deletes contacts from the store. The success message is
// built ahead of the call so its count reflects the request, not
// whatever the store reports back.
//
// With Confirm set, the confirmation surface decides whether the
// deletion proceeds; declining is a clean no-op. On proceed the
// remote deletion runs first, then the success notification,
// navigation back to the contact list, and a selection-cleared event.
//
// Deleting everything additionally clears every local cache and then
// calls the event-sync hook, exactly once, after the remote clear has
// resolved. Targeted deletions instead evict just the removed IDs
// from the caches.
func (e *Engine) Remove(ctx context.Context, req RemoveRequest) error {
	log := logging.FromContext(ctx)
	opID := logging.GetOrGenerateTraceID(ctx)

	successMsg := contacts.DeletionSuccess(len(req.IDs))
	if req.All {
		successMsg = contacts.AllDeletionSuccess()
	}

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "remove").
		Str("op_id", opID).
		Bool("all", req.All).
		Int("ids", len(req.IDs)).
		Bool("confirm", req.Confirm).
		Msg("starting removal")

	proceed := func(ctx context.Context) error {
		return e.removeContacts(ctx, req, successMsg)
	}

	if !req.Confirm {
		return proceed(ctx)
	}

	return e.confirmer.Confirm(ctx, Confirmation{
		Title:     contacts.DeleteConfirmTitle(req.All),
		Message:   contacts.DeleteConfirmMessage(len(req.IDs), req.All),
		OnConfirm: proceed,
		OnCancel: func() {
			log.Debug().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "remove").
				Str("op_id", opID).
				Msg("removal declined")
		},
	})
}

func (e *Engine) removeContacts(ctx context.Context, req RemoveRequest, successMsg string) error {
	log := logging.FromContext(ctx)

	if req.All {
		if err := e.store.RemoveAll(ctx); err != nil {
			return fmt.Errorf("clearing contacts: %w", err)
		}
	} else {
		outcome, err := e.store.RemoveMany(ctx, req.IDs)
		if err != nil {
			return fmt.Errorf("removing contacts: %w", err)
		}
		for _, removeErr := range outcome.Errors {
			log.Warn().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "remove").
				Str("contact_id", string(removeErr.ID)).
				Str("error", removeErr.Message).
				Msg("contact removal failed")
		}
		for _, err := range e.evictFromCaches(outcome.Removed) {
			log.Warn().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "remove").
				Err(err).
				Msg("cache eviction failed")
		}
	}

	e.notifier.Success(successMsg)
	e.navigator.ShowContactList()
	e.bus.Emit(SelectionCleared{})

	if req.All {
		for _, err := range e.clearCaches() {
			log.Warn().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "remove").
				Err(err).
				Msg("cache clear failed")
		}
		if err := e.syncer.Sync(ctx); err != nil {
			return fmt.Errorf("syncing after clearing contacts: %w", err)
		}
	}

	return nil
}

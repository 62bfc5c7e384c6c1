package engine

import (
	"context"
	"fmt"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/logging"
)

// UpdateContact writes a contact to the store and, on success, emits
// ContactUpdated with the canonical contact and its cards. Used both
// standalone and as the survivor-update step of a merge unit.
func (e *Engine) UpdateContact(ctx context.Context, c contacts.Contact) (UpdateResult, error) {
	result, err := e.store.UpdateOne(ctx, c)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("updating contact %s: %w", c.ID, err)
	}
	e.bus.Emit(ContactUpdated{Contact: result.Contact, Cards: result.Cards})
	return result, nil
}

// Update performs a full contact update with the user-facing
// trimmings: success notification, event-sync, then the callback.
// The operation is registered with the in-flight tracker.
func (e *Engine) Update(ctx context.Context, c contacts.Contact, callback func(UpdateResult)) (UpdateResult, error) {
	return e.updateWith(ctx, c, callback, "update", e.UpdateContact)
}

// UpdateUnencrypted is Update against the metadata-only endpoint; the
// store skips card re-encryption.
func (e *Engine) UpdateUnencrypted(ctx context.Context, c contacts.Contact, callback func(UpdateResult)) (UpdateResult, error) {
	return e.updateWith(ctx, c, callback, "update_unencrypted", e.updateUnencryptedContact)
}

func (e *Engine) updateUnencryptedContact(ctx context.Context, c contacts.Contact) (UpdateResult, error) {
	result, err := e.store.UpdateUnencryptedOne(ctx, c)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("updating contact %s metadata: %w", c.ID, err)
	}
	e.bus.Emit(ContactUpdated{Contact: result.Contact, Cards: result.Cards})
	return result, nil
}

// updateWith runs one update endpoint and the shared follow-up
// sequence. The callback only fires once the sync hook has settled.
func (e *Engine) updateWith(
	ctx context.Context,
	c contacts.Contact,
	callback func(UpdateResult),
	operation string,
	endpoint func(context.Context, contacts.Contact) (UpdateResult, error),
) (UpdateResult, error) {
	log := logging.FromContext(ctx)
	opID := logging.GetOrGenerateTraceID(ctx)

	release := e.tracker.Track(operation + ":" + opID)
	defer release()

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", operation).
		Str("op_id", opID).
		Str("contact_id", string(c.ID)).
		Msg("starting contact update")

	result, err := endpoint(ctx, c)
	if err != nil {
		return UpdateResult{}, err
	}

	e.notifier.Success(contacts.UpdateSuccess(result.Contact.Name))

	if err := e.syncer.Sync(ctx); err != nil {
		return result, fmt.Errorf("syncing after update: %w", err)
	}
	if callback != nil {
		callback(result)
	}

	return result, nil
}

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/errs"
	"github.com/ldellis/rolo/internal/logging"
)

// progressMax is the upper bound of the mapped progress range.
const progressMax = 100

// CreateBatchRequest describes one batch creation.
type CreateBatchRequest struct {
	Contacts []contacts.Contact
	Mode     Mode

	// State is an opaque caller tag carried into the BatchCreated
	// event, letting UI listeners correlate the outcome with the
	// interaction that started it.
	State string

	// Callback receives the outcome after listeners are notified.
	Callback func(CreationOutcome)
}

// CreateBatch creates a batch of contacts in the remote store.
//
// A fresh cancellation token is created per call. In import mode the
// contacts are run through the encryption preprocessor first, the
// loader surface is shown with its cancel wired to the token, and
// store-side progress tracking is enabled. Other modes skip all of
// that and register with the in-flight tracker instead.
//
// A cancelled call resolves silently: zero outcome, nil error, no
// event, no callback. Preprocessing failures and unexpected store
// errors propagate.
func (e *Engine) CreateBatch(ctx context.Context, req CreateBatchRequest) (CreationOutcome, error) {
	log := logging.FromContext(ctx)
	opID := logging.GetOrGenerateTraceID(ctx)

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "create_batch").
		Str("op_id", opID).
		Int("contacts", len(req.Contacts)).
		Str("mode", string(req.Mode)).
		Msg("starting batch create")

	token := NewToken()
	callCtx, cancel := token.Context(ctx)
	defer cancel()

	list := req.Contacts
	if req.Mode == ModeImport {
		e.loader.Activate(LoaderConfig{Mode: ModeImport, OnClose: token.Cancel})
		defer e.loader.Deactivate()

		sealed, err := e.encryptor.Process(callCtx, list)
		if err != nil {
			if isCancelledOutcome(token, err) {
				log.Debug().Ctx(ctx).
					Str("component", "engine").
					Str("operation", "create_batch").
					Str("op_id", opID).
					Msg("batch create cancelled during preprocessing")
				return CreationOutcome{}, nil
			}
			return CreationOutcome{}, fmt.Errorf("preprocessing contacts: %w", err)
		}
		list = sealed
	} else {
		release := e.tracker.Track("create_batch:" + opID)
		defer release()
	}

	opts := CreateOptions{Token: token, TrackProgress: req.Mode == ModeImport}
	if opts.TrackProgress {
		reporter := NewReporter(0, progressMax, len(list), e.listeners...)
		opts.OnProgress = reporter.Report
	}

	outcome, err := e.store.CreateMany(callCtx, list, opts)
	if err != nil {
		if isCancelledOutcome(token, err) {
			log.Debug().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "create_batch").
				Str("op_id", opID).
				Msg("batch create cancelled")
			return CreationOutcome{}, nil
		}
		return CreationOutcome{}, fmt.Errorf("creating contacts: %w", err)
	}

	e.bus.Emit(BatchCreated{
		Created: outcome.Created,
		Total:   outcome.Total,
		Errors:  outcome.Errors,
		Mode:    req.Mode,
		State:   req.State,
	})
	if req.Callback != nil {
		req.Callback(outcome)
	}

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "create_batch").
		Str("op_id", opID).
		Int("created", len(outcome.Created)).
		Int("failed", len(outcome.Errors)).
		Msg("batch create finished")

	return outcome, nil
}

// CreateSingular creates exactly one contact, converting the batch
// response into single-item semantics: the created contact on
// success, an error carrying the store's code and message otherwise.
func (e *Engine) CreateSingular(ctx context.Context, c contacts.Contact) (contacts.Contact, error) {
	if err := c.Validate(); err != nil {
		return contacts.Contact{}, err
	}

	outcome, err := e.CreateBatch(ctx, CreateBatchRequest{Contacts: []contacts.Contact{c}})
	if err != nil {
		return contacts.Contact{}, err
	}

	if len(outcome.Errors) > 0 {
		itemErr := outcome.Errors[0]
		if itemErr.Message == "" {
			itemErr.Message = contacts.DefaultCreationFailure
		}
		return contacts.Contact{}, itemErr
	}
	if len(outcome.Created) == 0 {
		return contacts.Contact{}, ItemError{Message: contacts.DefaultCreationFailure}
	}

	return outcome.Created[0], nil
}

// isCancelledOutcome reports whether err represents a cooperative
// cancellation of the operation owning token, either as the explicit
// cancelled kind or as a context cancellation triggered by the token.
func isCancelledOutcome(token *Token, err error) bool {
	if err == nil {
		return false
	}
	if errs.IsCancelled(err) {
		return true
	}
	return token.Cancelled() && errors.Is(err, context.Canceled)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ldellis/rolo/internal/cache"
	"github.com/ldellis/rolo/internal/engine"
)

// printNotifier writes engine success messages to the command output.
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) Success(message string) {
	fmt.Fprintln(n.out, message)
}

// promptConfirmer gates destructive operations behind a terminal
// prompt. Off-terminal it declines and points at --yes.
type promptConfirmer struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

func (c promptConfirmer) Confirm(ctx context.Context, conf engine.Confirmation) error {
	if !c.interactive {
		fmt.Fprintln(c.out, "Declining: stdin is not a terminal. Pass --yes to skip confirmation.")
		if conf.OnCancel != nil {
			conf.OnCancel()
		}
		return nil
	}

	result := ConfirmPrompt(c.out, c.in, conf.Title, conf.Message)
	if !result.Accepted {
		fmt.Fprintln(c.out, "Aborted.")
		if conf.OnCancel != nil {
			conf.OnCancel()
		}
		return nil
	}

	if conf.OnConfirm == nil {
		return nil
	}
	return conf.OnConfirm(ctx)
}

// logTracker records in-flight operations in the debug log. A one-shot
// CLI has no operation panel, so the log is the observability surface.
type logTracker struct{}

func (logTracker) Track(name string) func() {
	start := time.Now()
	logger.Debug().
		Str("component", "cli").
		Str("operation", "track").
		Str("name", name).
		Msg("operation started")
	return func() {
		logger.Debug().
			Str("component", "cli").
			Str("operation", "track").
			Str("name", name).
			Dur("duration_ms", time.Since(start)).
			Msg("operation finished")
	}
}

// logNavigator satisfies the navigation port. There is no list view to
// return to in a one-shot command.
type logNavigator struct{}

func (logNavigator) ShowContactList() {
	logger.Debug().
		Str("component", "cli").
		Str("operation", "navigate").
		Msg("contact list requested")
}

// eventPrinter keeps local state honest while the engine runs: any
// event that means the address book changed drops the snapshot so the
// next listing refetches. Output formatting stays with the commands.
type eventPrinter struct {
	snapshot *cache.Snapshot
}

func (p *eventPrinter) Emit(event engine.Event) {
	switch e := event.(type) {
	case engine.BatchCreated:
		logger.Debug().
			Str("component", "cli").
			Str("operation", "event").
			Str("mode", string(e.Mode)).
			Int("created", len(e.Created)).
			Int("failed", len(e.Errors)).
			Msg("batch created")
		p.invalidate()
	case engine.ContactUpdated:
		logger.Debug().
			Str("component", "cli").
			Str("operation", "event").
			Str("contact_id", string(e.Contact.ID)).
			Msg("contact updated")
		p.invalidate()
	case engine.ContactsChanged:
		p.invalidate()
	case engine.MergeCompleted:
		logger.Debug().
			Str("component", "cli").
			Str("operation", "event").
			Int("updated", len(e.Summary.Updated)).
			Int("removed", len(e.Summary.Removed)).
			Msg("merge completed")
	case engine.SelectionCleared:
	}
}

func (p *eventPrinter) invalidate() {
	if p.snapshot == nil {
		return
	}
	if err := p.snapshot.Clear(); err != nil {
		logger.Warn().
			Str("component", "cli").
			Err(err).
			Msg("snapshot invalidation failed")
	}
}

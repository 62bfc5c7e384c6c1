package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ldellis/rolo/internal/contacts"
	"github.com/ldellis/rolo/internal/errs"
	"github.com/ldellis/rolo/internal/logging"
)

// GroupKey identifies one duplicate group inside a merge request.
type GroupKey string

// MergeGroup is one duplicate cluster to resolve: the survivor to
// update (nil when the survivor needs no changes) and the duplicate
// IDs to remove.
type MergeGroup struct {
	Update *contacts.Contact
	Remove []contacts.ID
}

// Merge resolves duplicate groups concurrently: for every group it
// updates the survivor and removes the duplicates, then reduces all
// unit results into one summary.
//
// The grand total of sub-operations is known before any unit starts;
// progress listeners receive the running cumulative count of settled
// units' contributions mapped onto [0, 100]. Unit failures are folded
// into that unit's result and never abort sibling units. Merge is not
// cancellable; the loader surface shown for its duration closes
// without cancelling anything.
//
// After the reduction, listeners are notified in order: contacts
// changed, merge completed with the summary, selection cleared. The
// event-sync hook then reconciles server-side drift; its failure is
// returned alongside the (already complete) summary.
func (e *Engine) Merge(ctx context.Context, groups map[GroupKey]MergeGroup) (Summary, error) {
	log := logging.FromContext(ctx)
	opID := logging.GetOrGenerateTraceID(ctx)

	release := e.tracker.Track("merge:" + opID)
	defer release()

	e.loader.Activate(LoaderConfig{Mode: ModeMerge, OnClose: func() {}})
	defer e.loader.Deactivate()

	total := 0
	for _, group := range groups {
		total += unitTotal(group)
	}

	log.Debug().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "merge").
		Str("op_id", opID).
		Int("groups", len(groups)).
		Int("total", total).
		Msg("starting merge")

	reporter := NewReporter(0, progressMax, total, e.listeners...)

	// Thread-safe collection of unit results and the running
	// cumulative progress counter.
	var (
		mu        sync.Mutex
		results   []UnitResult
		completed int
	)

	g, gCtx := errgroup.WithContext(ctx)
	for key, group := range groups {
		g.Go(func() error {
			res := e.runUnit(gCtx, key, group)
			mu.Lock()
			results = append(results, res)
			completed += res.Total
			cumulative := completed
			mu.Unlock()
			reporter.Report(cumulative)
			// Always return nil - one group's failure must not cancel
			// the others.
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(results)

	e.bus.Emit(ContactsChanged{})
	e.bus.Emit(MergeCompleted{Summary: summary})
	e.bus.Emit(SelectionCleared{})

	log.Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "merge").
		Str("op_id", opID).
		Int("updated", len(summary.Updated)).
		Int("removed", len(summary.Removed)).
		Int("failed", len(summary.Errors)).
		Msg("merge finished")

	if err := e.syncer.Sync(ctx); err != nil {
		return summary, fmt.Errorf("syncing after merge: %w", err)
	}
	return summary, nil
}

// unitTotal is the number of contacts one group's unit is responsible
// for: every removal plus the survivor update when present.
func unitTotal(group MergeGroup) int {
	total := len(group.Remove)
	if group.Update != nil {
		total++
	}
	return total
}

// runUnit performs one update-and-remove unit. The survivor update
// runs first; its failure is caught here and recorded, and skips the
// removals entirely. A conflict-kind update failure additionally
// drops the survivor from the result: a stale update definitely did
// not apply, while other failure kinds are ambiguous and keep the
// original intent visible in the summary.
//
// The result's Total counts sub-operations actually attempted, so a
// failed update yields 1 regardless of how many removals were
// planned. The upfront grand total uses unitTotal instead.
func (e *Engine) runUnit(ctx context.Context, key GroupKey, group MergeGroup) UnitResult {
	log := logging.FromContext(ctx)
	var res UnitResult

	if group.Update != nil {
		res.Total++
		updated, err := e.UpdateContact(ctx, *group.Update)
		if err != nil {
			if !errs.IsConflict(err) {
				res.Updated = group.Update
			}
			res.Errors = []string{errorText(err)}
			log.Debug().Ctx(ctx).
				Str("component", "engine").
				Str("operation", "merge_unit").
				Str("group", string(key)).
				Err(err).
				Msg("survivor update failed, skipping removals")
			return res
		}
		contact := updated.Contact
		res.Updated = &contact
	}

	if len(group.Remove) > 0 {
		res.Total += len(group.Remove)
		outcome, err := e.store.RemoveMany(ctx, group.Remove)
		if err != nil {
			res.Errors = append(res.Errors, errorText(err))
			return res
		}
		res.Removed = outcome.Removed
		for _, removeErr := range outcome.Errors {
			res.Errors = append(res.Errors, removeErr.Message)
		}
	}

	return res
}

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/contacts"
)

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("targeted deletion evicts removed IDs and skips the sync hook", func(t *testing.T) {
		f := newFixture()
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{IDs: []contacts.ID{"a", "b"}})

		require.NoError(t, err)
		assert.Equal(t, 1, f.store.removeManyCalls)
		assert.Equal(t, [][]contacts.ID{{"a", "b"}}, f.snapshots.evicted)
		assert.Equal(t, [][]contacts.ID{{"a", "b"}}, f.emails.evicted)
		assert.Zero(t, f.snapshots.cleared)
		assert.Zero(t, f.emails.cleared)

		assert.Equal(t, []string{"2 contacts deleted."}, f.notifier.snapshot())
		assert.Equal(t, 1, f.navigator.shown)

		events := f.bus.snapshot()
		require.Len(t, events, 1)
		assert.IsType(t, SelectionCleared{}, events[0])

		f.syncer.AssertNotCalled(t, "Sync", mock.Anything)
	})

	t.Run("deleting one contact uses the singular message", func(t *testing.T) {
		f := newFixture()
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{IDs: []contacts.ID{"a"}})

		require.NoError(t, err)
		assert.Equal(t, []string{"Contact deleted."}, f.notifier.snapshot())
	})

	t.Run("deleting everything clears caches then syncs exactly once", func(t *testing.T) {
		f := newFixture()
		f.syncer.On("Sync", mock.Anything).Run(func(mock.Arguments) {
			f.log.add("sync")
		}).Return(nil)
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{All: true})

		require.NoError(t, err)
		assert.Equal(t, []string{
			"store.remove_all",
			"cache.clear:snapshots",
			"cache.clear:emails",
			"sync",
		}, f.log.snapshot())
		f.syncer.AssertNumberOfCalls(t, "Sync", 1)
		assert.Equal(t, []string{"All contacts deleted."}, f.notifier.snapshot())
		assert.Zero(t, f.store.removeManyCalls)
		assert.Empty(t, f.snapshots.evicted)
	})

	t.Run("declining the confirmation leaves everything untouched", func(t *testing.T) {
		f := newFixture()
		f.confirmer.accept = false
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{All: true, Confirm: true})

		require.NoError(t, err)
		assert.True(t, f.confirmer.declined)
		assert.Zero(t, f.store.removeAllCalls)
		assert.Zero(t, f.store.removeManyCalls)
		assert.Empty(t, f.notifier.snapshot())
		assert.Empty(t, f.bus.snapshot())
		assert.Zero(t, f.navigator.shown)
	})

	t.Run("confirmation wording for a full wipe", func(t *testing.T) {
		f := newFixture()
		f.syncer.On("Sync", mock.Anything).Return(nil)
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{All: true, Confirm: true})

		require.NoError(t, err)
		assert.Equal(t, 1, f.confirmer.calls)
		assert.Equal(t, "Delete all contacts", f.confirmer.last.Title)
		assert.Equal(t, "This will permanently delete every contact in your address book. Continue?", f.confirmer.last.Message)
		assert.Equal(t, 1, f.store.removeAllCalls, "accepting runs the deletion")
	})

	t.Run("confirmation wording for a counted deletion", func(t *testing.T) {
		f := newFixture()
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{IDs: []contacts.ID{"a", "b", "c"}, Confirm: true})

		require.NoError(t, err)
		assert.Equal(t, "Delete contacts", f.confirmer.last.Title)
		assert.Equal(t, "This will permanently delete 3 contacts. Continue?", f.confirmer.last.Message)
	})

	t.Run("remote clear failure aborts before any notification", func(t *testing.T) {
		f := newFixture()
		f.store.removeAll = func(context.Context) error {
			return errors.New("upstream 500")
		}
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{All: true})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "clearing contacts")
		assert.Empty(t, f.notifier.snapshot())
		assert.Zero(t, f.snapshots.cleared)
		f.syncer.AssertNotCalled(t, "Sync", mock.Anything)
	})

	t.Run("targeted deletion failure aborts before any notification", func(t *testing.T) {
		f := newFixture()
		f.store.removeMany = func(context.Context, []contacts.ID) (RemoveOutcome, error) {
			return RemoveOutcome{}, errors.New("connection reset")
		}
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{IDs: []contacts.ID{"a"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "removing contacts")
		assert.Empty(t, f.notifier.snapshot())
		assert.Empty(t, f.snapshots.evicted)
	})

	t.Run("partial removal still reports the requested count", func(t *testing.T) {
		f := newFixture()
		f.store.removeMany = func(context.Context, []contacts.ID) (RemoveOutcome, error) {
			return RemoveOutcome{
				Removed: []contacts.ID{"a"},
				Errors:  []RemoveError{{ID: "b", Message: "not found"}},
			}, nil
		}
		e := f.build(t)

		err := e.Remove(ctx, RemoveRequest{IDs: []contacts.ID{"a", "b"}})

		require.NoError(t, err)
		assert.Equal(t, []string{"2 contacts deleted."}, f.notifier.snapshot())
		assert.Equal(t, [][]contacts.ID{{"a"}}, f.snapshots.evicted, "only confirmed removals are evicted")
	})

	t.Run("cache failures never fail the deletion", func(t *testing.T) {
		f := newFixture()
		f.snapshots.failWith = errors.New("disk full")
		f.syncer.On("Sync", mock.Anything).Return(nil)
		e := f.build(t)

		require.NoError(t, e.Remove(ctx, RemoveRequest{IDs: []contacts.ID{"a"}}))
		require.NoError(t, e.Remove(ctx, RemoveRequest{All: true}))
		f.syncer.AssertNumberOfCalls(t, "Sync", 1)
	})
}

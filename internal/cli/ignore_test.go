package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/contacts"
)

func TestIgnoreCommand(t *testing.T) {
	t.Run("marks and lists a pair", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("ROLO_HOME", home)

		out, err := runCLI(t, "ignore", "id-b", "id-a")
		require.NoError(t, err)
		assert.Contains(t, out, "Ignoring id-a and id-b.")

		_, statErr := os.Stat(filepath.Join(home, "ignored.json"))
		require.NoError(t, statErr)

		out, err = runCLI(t, "ignore", "--list")
		require.NoError(t, err)
		assert.Contains(t, out, "1 ignored pair(s)")
		assert.Contains(t, out, "id-a")
		assert.Contains(t, out, "id-b")
	})

	t.Run("empty list", func(t *testing.T) {
		t.Setenv("ROLO_HOME", t.TempDir())

		out, err := runCLI(t, "ignore", "--list")
		require.NoError(t, err)
		assert.Contains(t, out, "No ignored pairs.")
	})

	t.Run("requires two IDs", func(t *testing.T) {
		t.Setenv("ROLO_HOME", t.TempDir())

		_, err := runCLI(t, "ignore", "only-one")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly two")
	})

	t.Run("rejects a self pair", func(t *testing.T) {
		t.Setenv("ROLO_HOME", t.TempDir())

		_, err := runCLI(t, "ignore", "same", "same")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "itself")
	})

	t.Run("removing an unknown pair is a no-op", func(t *testing.T) {
		t.Setenv("ROLO_HOME", t.TempDir())

		out, err := runCLI(t, "ignore", "--remove", "x", "y")
		require.NoError(t, err)
		assert.Contains(t, out, "Pair was not ignored.")
	})

	t.Run("dedupe and merge skip ignored pairs", func(t *testing.T) {
		f, server := newFakeStore(t,
			contacts.Contact{ID: "c1", Name: "Ada Lovelace", Emails: []string{"ada@example.com"}},
			contacts.Contact{ID: "c2", Name: "A. Lovelace", Emails: []string{"ada@example.com"}},
		)
		newCLIHome(t, server.URL, "")

		out, err := runCLI(t, "dedupe")
		require.NoError(t, err)
		assert.Contains(t, out, "Found 1 duplicate group(s)")

		_, err = runCLI(t, "ignore", "c1", "c2")
		require.NoError(t, err)

		// The snapshot written by dedupe supplies the display names.
		out, err = runCLI(t, "ignore", "--list")
		require.NoError(t, err)
		assert.Contains(t, out, "Ada Lovelace [c1]")

		out, err = runCLI(t, "dedupe")
		require.NoError(t, err)
		assert.Contains(t, out, "Skipped 1 ignored pair(s).")
		assert.Contains(t, out, "No duplicates found.")

		out, err = runCLI(t, "merge")
		require.NoError(t, err)
		assert.Contains(t, out, "No duplicates found.")

		f.mu.Lock()
		assert.Empty(t, f.updatePaths, "an ignored pair must never merge")
		assert.Zero(t, f.ackCalls)
		f.mu.Unlock()

		// Taking the mark back restores the grouping.
		out, err = runCLI(t, "ignore", "--remove", "c1", "c2")
		require.NoError(t, err)
		assert.Contains(t, out, "no longer ignored")

		out, err = runCLI(t, "dedupe")
		require.NoError(t, err)
		assert.Contains(t, out, "Found 1 duplicate group(s)")
	})
}

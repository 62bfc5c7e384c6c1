package tui

import (
	"bytes"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldellis/rolo/internal/engine"
)

// newTestLoader builds a Loader running headless: no renderer, no
// terminal input.
func newTestLoader() *Loader {
	return NewLoader(
		tea.WithInput(bytes.NewReader(nil)),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)
}

// TestLoader_InactiveSafe verifies Deactivate and Progress are no-ops
// while no surface is up.
func TestLoader_InactiveSafe(t *testing.T) {
	loader := NewLoader()

	require.NotPanics(t, func() {
		loader.Deactivate()
		loader.Progress(50)
		loader.Deactivate()
	})
}

// TestLoader_ActivateDeactivate verifies a full surface lifecycle,
// twice, to prove the adapter resets cleanly between operations.
func TestLoader_ActivateDeactivate(t *testing.T) {
	loader := newTestLoader()

	for range 2 {
		loader.Activate(engine.LoaderConfig{Mode: engine.ModeImport, OnClose: func() {}})
		loader.Progress(30)
		loader.Progress(70)
		loader.Deactivate()
	}

	// Deactivate after the surface is already down is a no-op.
	loader.Deactivate()
	assert.Nil(t, loader.program)
}

// TestLoader_DoubleActivateIgnored verifies a second activation while
// the surface is up does not leak a second program.
func TestLoader_DoubleActivateIgnored(t *testing.T) {
	loader := newTestLoader()

	loader.Activate(engine.LoaderConfig{Mode: engine.ModeMerge})
	first := loader.program
	loader.Activate(engine.LoaderConfig{Mode: engine.ModeImport})

	assert.Same(t, first, loader.program)

	loader.Deactivate()
}

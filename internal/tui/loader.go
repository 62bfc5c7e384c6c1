// Package tui renders the modal progress surface shown during long
// batch operations. The surface is a Bubble Tea program owning the
// terminal for the duration of one operation; the Loader adapter
// bridges it to the engine's activation and progress callbacks.
package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldellis/rolo/internal/engine"
	"github.com/ldellis/rolo/internal/logging"
)

// Loader drives the loader surface. It implements the engine's loader
// port, and its Progress method is wired as a progress listener so
// mapped values reach the bar. The zero value is not usable; call
// NewLoader.
type Loader struct {
	opts []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewLoader builds a Loader. Program options are applied to every
// activation; the CLI passes the output writer here so the surface
// renders on stderr.
func NewLoader(opts ...tea.ProgramOption) *Loader {
	return &Loader{opts: opts}
}

// Activate shows the surface configured by cfg. A second activation
// while the surface is up is ignored; the engine runs one modal batch
// operation at a time.
func (l *Loader) Activate(cfg engine.LoaderConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.program != nil {
		return
	}

	program := tea.NewProgram(NewLoaderModel(cfg), l.opts...)
	done := make(chan struct{})
	l.program = program
	l.done = done

	log := logging.ComponentLogger(logging.FromContext(context.Background()), "tui")
	log.Debug().Str("operation", "loader_activate").Str("mode", string(cfg.Mode)).Msg("showing loader surface")

	go func() {
		defer close(done)
		if _, err := program.Run(); err != nil {
			log.Debug().Err(err).Msg("loader surface exited with error")
		}
	}()
}

// Deactivate dismisses the surface and waits for the terminal to be
// released. Safe to call when the surface is not up, or after the
// user already dismissed it.
func (l *Loader) Deactivate() {
	l.mu.Lock()
	program, done := l.program, l.done
	l.program, l.done = nil, nil
	l.mu.Unlock()

	if program == nil {
		return
	}

	// Send returns immediately when the program already quit.
	program.Send(doneMsg{})
	<-done
}

// Progress forwards a mapped progress value (reporter scale, 0-100)
// to the surface. Values arriving while no surface is up are dropped.
func (l *Loader) Progress(value float64) {
	l.mu.Lock()
	program := l.program
	l.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(ProgressMsg(value))
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldellis/rolo/internal/engine"
)

// LoaderState represents the current state of the loader surface.
type LoaderState int

const (
	// LoaderStateRunning indicates the batch operation is in flight.
	LoaderStateRunning LoaderState = iota
	// LoaderStateClosing indicates the user asked to cancel and the
	// surface is waiting for the operation to settle.
	LoaderStateClosing
	// LoaderStateDone indicates the surface has been dismissed.
	LoaderStateDone
)

// ProgressMsg carries a mapped progress value on the reporter's 0-100
// scale.
type ProgressMsg float64

// doneMsg dismisses the surface. Sent by Loader.Deactivate when the
// batch operation settles.
type doneMsg struct{}

// Default dimensions for the loader surface.
const (
	loaderDefaultWidth = 60
	loaderMaxBarWidth  = 60
	loaderBarPadding   = 10
	percentScale       = 100
)

// LoaderModel is the Bubble Tea model for the modal progress surface
// shown during long batch operations.
type LoaderModel struct {
	mode    engine.Mode
	onClose func()
	closed  bool

	bar     progress.Model
	spinner spinner.Model
	percent float64

	state LoaderState
	width int
}

// NewLoaderModel creates a LoaderModel for one activation of the
// surface. Import mode treats the cancel key as a cancellation
// request and keeps the surface up until the operation settles; merge
// mode dismisses immediately.
func NewLoaderModel(cfg engine.LoaderConfig) *LoaderModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = loaderDefaultWidth - loaderBarPadding
	bar.ShowPercentage = false // Rendered alongside the bar instead.

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spinnerStyle

	return &LoaderModel{
		mode:    cfg.Mode,
		onClose: cfg.OnClose,
		bar:     bar,
		spinner: spin,
		state:   LoaderStateRunning,
		width:   loaderDefaultWidth,
	}
}

// Init initializes the model.
func (m *LoaderModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m *LoaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-loaderBarPadding, loaderMaxBarWidth)
		return m, nil

	case ProgressMsg:
		// Progress never moves backwards on screen.
		percent := float64(msg) / percentScale
		if percent > m.percent {
			m.percent = min(percent, 1)
		}
		return m, nil

	case doneMsg:
		m.state = LoaderStateDone
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// handleKeyMsg processes keyboard input.
//
//nolint:exhaustive // Only handling relevant key types for the loader surface.
func (m *LoaderModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		// Emergency exit: run the close action and dismiss at once.
		m.runClose()
		m.state = LoaderStateDone
		return m, tea.Quit

	case tea.KeyEsc:
		return m.requestClose()

	case tea.KeyRunes:
		if string(msg.Runes) == "q" {
			return m.requestClose()
		}
	}

	return m, nil
}

// requestClose runs the configured close action. A merge surface is
// only a viewport, so it dismisses immediately; an import surface
// stays up until the cancelled operation settles and Deactivate sends
// doneMsg.
func (m *LoaderModel) requestClose() (tea.Model, tea.Cmd) {
	if m.state != LoaderStateRunning {
		return m, nil
	}

	m.runClose()

	if m.mode == engine.ModeImport {
		m.state = LoaderStateClosing
		return m, nil
	}

	m.state = LoaderStateDone
	return m, tea.Quit
}

// runClose invokes the close action at most once.
func (m *LoaderModel) runClose() {
	if m.closed || m.onClose == nil {
		return
	}
	m.closed = true
	m.onClose()
}

// View renders the current view.
func (m *LoaderModel) View() string {
	if m.state == LoaderStateDone {
		return ""
	}

	var content strings.Builder

	content.WriteString(headerStyle.Render(m.title()))
	content.WriteString("\n\n")

	if m.state == LoaderStateClosing {
		content.WriteString(m.spinner.View())
		content.WriteString(" Cancelling...\n\n")
		content.WriteString(helpStyle.Render("Waiting for in-flight requests to stop."))
		content.WriteString("\n")
		return content.String()
	}

	content.WriteString(m.spinner.View())
	content.WriteString(" ")
	content.WriteString(m.bar.ViewAs(m.percent))
	fmt.Fprintf(&content, " %3.0f%%", m.percent*percentScale)
	content.WriteString("\n\n")
	content.WriteString(helpStyle.Render(m.help()))
	content.WriteString("\n")

	return content.String()
}

// title returns the mode-specific heading.
func (m *LoaderModel) title() string {
	switch m.mode {
	case engine.ModeImport:
		return "Importing contacts"
	case engine.ModeMerge:
		return "Merging contacts"
	case engine.ModeDefault:
		return "Working"
	}
	return "Working"
}

// help returns the mode-specific key hint.
func (m *LoaderModel) help() string {
	if m.mode == engine.ModeImport {
		return "Esc or q to cancel"
	}
	return "Esc or q to dismiss"
}

// Percent exposes the current displayed progress fraction.
func (m *LoaderModel) Percent() float64 {
	return m.percent
}

// State exposes the current surface state.
func (m *LoaderModel) State() LoaderState {
	return m.state
}

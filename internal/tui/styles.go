package tui

import "github.com/charmbracelet/lipgloss"

// Loader surface palette.
//
//nolint:gochecknoglobals // Static styles, built once.
var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

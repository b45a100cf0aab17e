// Package styles defines shared lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/goalplan/internal/plan"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF") // Teal accent
	secondaryColor = lipgloss.Color("#666666") // Gray for secondary text
	successColor   = lipgloss.Color("#87AF87") // Muted sage for success
	errorColor     = lipgloss.Color("#AF5F5F") // Muted terracotta for errors
	warningColor   = lipgloss.Color("#D7AF5F") // Amber for in-progress and warnings

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SectionStyle for group headings inside a view
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	// SubtleStyle for hints/help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// SelectedStyle for selected items in lists
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// StatusBarStyle for bottom status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// BoxStyle for panel borders
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)

// StatusStyle returns the style used to render a task status.
func StatusStyle(s plan.Status) lipgloss.Style {
	switch s.OrDefault() {
	case plan.StatusCompleted:
		return SuccessStyle
	case plan.StatusInProgress:
		return WarningStyle
	default:
		return SubtleStyle
	}
}

// StatusIcon returns a one-character marker for a task status.
func StatusIcon(s plan.Status) string {
	switch s.OrDefault() {
	case plan.StatusCompleted:
		return "✓"
	case plan.StatusInProgress:
		return "▶"
	default:
		return "○"
	}
}

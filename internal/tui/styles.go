package tui

import "github.com/charmbracelet/lipgloss"

var (
	dimColor    = lipgloss.Color("240")
	errColor    = lipgloss.Color("196")
	accentColor = lipgloss.Color("75")

	iconPending  = lipgloss.NewStyle().Foreground(dimColor).Render("○")
	iconComplete = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	iconError    = lipgloss.NewStyle().Foreground(errColor).Render("✗")
	iconSkipped  = lipgloss.NewStyle().Foreground(dimColor).Render("○")

	taskNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	taskDimStyle  = lipgloss.NewStyle().Foreground(dimColor)
	messageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(errColor)
	spinnerStyle  = lipgloss.NewStyle().Foreground(accentColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			MarginTop(1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)
)

// StatusIcon returns the icon for a task status. Running tasks show the
// current spinner frame in place of a fixed glyph.
func StatusIcon(status TaskStatus, spinnerFrame string) string {
	switch status {
	case StatusRunning:
		return spinnerStyle.Render(spinnerFrame)
	case StatusComplete:
		return iconComplete
	case StatusError:
		return iconError
	case StatusSkipped:
		return iconSkipped
	default:
		return iconPending
	}
}

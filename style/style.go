// Package style renders strings with lipgloss.
package style

import "github.com/charmbracelet/lipgloss"

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer painting its input with c.
func Fg(c lipgloss.TerminalColor) func(string) string {
	s := New().Foreground(c)
	return func(text string) string { return s.Render(text) }
}

// Truncate returns a renderer wrapping its input at width.
func Truncate(width int) func(string) string {
	s := New().Width(width)
	return func(text string) string { return s.Render(text) }
}

var (
	Faint = New().Faint(true).Render
	Bold  = New().Bold(true).Render
)

// Title renders a section header of the player view.
func Title(s string) string {
	return New().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1).Render(s)
}

// ErrorTitle renders the header shown once playback failed.
func ErrorTitle(s string) string {
	return New().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("1")).Padding(0, 1).Render(s)
}

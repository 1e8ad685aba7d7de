// Package color holds the terminal colors vplay renders with.
package color

import "github.com/charmbracelet/lipgloss"

// ANSI colors follow the terminal theme.
var (
	Red      = lipgloss.Color("1")
	Green    = lipgloss.Color("2")
	Yellow   = lipgloss.Color("3")
	Blue     = lipgloss.Color("4")
	Purple   = lipgloss.Color("5")
	Cyan     = lipgloss.Color("6")
	HiRed    = lipgloss.Color("9")
	HiBlue   = lipgloss.Color("12")
	HiPurple = lipgloss.Color("13")
)

var Orange = lipgloss.Color("#ffb703")

// Accent marks focused widgets and commands to copy.
var Accent = lipgloss.AdaptiveColor{Light: "#8839ef", Dark: "#cba6f7"}

// Text is body copy on either background.
var Text = lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init opens the initial source, or loads the history list.
func (b *statefulBubble) Init() tea.Cmd {
	if source, ok := b.options.Source.Get(); ok {
		return tea.Batch(b.spinnerC.Tick, b.open(source))
	}
	return b.loadHistory()
}

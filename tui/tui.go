// Package tui provides a terminal control surface for one player at a time: a list of
// resumable media, and a playback view driven entirely through the player's public API.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin"
	"github.com/vplay-cli/vplay/plugin/cast"
)

// Controls is the part of a player the interface drives.
type Controls interface {
	plugin.Core
	WaitReady(ctx context.Context) error
	Destroy(ctx context.Context) error
	Done() <-chan struct{}
	Err() error
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Open builds a player for a source.
	Open func(source string) (Controls, error)
	// Source is played right away. Without it the history list is shown first.
	Source mo.Option[string]
	// Remote, when set, lets the cast key request a session on it.
	Remote cast.Context
	// Browse opens what a player plays outside of the terminal.
	Browse func(kind media.Kind, el *media.Element) error
	// SeekStep and VolumeStep are the increments of the arrow keys.
	SeekStep   float64
	VolumeStep float64
}

// Run initializes and executes the Bubble Tea application loop.
func Run(options *Options) error {
	bubble := newBubble(options)

	if _, ok := options.Source.Get(); ok {
		bubble.setState(loadingState)
	} else {
		bubble.setState(historyState)
	}

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	bubble.close()
	return err
}

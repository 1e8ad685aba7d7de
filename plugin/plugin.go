// Package plugin defines optional capability modules attached to a player.
//
// A plugin declares the provider kinds and media types it supports. The registry
// skips plugins that do not match the player, builds the rest at construction and
// the player activates them, in configured order, once it is ready. Plugins reach the
// player only through Core.
package plugin

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
)

// Core is the public surface of a player as seen by plugins.
type Core interface {
	ID() string
	Kind() media.Kind
	Type() media.Type
	Element() *media.Element
	Options() media.Options
	Tracks() []media.Track

	Play() *mo.Future[float64]
	Pause() *mo.Future[float64]
	Seek(seconds float64) *mo.Future[float64]
	SetVolume(level float64) *mo.Future[float64]
	Mute() *mo.Future[float64]
	Unmute() *mo.Future[float64]
	CurrentTime() *mo.Future[float64]
	Duration() *mo.Future[float64]

	Paused() bool
	Muted() bool
	Loading() bool

	On(t event.Type, fn event.Handler) event.ListenerID
	Off(t event.Type, id event.ListenerID)
	Dispatch(t event.Type, payload any) error
}

// Plugin is an activated capability module.
//
// Init runs once the player is ready, OnReady right after it. Destroy runs during
// player teardown, in reverse activation order. Embed Base to implement only some hooks.
type Plugin interface {
	Init(ctx context.Context) error
	OnReady(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// Base implements every hook as a no-op.
type Base struct{}

func (Base) Init(context.Context) error    { return nil }
func (Base) OnReady(context.Context) error { return nil }
func (Base) Destroy(context.Context) error { return nil }

// Factory builds a plugin for one player.
type Factory func(core Core, opts map[string]any) (Plugin, error)

// Descriptor declares a plugin and what it supports. Empty Providers or Types match everything.
type Descriptor struct {
	Name        string
	Description string
	Providers   []media.Kind
	Types       []media.Type
	New         Factory
}

// Hook runs one plugin hook, converting a panic into an error.
func Hook(name, hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s: %s panicked: %v\n%s", name, hook, r, debug.Stack())
		}
	}()

	if err := fn(); err != nil {
		return fmt.Errorf("plugin %s: %s: %w", name, hook, err)
	}
	return nil
}

// Package html5 adapts a native media element, video or audio, to the common control surface.
//
// Every control method is real: the native element supports play, pause, seeking,
// volume and muting directly, and its event names already match the common vocabulary.
package html5

import (
	"context"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/sdk"
)

// Media is a live native media element.
type Media interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetCurrentTime(ctx context.Context, seconds float64) error
	CurrentTime(ctx context.Context) (float64, error)
	Duration(ctx context.Context) (float64, error)
	SetVolume(ctx context.Context, level float64) error
	SetMuted(ctx context.Context, muted bool) error
	// AddEventListener subscribes fn to a native event and returns its remover.
	AddEventListener(name string, fn func(data any)) (remove func())
	Close() error
}

// Host binds element references to live media elements.
type Host interface {
	Attach(ctx context.Context, el *media.Element, opts media.Options) (Media, error)
}

// nativeEvents maps native event names onto the common vocabulary.
var nativeEvents = map[string]event.Type{
	"play":         event.Play,
	"pause":        event.Pause,
	"playing":      event.Playing,
	"waiting":      event.Waiting,
	"seeking":      event.Seeking,
	"seeked":       event.Seeked,
	"timeupdate":   event.TimeUpdate,
	"ended":        event.Ended,
	"volumechange": event.VolumeChange,
	"error":        event.Error,
}

// Adapter plays an element through a Host.
type Adapter struct {
	provider.Lifecycle

	host   Host
	media  Media
	tracks []media.Track
}

// New returns an adapter bound to host.
func New(host Host) *Adapter {
	return &Adapter{host: host}
}

// Provider describes the native backend. It needs no remote script.
func Provider(host Host) *provider.Provider {
	return &provider.Provider{
		Kind:   media.HTML5,
		Name:   "HTML5",
		Types:  []media.Type{media.Video, media.Audio},
		Script: mo.None[sdk.Script](),
		New:    func() provider.Adapter { return New(host) },
	}
}

func (a *Adapter) Initialize(ctx context.Context, el *media.Element, opts media.Options, emit provider.Emit) error {
	if err := a.Begin(media.HTML5); err != nil {
		return err
	}
	if el == nil || (el.Tag != "video" && el.Tag != "audio") {
		return &media.Error{Kind: media.ErrAdapterInit, Op: "html5 initialize", Err: errNotMedia}
	}
	if el.Src() == "" {
		return &media.Error{Kind: media.ErrAdapterInit, Op: "html5 initialize", Err: errNoSource}
	}

	m, err := a.host.Attach(ctx, el, opts)
	if err != nil {
		return media.Wrap(media.ErrAdapterInit, "html5 initialize", err)
	}
	a.media = m
	a.tracks = el.TextTracks()

	for name, t := range nativeEvents {
		t := t
		a.Track(m.AddEventListener(name, func(data any) {
			if t == event.Error {
				data = mediaError(data)
			}
			emit(t, data)
		}))
	}

	a.MarkReady()
	return nil
}

// Tracks returns the text tracks captured at initialization.
func (a *Adapter) Tracks() []media.Track {
	return a.tracks
}

func (a *Adapter) Play(ctx context.Context) error {
	if err := a.Check(media.HTML5, "play"); err != nil {
		return err
	}
	return a.media.Play(ctx)
}

func (a *Adapter) Pause(ctx context.Context) error {
	if err := a.Check(media.HTML5, "pause"); err != nil {
		return err
	}
	return a.media.Pause(ctx)
}

func (a *Adapter) Seek(ctx context.Context, seconds float64) error {
	if err := a.Check(media.HTML5, "seek"); err != nil {
		return err
	}
	return a.media.SetCurrentTime(ctx, seconds)
}

func (a *Adapter) SetVolume(ctx context.Context, level float64) error {
	if err := a.Check(media.HTML5, "set volume"); err != nil {
		return err
	}
	return a.media.SetVolume(ctx, level)
}

func (a *Adapter) Mute(ctx context.Context) error {
	if err := a.Check(media.HTML5, "mute"); err != nil {
		return err
	}
	return a.media.SetMuted(ctx, true)
}

func (a *Adapter) Unmute(ctx context.Context) error {
	if err := a.Check(media.HTML5, "unmute"); err != nil {
		return err
	}
	return a.media.SetMuted(ctx, false)
}

func (a *Adapter) CurrentTime(ctx context.Context) (float64, error) {
	if err := a.Check(media.HTML5, "current time"); err != nil {
		return 0, err
	}
	return a.media.CurrentTime(ctx)
}

func (a *Adapter) Duration(ctx context.Context) (float64, error) {
	if err := a.Check(media.HTML5, "duration"); err != nil {
		return 0, err
	}
	return a.media.Duration(ctx)
}

func (a *Adapter) Destroy(context.Context) error {
	if !a.End() || a.media == nil {
		return nil
	}
	return a.media.Close()
}

// Package vimeo adapts the Vimeo player SDK to the common control surface.
//
// Mute and unmute have no native equivalent and are implemented as volume 0 and 1.
// Every other control method delegates to the SDK player.
package vimeo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/sdk"
)

// API is the entry point of the loaded SDK.
type API interface {
	NewPlayer(ctx context.Context, elementID string, params map[string]any) (Player, error)
}

// Player is an SDK player instance.
type Player interface {
	Ready(ctx context.Context) error
	On(name string, fn func(data map[string]any))
	Off(name string)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetCurrentTime(ctx context.Context, seconds float64) error
	GetCurrentTime(ctx context.Context) (float64, error)
	GetDuration(ctx context.Context) (float64, error)
	SetVolume(ctx context.Context, level float64) error
	Destroy(ctx context.Context) error
}

// sdkEvents maps SDK event names onto the common vocabulary.
var sdkEvents = map[string]event.Type{
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

var errNoID = errors.New("element has no data-vimeo-id")

// Adapter plays a Vimeo video.
type Adapter struct {
	provider.Lifecycle

	api    API
	player Player
	params map[string]any
}

func New(api API) *Adapter {
	return &Adapter{api: api}
}

// Provider describes the Vimeo backend and the script it needs.
func Provider(api API, script sdk.Script) *provider.Provider {
	return &provider.Provider{
		Kind:   media.Vimeo,
		Name:   "Vimeo",
		Types:  []media.Type{media.Video},
		Script: mo.Some(script),
		New:    func() provider.Adapter { return New(api) },
	}
}

// Params builds the SDK player parameters. Provider params override the defaults.
func Params(el *media.Element, opts media.Options) map[string]any {
	params := map[string]any{
		"id":          el.DataID(media.Vimeo),
		"playsinline": boolInt(opts.Playsinline),
		"loop":        boolInt(opts.Loop),
		"controls":    false,
	}
	maps.Copy(params, opts.ProviderParams)
	return params
}

func (a *Adapter) Initialize(ctx context.Context, el *media.Element, opts media.Options, emit provider.Emit) error {
	if err := a.Begin(media.Vimeo); err != nil {
		return err
	}
	if el == nil || el.DataID(media.Vimeo) == "" {
		return &media.Error{Kind: media.ErrAdapterInit, Op: "vimeo initialize", Err: errNoID}
	}
	if _, err := strconv.ParseUint(el.DataID(media.Vimeo), 10, 64); err != nil {
		return &media.Error{Kind: media.ErrAdapterInit, Op: "vimeo initialize", Err: err}
	}

	a.params = Params(el, opts)
	player, err := a.api.NewPlayer(ctx, el.ID, a.params)
	if err != nil {
		return media.Wrap(media.ErrAdapterInit, "vimeo initialize", err)
	}
	a.player = player

	if err := player.Ready(ctx); err != nil {
		return media.Wrap(media.ErrAdapterInit, "vimeo ready", err)
	}

	for name, t := range sdkEvents {
		name, t := name, t
		player.On(name, func(data map[string]any) { emit(t, payload(t, data)) })
		a.Track(func() { player.Off(name) })
	}

	a.MarkReady()
	return nil
}

// payload converts SDK event data into the common payloads.
func payload(t event.Type, data map[string]any) any {
	switch t {
	case event.TimeUpdate:
		return event.TimePayload{CurrentTime: number(data["seconds"]), Duration: number(data["duration"])}
	case event.VolumeChange:
		v := number(data["volume"])
		return event.VolumePayload{Volume: v, Muted: v == 0}
	case event.Error:
		return playerError(data)
	default:
		return nil
	}
}

func (a *Adapter) Play(ctx context.Context) error {
	if err := a.Check(media.Vimeo, "play"); err != nil {
		return err
	}
	return a.player.Play(ctx)
}

func (a *Adapter) Pause(ctx context.Context) error {
	if err := a.Check(media.Vimeo, "pause"); err != nil {
		return err
	}
	return a.player.Pause(ctx)
}

func (a *Adapter) Seek(ctx context.Context, seconds float64) error {
	if err := a.Check(media.Vimeo, "seek"); err != nil {
		return err
	}
	return a.player.SetCurrentTime(ctx, seconds)
}

func (a *Adapter) SetVolume(ctx context.Context, level float64) error {
	if err := a.Check(media.Vimeo, "set volume"); err != nil {
		return err
	}
	return a.player.SetVolume(ctx, level)
}

func (a *Adapter) Mute(ctx context.Context) error {
	if err := a.Check(media.Vimeo, "mute"); err != nil {
		return err
	}
	return a.player.SetVolume(ctx, 0)
}

func (a *Adapter) Unmute(ctx context.Context) error {
	if err := a.Check(media.Vimeo, "unmute"); err != nil {
		return err
	}
	return a.player.SetVolume(ctx, 1)
}

func (a *Adapter) CurrentTime(ctx context.Context) (float64, error) {
	if err := a.Check(media.Vimeo, "current time"); err != nil {
		return 0, err
	}
	return a.player.GetCurrentTime(ctx)
}

func (a *Adapter) Duration(ctx context.Context) (float64, error) {
	if err := a.Check(media.Vimeo, "duration"); err != nil {
		return 0, err
	}
	return a.player.GetDuration(ctx)
}

func (a *Adapter) Destroy(ctx context.Context) error {
	if !a.End() || a.player == nil {
		return nil
	}
	return a.player.Destroy(ctx)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// playerError builds the error payload from the SDK's error data.
func playerError(data map[string]any) error {
	msg, _ := data["message"].(string)
	if v, ok := data["name"]; msg == "" && ok && v != nil {
		msg = fmt.Sprint(v)
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("vimeo player error: %s", msg)
}

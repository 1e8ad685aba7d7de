// Package dailymotion adapts the Dailymotion player SDK to the common control surface.
//
// The player is usable once it emits apiready. All control methods are real; muting
// uses the SDK's setMuted.
package dailymotion

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"sync"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/sdk"
)

// ReadyEvent is emitted by the SDK player once its API accepts calls.
const ReadyEvent = "apiready"

// Config is passed to the SDK when a player is created.
type Config struct {
	Video  string
	Params map[string]any
}

// API is the entry point of the loaded SDK.
type API interface {
	CreatePlayer(ctx context.Context, elementID string, cfg Config) (Player, error)
}

// Player is an SDK player instance.
type Player interface {
	AddEventListener(name string, fn func(data map[string]any)) (remove func())
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	SetVolume(ctx context.Context, level float64) error
	SetMuted(ctx context.Context, muted bool) error
	CurrentTime(ctx context.Context) (float64, error)
	Duration(ctx context.Context) (float64, error)
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
	"video_end":    event.Ended,
	"end":          event.Ended,
	"volumechange": event.VolumeChange,
	"error":        event.Error,
}

var (
	idPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	errNoID   = errors.New("element has no valid data-dailymotion-id")
)

// Adapter plays a Dailymotion video.
type Adapter struct {
	provider.Lifecycle

	api    API
	player Player
}

func New(api API) *Adapter {
	return &Adapter{api: api}
}

// Provider describes the Dailymotion backend and the script it needs.
func Provider(api API, script sdk.Script) *provider.Provider {
	return &provider.Provider{
		Kind:   media.Dailymotion,
		Name:   "Dailymotion",
		Types:  []media.Type{media.Video},
		Script: mo.Some(script),
		New:    func() provider.Adapter { return New(api) },
	}
}

// Params builds the SDK player parameters. Provider params override the defaults.
func Params(opts media.Options) map[string]any {
	params := map[string]any{
		"controls":             false,
		"queue-enable":         false,
		"sharing-enable":       false,
		"ui-logo":              false,
		"ui-start-screen-info": false,
		"playsinline":          opts.Playsinline,
		"loop":                 opts.Loop,
	}
	maps.Copy(params, opts.ProviderParams)
	return params
}

func (a *Adapter) Initialize(ctx context.Context, el *media.Element, opts media.Options, emit provider.Emit) error {
	if err := a.Begin(media.Dailymotion); err != nil {
		return err
	}
	if el == nil || !idPattern.MatchString(el.DataID(media.Dailymotion)) {
		return &media.Error{Kind: media.ErrAdapterInit, Op: "dailymotion initialize", Err: errNoID}
	}

	player, err := a.api.CreatePlayer(ctx, el.ID, Config{
		Video:  el.DataID(media.Dailymotion),
		Params: Params(opts),
	})
	if err != nil {
		return media.Wrap(media.ErrAdapterInit, "dailymotion initialize", err)
	}
	a.player = player

	ready := make(chan struct{})
	var once sync.Once
	a.Track(player.AddEventListener(ReadyEvent, func(map[string]any) {
		once.Do(func() { close(ready) })
	}))

	select {
	case <-ready:
	case <-ctx.Done():
		return media.Wrap(media.ErrAdapterInit, "dailymotion ready", ctx.Err())
	}

	for name, t := range sdkEvents {
		t := t
		a.Track(player.AddEventListener(name, func(data map[string]any) { emit(t, payload(t, data)) }))
	}

	a.MarkReady()
	return nil
}

func payload(t event.Type, data map[string]any) any {
	switch t {
	case event.TimeUpdate:
		return event.TimePayload{CurrentTime: number(data["currentTime"]), Duration: number(data["duration"])}
	case event.VolumeChange:
		muted, _ := data["muted"].(bool)
		return event.VolumePayload{Volume: number(data["volume"]), Muted: muted}
	case event.Error:
		return playerError(data)
	default:
		return nil
	}
}

func (a *Adapter) Play(ctx context.Context) error {
	if err := a.Check(media.Dailymotion, "play"); err != nil {
		return err
	}
	return a.player.Play(ctx)
}

func (a *Adapter) Pause(ctx context.Context) error {
	if err := a.Check(media.Dailymotion, "pause"); err != nil {
		return err
	}
	return a.player.Pause(ctx)
}

func (a *Adapter) Seek(ctx context.Context, seconds float64) error {
	if err := a.Check(media.Dailymotion, "seek"); err != nil {
		return err
	}
	return a.player.Seek(ctx, seconds)
}

func (a *Adapter) SetVolume(ctx context.Context, level float64) error {
	if err := a.Check(media.Dailymotion, "set volume"); err != nil {
		return err
	}
	return a.player.SetVolume(ctx, level)
}

func (a *Adapter) Mute(ctx context.Context) error {
	if err := a.Check(media.Dailymotion, "mute"); err != nil {
		return err
	}
	return a.player.SetMuted(ctx, true)
}

func (a *Adapter) Unmute(ctx context.Context) error {
	if err := a.Check(media.Dailymotion, "unmute"); err != nil {
		return err
	}
	return a.player.SetMuted(ctx, false)
}

func (a *Adapter) CurrentTime(ctx context.Context) (float64, error) {
	if err := a.Check(media.Dailymotion, "current time"); err != nil {
		return 0, err
	}
	return a.player.CurrentTime(ctx)
}

func (a *Adapter) Duration(ctx context.Context) (float64, error) {
	if err := a.Check(media.Dailymotion, "duration"); err != nil {
		return 0, err
	}
	return a.player.Duration(ctx)
}

func (a *Adapter) Destroy(ctx context.Context) error {
	if !a.End() || a.player == nil {
		return nil
	}
	return a.player.Destroy(ctx)
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// playerError builds the error payload from the SDK's error data.
func playerError(data map[string]any) error {
	msg, _ := data["message"].(string)
	if v, ok := data["code"]; msg == "" && ok && v != nil {
		msg = fmt.Sprint(v)
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("dailymotion player error: %s", msg)
}

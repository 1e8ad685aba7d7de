// Package youtube adapts the YouTube iframe API to the common control surface.
//
// The API has no timeupdate event, so the adapter polls the current time every 250ms
// while the video plays. Volume is scaled from 0..1 to the API's 0..100 range. All
// control methods are real.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/sdk"
)

// Player states reported through OnStateChange.
const (
	StateUnstarted = -1
	StateEnded     = 0
	StatePlaying   = 1
	StatePaused    = 2
	StateBuffering = 3
	StateCued      = 5
)

// TickInterval is how often timeupdate is synthesized while playing.
const TickInterval = 250 * time.Millisecond

// Events are the callbacks the API invokes on a player.
type Events struct {
	OnReady       func()
	OnStateChange func(state int)
	OnError       func(code int)
}

// Config is passed to the API when a player is created.
type Config struct {
	VideoID    string
	PlayerVars map[string]any
	Events     Events
}

// API is the entry point of the loaded iframe API.
type API interface {
	NewPlayer(ctx context.Context, elementID string, cfg Config) (Player, error)
}

// Player is an iframe API player instance.
type Player interface {
	PlayVideo(ctx context.Context) error
	PauseVideo(ctx context.Context) error
	SeekTo(ctx context.Context, seconds float64, allowSeekAhead bool) error
	SetVolume(ctx context.Context, volume int) error
	Mute(ctx context.Context) error
	UnMute(ctx context.Context) error
	GetCurrentTime(ctx context.Context) (float64, error)
	GetDuration(ctx context.Context) (float64, error)
	Destroy(ctx context.Context) error
}

// stateEvents maps player states onto the common vocabulary. Unstarted and cued are dropped.
var stateEvents = map[int]event.Type{
	StateEnded:     event.Ended,
	StatePlaying:   event.Playing,
	StatePaused:    event.Pause,
	StateBuffering: event.Waiting,
}

var (
	idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	errNoID   = errors.New("element has no valid data-youtube-id")
)

// Adapter plays a YouTube video.
type Adapter struct {
	provider.Lifecycle

	api      API
	player   Player
	detached atomic.Bool
	emit     provider.Emit

	tickMu sync.Mutex
	tick   chan struct{}
}

func New(api API) *Adapter {
	return &Adapter{api: api}
}

// Provider describes the YouTube backend and the script it needs.
func Provider(api API, script sdk.Script) *provider.Provider {
	return &provider.Provider{
		Kind:   media.YouTube,
		Name:   "YouTube",
		Types:  []media.Type{media.Video},
		Script: mo.Some(script),
		New:    func() provider.Adapter { return New(api) },
	}
}

// PlayerVars builds the player parameters. Provider params override the defaults.
func PlayerVars(opts media.Options) map[string]any {
	vars := map[string]any{
		"showinfo":       0,
		"modestbranding": 0,
		"rel":            0,
		"controls":       0,
		"disablekb":      1,
		"fs":             0,
		"iv_load_policy": 3,
		"playsinline":    boolInt(opts.Playsinline),
		"loop":           boolInt(opts.Loop),
	}
	maps.Copy(vars, opts.ProviderParams)
	return vars
}

func (a *Adapter) Initialize(ctx context.Context, el *media.Element, opts media.Options, emit provider.Emit) error {
	if err := a.Begin(media.YouTube); err != nil {
		return err
	}
	if el == nil || !idPattern.MatchString(el.DataID(media.YouTube)) {
		return &media.Error{Kind: media.ErrAdapterInit, Op: "youtube initialize", Err: errNoID}
	}
	a.emit = emit

	ready := make(chan error, 1)
	var readyOnce sync.Once
	settle := func(err error) { readyOnce.Do(func() { ready <- err }) }

	player, err := a.api.NewPlayer(ctx, el.ID, Config{
		VideoID:    el.DataID(media.YouTube),
		PlayerVars: PlayerVars(opts),
		Events: Events{
			OnReady: func() { settle(nil) },
			OnStateChange: func(state int) {
				if !a.detached.Load() {
					a.onStateChange(state)
				}
			},
			OnError: func(code int) {
				err := fmt.Errorf("youtube player error %d", code)
				settle(err)
				if !a.detached.Load() && a.Check(media.YouTube, "error") == nil {
					emit(event.Error, err)
				}
			},
		},
	})
	if err != nil {
		return media.Wrap(media.ErrAdapterInit, "youtube initialize", err)
	}
	a.player = player
	a.Track(func() {
		a.detached.Store(true)
		a.stopTicker()
	})

	select {
	case err := <-ready:
		if err != nil {
			return media.Wrap(media.ErrAdapterInit, "youtube ready", err)
		}
	case <-ctx.Done():
		return media.Wrap(media.ErrAdapterInit, "youtube ready", ctx.Err())
	}

	a.MarkReady()
	return nil
}

func (a *Adapter) onStateChange(state int) {
	t, ok := stateEvents[state]
	if !ok {
		log.Tracef("youtube: dropping state %d", state)
		return
	}

	if state == StatePlaying {
		a.startTicker()
	} else {
		a.stopTicker()
	}
	a.emit(t, nil)
}

func (a *Adapter) startTicker() {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()

	if a.tick != nil {
		return
	}
	stop := make(chan struct{})
	a.tick = stop

	go func() {
		ticker := time.NewTicker(TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if a.detached.Load() {
					return
				}
				ctx := context.Background()
				current, err := a.player.GetCurrentTime(ctx)
				if err != nil {
					continue
				}
				duration, _ := a.player.GetDuration(ctx)
				a.emit(event.TimeUpdate, event.TimePayload{CurrentTime: current, Duration: duration})
			}
		}
	}()
}

func (a *Adapter) stopTicker() {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()

	if a.tick != nil {
		close(a.tick)
		a.tick = nil
	}
}

func (a *Adapter) Play(ctx context.Context) error {
	if err := a.Check(media.YouTube, "play"); err != nil {
		return err
	}
	return a.player.PlayVideo(ctx)
}

func (a *Adapter) Pause(ctx context.Context) error {
	if err := a.Check(media.YouTube, "pause"); err != nil {
		return err
	}
	return a.player.PauseVideo(ctx)
}

func (a *Adapter) Seek(ctx context.Context, seconds float64) error {
	if err := a.Check(media.YouTube, "seek"); err != nil {
		return err
	}
	return a.player.SeekTo(ctx, seconds, true)
}

func (a *Adapter) SetVolume(ctx context.Context, level float64) error {
	if err := a.Check(media.YouTube, "set volume"); err != nil {
		return err
	}
	return a.player.SetVolume(ctx, int(level*100+0.5))
}

func (a *Adapter) Mute(ctx context.Context) error {
	if err := a.Check(media.YouTube, "mute"); err != nil {
		return err
	}
	return a.player.Mute(ctx)
}

func (a *Adapter) Unmute(ctx context.Context) error {
	if err := a.Check(media.YouTube, "unmute"); err != nil {
		return err
	}
	return a.player.UnMute(ctx)
}

func (a *Adapter) CurrentTime(ctx context.Context) (float64, error) {
	if err := a.Check(media.YouTube, "current time"); err != nil {
		return 0, err
	}
	return a.player.GetCurrentTime(ctx)
}

func (a *Adapter) Duration(ctx context.Context) (float64, error) {
	if err := a.Check(media.YouTube, "duration"); err != nil {
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

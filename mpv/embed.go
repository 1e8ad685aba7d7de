package mpv

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/provider/dailymotion"
	"github.com/vplay-cli/vplay/provider/html5"
	"github.com/vplay-cli/vplay/provider/vimeo"
	"github.com/vplay-cli/vplay/provider/youtube"
	"github.com/vplay-cli/vplay/sdk"
)

// Page URLs handed to mpv for each embed kind.
const (
	YouTubeWatchURL     = "https://www.youtube.com/watch?v=%s"
	VimeoPageURL        = "https://vimeo.com/%s"
	DailymotionVideoURL = "https://www.dailymotion.com/video/%s"
)

// PageURL returns the address a media element plays from: the provider's page for
// embeds, the source itself otherwise.
func PageURL(kind media.Kind, el *media.Element) string {
	switch kind {
	case media.YouTube:
		return fmt.Sprintf(YouTubeWatchURL, el.DataID(kind))
	case media.Vimeo:
		return fmt.Sprintf(VimeoPageURL, el.DataID(kind))
	case media.Dailymotion:
		return fmt.Sprintf(DailymotionVideoURL, el.DataID(kind))
	default:
		return el.Src()
	}
}

// Providers returns every provider backed by h. Embed providers still require their
// remote scripts from scripts before they initialize.
func Providers(h *Host, scripts []sdk.Script) []*provider.Provider {
	script := func(kind media.Kind) sdk.Script {
		s, ok := lo.Find(scripts, func(s sdk.Script) bool { return s.Kind == kind })
		if !ok {
			return sdk.Script{Kind: kind}
		}
		return s
	}

	return []*provider.Provider{
		html5.Provider(h),
		vimeo.Provider(VimeoAPI{h}, script(media.Vimeo)),
		youtube.Provider(YouTubeAPI{h}, script(media.YouTube)),
		dailymotion.Provider(DailymotionAPI{h}, script(media.Dailymotion)),
	}
}

// YouTubeAPI implements the iframe API on top of mpv.
type YouTubeAPI struct{ Host *Host }

func (a YouTubeAPI) NewPlayer(ctx context.Context, _ string, cfg youtube.Config) (youtube.Player, error) {
	m, err := a.Host.open(ctx, fmt.Sprintf(YouTubeWatchURL, cfg.VideoID), Launch{Start: number(cfg.PlayerVars["start"])})
	if err != nil {
		return nil, err
	}

	states := map[string]int{
		"playing": youtube.StatePlaying,
		"pause":   youtube.StatePaused,
		"waiting": youtube.StateBuffering,
		"ended":   youtube.StateEnded,
	}
	p := &youtubePlayer{Media: m}
	if fn := cfg.Events.OnStateChange; fn != nil {
		for name, state := range states {
			state := state
			p.offs = append(p.offs, m.AddEventListener(name, func(any) { fn(state) }))
		}
	}
	if fn := cfg.Events.OnError; fn != nil {
		p.offs = append(p.offs, m.AddEventListener("error", func(any) { fn(youtubeHTML5Error) }))
	}
	if fn := cfg.Events.OnReady; fn != nil {
		go fn()
	}
	return p, nil
}

// youtubeHTML5Error is the iframe API's code for a playback failure in the player.
const youtubeHTML5Error = 5

type youtubePlayer struct {
	*Media
	offs []func()
}

func (p *youtubePlayer) PlayVideo(ctx context.Context) error  { return p.Play(ctx) }
func (p *youtubePlayer) PauseVideo(ctx context.Context) error { return p.Pause(ctx) }
func (p *youtubePlayer) Mute(ctx context.Context) error       { return p.SetMuted(ctx, true) }
func (p *youtubePlayer) UnMute(ctx context.Context) error     { return p.SetMuted(ctx, false) }

func (p *youtubePlayer) SeekTo(ctx context.Context, seconds float64, _ bool) error {
	return p.SetCurrentTime(ctx, seconds)
}

// SetVolume takes the API's 0..100 range, which is also mpv's.
func (p *youtubePlayer) SetVolume(ctx context.Context, volume int) error {
	return p.Media.SetVolume(ctx, float64(volume)/100)
}

func (p *youtubePlayer) GetCurrentTime(ctx context.Context) (float64, error) {
	return p.CurrentTime(ctx)
}

func (p *youtubePlayer) GetDuration(ctx context.Context) (float64, error) {
	return p.Duration(ctx)
}

func (p *youtubePlayer) Destroy(context.Context) error {
	for _, off := range p.offs {
		off()
	}
	return p.Close()
}

// VimeoAPI implements the Vimeo player SDK on top of mpv.
type VimeoAPI struct{ Host *Host }

func (a VimeoAPI) NewPlayer(ctx context.Context, _ string, params map[string]any) (vimeo.Player, error) {
	id := fmt.Sprint(params["id"])
	m, err := a.Host.open(ctx, fmt.Sprintf(VimeoPageURL, id), Launch{})
	if err != nil {
		return nil, err
	}
	return &vimeoPlayer{Media: m, offs: make(map[string][]func())}, nil
}

type vimeoPlayer struct {
	*Media

	mu   sync.Mutex
	offs map[string][]func()
}

// Ready returns at once: the session accepts commands as soon as it is open.
func (p *vimeoPlayer) Ready(context.Context) error { return nil }

func (p *vimeoPlayer) On(name string, fn func(map[string]any)) {
	off := p.AddEventListener(name, func(data any) {
		switch v := data.(type) {
		case event.TimePayload:
			fn(map[string]any{"seconds": v.CurrentTime, "duration": v.Duration})
		case event.VolumePayload:
			fn(map[string]any{"volume": lo.Ternary(v.Muted, 0.0, v.Volume)})
		case error:
			fn(map[string]any{"name": "PlaybackError", "message": v.Error()})
		default:
			fn(map[string]any{})
		}
	})

	p.mu.Lock()
	p.offs[name] = append(p.offs[name], off)
	p.mu.Unlock()
}

func (p *vimeoPlayer) Off(name string) {
	p.mu.Lock()
	offs := p.offs[name]
	delete(p.offs, name)
	p.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

func (p *vimeoPlayer) GetCurrentTime(ctx context.Context) (float64, error) {
	return p.CurrentTime(ctx)
}

func (p *vimeoPlayer) GetDuration(ctx context.Context) (float64, error) {
	return p.Duration(ctx)
}

func (p *vimeoPlayer) Destroy(context.Context) error {
	return p.Close()
}

// DailymotionAPI implements the Dailymotion player SDK on top of mpv.
type DailymotionAPI struct{ Host *Host }

func (a DailymotionAPI) CreatePlayer(ctx context.Context, _ string, cfg dailymotion.Config) (dailymotion.Player, error) {
	m, err := a.Host.open(ctx, fmt.Sprintf(DailymotionVideoURL, cfg.Video), Launch{})
	if err != nil {
		return nil, err
	}
	return &dailymotionPlayer{Media: m}, nil
}

type dailymotionPlayer struct {
	*Media
}

// nativeNames maps the SDK's event names onto the session's where they differ. The
// session reports the end of media once, as video_end; "end" never fires.
var nativeNames = map[string]string{
	"video_end": "ended",
	"end":       "",
}

// AddEventListener fires apiready once, asynchronously, for every subscriber.
func (p *dailymotionPlayer) AddEventListener(name string, fn func(map[string]any)) (remove func()) {
	if name == dailymotion.ReadyEvent {
		go fn(map[string]any{})
		return func() {}
	}
	name = lo.ValueOr(nativeNames, name, name)
	if name == "" {
		return func() {}
	}

	return p.Media.AddEventListener(name, func(data any) {
		switch v := data.(type) {
		case event.TimePayload:
			fn(map[string]any{"currentTime": v.CurrentTime, "duration": v.Duration})
		case event.VolumePayload:
			fn(map[string]any{"volume": v.Volume, "muted": v.Muted})
		case error:
			fn(map[string]any{"message": v.Error()})
		default:
			fn(map[string]any{})
		}
	})
}

func (p *dailymotionPlayer) Seek(ctx context.Context, seconds float64) error {
	return p.SetCurrentTime(ctx, seconds)
}

func (p *dailymotionPlayer) Destroy(context.Context) error {
	return p.Close()
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

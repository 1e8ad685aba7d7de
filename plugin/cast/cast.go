// Package cast is a plugin that hands html5 video over to a remote receiver.
//
// While a session is open, local play, pause and volume changes are relayed to the
// receiver and subtitle switches edit its active tracks. Opening a session pauses local
// playback; closing it resumes playback when it was running before.
package cast

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin"
)

const Name = "cast"

var errNoRemote = errors.New("no cast device configured")

// Options configure the plugin.
type Options struct {
	TextTrackStyle map[string]any `option:"textTrackStyle"`
	Metadata       map[string]any `option:"metadata"`
}

// Descriptor declares the plugin bound to remote. It supports html5 video only.
func Descriptor(remote Context) *plugin.Descriptor {
	return &plugin.Descriptor{
		Name:        Name,
		Description: "Cast html5 video to a remote receiver",
		Providers:   []media.Kind{media.HTML5},
		Types:       []media.Type{media.Video},
		New: func(core plugin.Core, raw map[string]any) (plugin.Plugin, error) {
			p, err := New(core, remote, raw)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// Plugin relays one player to the remote.
type Plugin struct {
	plugin.Base

	core   plugin.Core
	remote Context
	opts   Options

	mu        sync.Mutex
	tracks    []media.Track
	wasPaused bool
	casting   bool
	offState  func()
	trackIDs  []event.ListenerID
	relays    []lo.Tuple2[event.Type, event.ListenerID]
}

func New(core plugin.Core, remote Context, raw map[string]any) (*Plugin, error) {
	var opts Options
	if err := plugin.Decode(Name, raw, &opts); err != nil {
		return nil, err
	}
	if remote == nil {
		return nil, media.Wrap(media.ErrConfig, "plugin "+Name, errNoRemote)
	}
	return &Plugin{core: core, remote: remote, opts: opts}, nil
}

// Init snapshots the text tracks and starts following the remote session.
func (p *Plugin) Init(context.Context) error {
	p.mu.Lock()
	p.tracks = p.core.Tracks()
	p.mu.Unlock()

	p.offState = p.remote.OnSessionStateChanged(p.onStateChange)
	p.trackIDs = []event.ListenerID{
		p.core.On(event.TrackEnabled, p.onTrackChange),
		p.core.On(event.TrackDisabled, p.onTrackChange),
	}
	return nil
}

func (p *Plugin) Destroy(context.Context) error {
	if p.offState != nil {
		p.offState()
		p.offState = nil
	}
	if len(p.trackIDs) == 2 {
		p.core.Off(event.TrackEnabled, p.trackIDs[0])
		p.core.Off(event.TrackDisabled, p.trackIDs[1])
		p.trackIDs = nil
	}
	p.detach()
	return nil
}

// Casting reports whether a session is carrying the media.
func (p *Plugin) Casting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.casting
}

func (p *Plugin) onStateChange(state SessionState) {
	log.Debugf("cast: session %s", state)

	ctx := context.Background()
	switch state {
	case SessionStarted:
		p.start(ctx)
	case SessionResumed:
		if err := p.remote.EndCurrentSession(ctx, true); err != nil {
			log.Warnf("cast: ending resumed session: %v", err)
		}
	case SessionEnded:
		p.stop()
	}
}

func (p *Plugin) start(ctx context.Context) {
	p.mu.Lock()
	p.wasPaused = p.core.Paused()
	p.casting = true
	p.mu.Unlock()

	p.core.Pause()

	session := p.remote.CurrentSession()
	if session == nil {
		return
	}
	log.Infof("cast: casting on %s", lo.CoalesceOrEmpty(session.DeviceName(), DefaultDeviceName))

	req := p.LoadRequest()
	if err := session.LoadMedia(ctx, req); err != nil {
		log.Errorf("cast: loading media: %v", err)
		return
	}
	p.attach()
}

func (p *Plugin) stop() {
	p.detach()

	p.mu.Lock()
	resume := p.casting && !p.wasPaused
	p.casting = false
	p.mu.Unlock()

	if resume {
		p.core.Play()
	}
}

// LoadRequest builds the request that hands the current media to the receiver.
func (p *Plugin) LoadRequest() LoadRequest {
	p.mu.Lock()
	tracks := append([]media.Track(nil), p.tracks...)
	wasPaused := p.wasPaused
	p.mu.Unlock()

	info := MediaInfo{
		ContentID:      p.core.Element().Src(),
		TextTrackStyle: DefaultTextTrackStyle(),
		Metadata:       map[string]any{},
	}
	if p.core.Type() == media.Video {
		info.ContentType = VideoContentType
	}
	maps.Copy(info.TextTrackStyle, p.opts.TextTrackStyle)

	if poster := p.core.Options().Poster; poster != "" {
		info.Metadata["images"] = []Image{{URL: poster}}
	}
	maps.Copy(info.Metadata, p.opts.Metadata)

	req := LoadRequest{Autoplay: !wasPaused}
	if t, err := p.core.CurrentTime().Collect(); err == nil {
		req.CurrentTime = t
	}

	if len(tracks) > 0 {
		info.Tracks = lo.Map(tracks, func(t media.Track, i int) Track {
			return Track{
				ID:          i,
				Type:        TrackTypeText,
				ContentID:   t.URL,
				ContentType: TrackContentType,
				Subtype:     TrackSubtitles,
				Name:        t.Label,
				Language:    t.Language,
			}
		})
		_, active, ok := lo.FindIndexOf(tracks, func(t media.Track) bool { return t.IsDefault })
		if !ok {
			active = 0
		}
		req.ActiveTrackIDs = []int{active}
	}

	req.Media = info
	return req
}

// ActiveTracks maps a subtitle language to the receiver's active track ids. "off" and
// the empty language disable subtitles; ok is false for an unknown language.
func (p *Plugin) ActiveTracks(language string) (ids []int, ok bool) {
	if language == "" || language == "off" {
		return []int{}, true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, idx, found := lo.FindIndexOf(p.tracks, func(t media.Track) bool { return t.Language == language })
	if !found {
		return nil, false
	}
	return []int{idx}, true
}

func (p *Plugin) onTrackChange(e event.Event) {
	session := p.remote.CurrentSession()
	if session == nil || !p.Casting() {
		return
	}

	var language string
	if tp, ok := e.Payload.(event.TrackPayload); ok && e.Type == event.TrackEnabled {
		language = tp.Language
	}

	ids, ok := p.ActiveTracks(language)
	if !ok {
		log.Warnf("cast: no track for language %q", language)
		return
	}
	if err := session.EditTracks(context.Background(), ids); err != nil {
		log.Warnf("cast: editing tracks: %v", err)
	}
}

func (p *Plugin) attach() {
	relay := func(t event.Type, fn func(Session, event.Event) error) {
		id := p.core.On(t, func(e event.Event) {
			session := p.remote.CurrentSession()
			if session == nil {
				return
			}
			if err := fn(session, e); err != nil {
				log.Warnf("cast: relaying %s: %v", t, err)
			}
		})
		p.mu.Lock()
		p.relays = append(p.relays, lo.T2(t, id))
		p.mu.Unlock()
	}

	toggle := func(s Session, _ event.Event) error { return s.PlayOrPause(context.Background()) }
	relay(event.Play, toggle)
	relay(event.Pause, toggle)
	relay(event.VolumeChange, func(s Session, e event.Event) error {
		level, muted := 1.0, p.core.Muted()
		if vp, ok := e.Payload.(event.VolumePayload); ok {
			level, muted = vp.Volume, vp.Muted
		}
		if muted {
			level = 0
		}
		return s.SetVolume(context.Background(), level)
	})
}

func (p *Plugin) detach() {
	p.mu.Lock()
	relays := p.relays
	p.relays = nil
	p.mu.Unlock()

	for _, r := range relays {
		p.core.Off(r.A, r.B)
	}
}

// Package mpv plays media elements in an external mpv (or IINA) process driven over
// mpv's JSON-IPC socket. It implements the native adapter's Host and bridges the embed
// SDK APIs onto mpv, which resolves YouTube, Vimeo and Dailymotion pages through ytdl.
package mpv

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider/html5"
)

// StartFunc opens target in a new player session.
type StartFunc func(ctx context.Context, target string, l Launch) (*Session, error)

// Host attaches media elements to mpv sessions.
type Host struct {
	start StartFunc
}

// NewHost returns a host that spawns the executable at path for every element.
func NewHost(path string) *Host {
	return &Host{start: func(ctx context.Context, target string, l Launch) (*Session, error) {
		return Start(ctx, path, target, l)
	}}
}

// NewHostWith returns a host that opens sessions through start.
func NewHostWith(start StartFunc) *Host {
	return &Host{start: start}
}

var errNoTarget = errors.New("element has nothing to play")

// Attach opens the element's source. Declared text tracks become subtitle files.
func (h *Host) Attach(ctx context.Context, el *media.Element, _ media.Options) (html5.Media, error) {
	if el == nil || el.Src() == "" {
		return nil, errNoTarget
	}

	var subs []string
	for _, t := range el.TextTracks() {
		if t.URL != "" {
			subs = append(subs, t.URL)
		}
	}

	return h.open(ctx, el.Src(), Launch{Title: el.Attr("title"), Subtitles: subs})
}

func (h *Host) open(ctx context.Context, target string, l Launch) (*Media, error) {
	s, err := h.start(ctx, target, l)
	if err != nil {
		return nil, err
	}

	m := newMedia(s)
	if err := m.observe(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return m, nil
}

// Media is one element playing in an mpv session. It satisfies html5.Media.
type Media struct {
	session *Session
	tracker *tracker

	mu        sync.Mutex
	next      int
	listeners map[string]map[int]func(any)
}

func newMedia(s *Session) *Media {
	m := &Media{session: s, listeners: make(map[string]map[int]func(any))}
	m.tracker = newTracker(m.dispatch)
	s.OnEvent(m.tracker.handle)
	return m
}

func (m *Media) observe(ctx context.Context) error {
	for i, name := range observed {
		if err := m.session.Observe(ctx, i+1, name); err != nil {
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return nil
}

func (m *Media) Play(ctx context.Context) error {
	return m.session.Set(ctx, "pause", false)
}

func (m *Media) Pause(ctx context.Context) error {
	return m.session.Set(ctx, "pause", true)
}

func (m *Media) SetCurrentTime(ctx context.Context, seconds float64) error {
	_, err := m.session.Command(ctx, "seek", seconds, "absolute")
	return err
}

func (m *Media) CurrentTime(ctx context.Context) (float64, error) {
	return m.session.Float(ctx, "time-pos")
}

func (m *Media) Duration(ctx context.Context) (float64, error) {
	return m.session.Float(ctx, "duration")
}

// SetVolume takes a level in 0..1; mpv's volume property runs 0..100.
func (m *Media) SetVolume(ctx context.Context, level float64) error {
	return m.session.Set(ctx, "volume", level*100)
}

func (m *Media) SetMuted(ctx context.Context, muted bool) error {
	return m.session.Set(ctx, "mute", muted)
}

// AddEventListener subscribes fn to a native event name.
func (m *Media) AddEventListener(name string, fn func(data any)) (remove func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	id := m.next
	if m.listeners[name] == nil {
		m.listeners[name] = make(map[int]func(any))
	}
	m.listeners[name][id] = fn

	return func() {
		m.mu.Lock()
		delete(m.listeners[name], id)
		m.mu.Unlock()
	}
}

// Exited is closed once the mpv process is gone.
func (m *Media) Exited() <-chan struct{} {
	return m.session.Exited()
}

func (m *Media) Close() error {
	return m.session.Close()
}

func (m *Media) dispatch(name string, data any) {
	m.mu.Lock()
	registered := m.listeners[name]
	fns := make([]func(any), 0, len(registered))
	for _, id := range slices.Sorted(maps.Keys(registered)) {
		fns = append(fns, registered[id])
	}
	m.mu.Unlock()

	log.Tracef("mpv: %s %v", name, data)
	for _, fn := range fns {
		fn(data)
	}
}

// observed lists the properties watched for every session. Observer ids are index+1.
var observed = []string{
	"pause",
	"seeking",
	"time-pos",
	"duration",
	"eof-reached",
	"volume",
	"mute",
	"paused-for-cache",
}

// timeStep is the smallest position change reported as timeupdate.
const timeStep = 0.25

// tracker turns property-change notifications into native media events. The first
// notification of each property is the initial value and only seeds the state.
type tracker struct {
	emit func(name string, data any)

	mu       sync.Mutex
	seen     map[string]bool
	duration float64
	volume   float64
	muted    bool
	lastTime float64
	seeked   bool
}

func newTracker(emit func(string, any)) *tracker {
	return &tracker{emit: emit, seen: make(map[string]bool), volume: 100}
}

func (t *tracker) handle(msg Message) {
	switch msg.Event {
	case "property-change":
		t.property(msg.Name, msg.Data)
	case "end-file":
		if msg.Reason != "error" {
			return
		}
		err := errors.New(lo.CoalesceOrEmpty(msg.FileError, "playback failed"))
		log.Warnf("mpv: playback ended with an error: %v", err)
		t.emit("error", fmt.Errorf("mpv: %w", err))
	}
}

func (t *tracker) property(name string, data any) {
	if data == nil {
		return
	}

	t.mu.Lock()
	first := !t.seen[name]
	t.seen[name] = true

	var out []func()
	send := func(n string, d any) { out = append(out, func() { t.emit(n, d) }) }

	switch name {
	case "pause":
		paused, _ := data.(bool)
		if !first {
			if paused {
				send("pause", nil)
			} else {
				send("play", nil)
				send("playing", nil)
			}
		}
	case "seeking":
		seeking, _ := data.(bool)
		if !first {
			if seeking {
				send("seeking", nil)
			} else {
				t.seeked = true
				send("seeked", nil)
			}
		}
	case "time-pos":
		pos, _ := data.(float64)
		if first {
			t.lastTime = pos
		} else if t.seeked || pos-t.lastTime >= timeStep || pos < t.lastTime {
			t.seeked = false
			t.lastTime = pos
			send("timeupdate", event.TimePayload{CurrentTime: pos, Duration: t.duration})
		}
	case "duration":
		t.duration, _ = data.(float64)
	case "eof-reached":
		if eof, _ := data.(bool); eof && !first {
			send("ended", nil)
		}
	case "volume":
		t.volume, _ = data.(float64)
		if !first {
			send("volumechange", event.VolumePayload{Volume: t.volume / 100, Muted: t.muted})
		}
	case "mute":
		t.muted, _ = data.(bool)
		if !first {
			send("volumechange", event.VolumePayload{Volume: t.volume / 100, Muted: t.muted})
		}
	case "paused-for-cache":
		if !first {
			if waiting, _ := data.(bool); waiting {
				send("waiting", nil)
			} else {
				send("playing", nil)
			}
		}
	}
	t.mu.Unlock()

	for _, fn := range out {
		fn()
	}
}

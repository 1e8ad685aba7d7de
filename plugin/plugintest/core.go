// Package plugintest provides an in-memory plugin.Core for plugin tests.
package plugintest

import (
	"fmt"
	"sync"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin"
)

// Core records every control call and routes events through a real bus.
type Core struct {
	KindValue media.Kind
	TypeValue media.Type
	El        *media.Element
	Opts      media.Options
	TrackList []media.Track

	mu       sync.Mutex
	calls    []string
	time     float64
	duration float64
	volume   float64
	paused   bool
	muted    bool
	fail     error

	bus *event.Bus
}

var _ plugin.Core = (*Core)(nil)

// New returns a paused html5 video core with a one minute duration.
func New(el *media.Element) *Core {
	if el == nil {
		el = media.NewElement("video", "test", map[string]string{"src": "https://example.com/video.mp4"})
	}
	return &Core{
		KindValue: media.HTML5,
		TypeValue: media.Video,
		El:        el,
		TrackList: el.TextTracks(),
		duration:  60,
		volume:    1,
		paused:    true,
		bus:       event.NewBus(),
	}
}

// Calls returns the recorded control calls, formatted as name or name(arg).
func (c *Core) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// SetTime moves the playhead without recording a call.
func (c *Core) SetTime(t float64) {
	c.mu.Lock()
	c.time = t
	c.mu.Unlock()
}

// Fail makes every following control call reject with err.
func (c *Core) Fail(err error) {
	c.mu.Lock()
	c.fail = err
	c.mu.Unlock()
}

// Emit delivers an event to the registered listeners.
func (c *Core) Emit(t event.Type, payload any) { c.bus.Emit(t, payload) }

// Listeners returns how many listeners are registered for t.
func (c *Core) Listeners(t event.Type) int { return c.bus.Len(t) }

func (c *Core) record(call string, apply func() float64) *mo.Future[float64] {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	fail := c.fail
	var v float64
	if fail == nil && apply != nil {
		v = apply()
	}
	c.mu.Unlock()

	return mo.NewFuture(func(resolve func(float64), reject func(error)) {
		if fail != nil {
			reject(fail)
			return
		}
		resolve(v)
	})
}

func (c *Core) ID() string                                         { return "test-core" }
func (c *Core) Kind() media.Kind                                   { return c.KindValue }
func (c *Core) Type() media.Type                                   { return c.TypeValue }
func (c *Core) Element() *media.Element                            { return c.El }
func (c *Core) Options() media.Options                             { return c.Opts }
func (c *Core) Tracks() []media.Track                              { return append([]media.Track(nil), c.TrackList...) }
func (c *Core) On(t event.Type, fn event.Handler) event.ListenerID { return c.bus.On(t, fn) }
func (c *Core) Off(t event.Type, id event.ListenerID)              { c.bus.Off(t, id) }

func (c *Core) Dispatch(t event.Type, payload any) error {
	if !t.Valid() {
		return fmt.Errorf("unknown event %q", t)
	}
	c.bus.Emit(t, payload)
	return nil
}

func (c *Core) Play() *mo.Future[float64] {
	return c.record("play", func() float64 { c.paused = false; return 0 })
}

func (c *Core) Pause() *mo.Future[float64] {
	return c.record("pause", func() float64 { c.paused = true; return 0 })
}

func (c *Core) Seek(seconds float64) *mo.Future[float64] {
	return c.record(fmt.Sprintf("seek(%g)", seconds), func() float64 { c.time = seconds; return seconds })
}

func (c *Core) SetVolume(level float64) *mo.Future[float64] {
	return c.record(fmt.Sprintf("volume(%g)", level), func() float64 { c.volume = level; return level })
}

func (c *Core) Mute() *mo.Future[float64] {
	return c.record("mute", func() float64 { c.muted = true; return 0 })
}

func (c *Core) Unmute() *mo.Future[float64] {
	return c.record("unmute", func() float64 { c.muted = false; return 0 })
}

func (c *Core) CurrentTime() *mo.Future[float64] {
	return c.record("currentTime", func() float64 { return c.time })
}

func (c *Core) Duration() *mo.Future[float64] {
	return c.record("duration", func() float64 { return c.duration })
}

func (c *Core) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Core) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Core) Loading() bool { return false }

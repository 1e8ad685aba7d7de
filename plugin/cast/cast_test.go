package cast

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin/plugintest"
)

type fakeSession struct {
	mu      sync.Mutex
	loads   []LoadRequest
	toggles int
	volumes []float64
	edits   [][]int
	loadErr error
}

func (s *fakeSession) DeviceName() string { return "Living room" }

func (s *fakeSession) LoadMedia(_ context.Context, req LoadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, req)
	return s.loadErr
}

func (s *fakeSession) PlayOrPause(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles++
	return nil
}

func (s *fakeSession) SetVolume(_ context.Context, level float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes = append(s.volumes, level)
	return nil
}

func (s *fakeSession) EditTracks(_ context.Context, active []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, active)
	return nil
}

type fakeContext struct {
	mu       sync.Mutex
	session  *fakeSession
	handlers []func(SessionState)
	ended    int
}

func (c *fakeContext) OnSessionStateChanged(fn func(SessionState)) func() {
	c.mu.Lock()
	c.handlers = append(c.handlers, fn)
	idx := len(c.handlers) - 1
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.handlers[idx] = nil
		c.mu.Unlock()
	}
}

func (c *fakeContext) fire(state SessionState) {
	c.mu.Lock()
	handlers := append(([]func(SessionState))(nil), c.handlers...)
	c.mu.Unlock()
	for _, fn := range handlers {
		if fn != nil {
			fn(state)
		}
	}
}

func (c *fakeContext) RequestSession(context.Context) error {
	c.mu.Lock()
	c.session = &fakeSession{}
	c.mu.Unlock()
	c.fire(SessionStarted)
	return nil
}

func (c *fakeContext) EndCurrentSession(context.Context, bool) error {
	c.mu.Lock()
	c.session = nil
	c.ended++
	c.mu.Unlock()
	c.fire(SessionEnded)
	return nil
}

func (c *fakeContext) CurrentSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session
}

func newCore(poster string) *plugintest.Core {
	el := media.NewElement("video", "movie", map[string]string{"src": "https://cdn.example.com/movie.mp4"},
		media.Track{Index: 0, URL: "https://cdn.example.com/en.vtt", Label: "English", Language: "en"},
		media.Track{Index: 1, URL: "https://cdn.example.com/fr.vtt", Label: "Français", Language: "fr", IsDefault: true},
	)
	core := plugintest.New(el)
	core.Opts.Poster = poster
	return core
}

func TestDescriptor(t *testing.T) {
	Convey("Given the cast descriptor", t, func() {
		d := Descriptor(&fakeContext{})

		Convey("It supports html5 video only", func() {
			So(d.Matches(media.HTML5, media.Video), ShouldBeTrue)
			So(d.Matches(media.HTML5, media.Audio), ShouldBeFalse)
			So(d.Matches(media.YouTube, media.Video), ShouldBeFalse)
		})

		Convey("It refuses to build without a remote", func() {
			_, err := Descriptor(nil).New(newCore(""), nil)
			So(errors.Is(err, media.ErrConfig), ShouldBeTrue)
		})

		Convey("It rejects unknown options", func() {
			_, err := d.New(newCore(""), map[string]any{"color": "red"})
			So(errors.Is(err, media.ErrConfig), ShouldBeTrue)
		})
	})
}

func TestLoadRequest(t *testing.T) {
	Convey("Given an initialized plugin", t, func() {
		core := newCore("https://cdn.example.com/poster.jpg")
		core.SetTime(42)
		p, err := New(core, &fakeContext{}, map[string]any{
			"textTrackStyle": map[string]any{"fontScale": 1.5},
			"metadata":       map[string]any{"title": "Movie"},
		})
		So(err, ShouldBeNil)
		So(p.Init(context.Background()), ShouldBeNil)

		req := p.LoadRequest()

		Convey("Media info describes the source", func() {
			So(req.Media.ContentID, ShouldEqual, "https://cdn.example.com/movie.mp4")
			So(req.Media.ContentType, ShouldEqual, VideoContentType)
			So(req.CurrentTime, ShouldEqual, 42)
		})

		Convey("Tracks are offered as subtitles with the default one active", func() {
			So(req.Media.Tracks, ShouldHaveLength, 2)
			So(req.Media.Tracks[1], ShouldResemble, Track{
				ID:          1,
				Type:        TrackTypeText,
				ContentID:   "https://cdn.example.com/fr.vtt",
				ContentType: TrackContentType,
				Subtype:     TrackSubtitles,
				Name:        "Français",
				Language:    "fr",
			})
			So(req.ActiveTrackIDs, ShouldResemble, []int{1})
		})

		Convey("Options are merged over the defaults", func() {
			So(req.Media.TextTrackStyle["fontScale"], ShouldEqual, 1.5)
			So(req.Media.TextTrackStyle["edgeType"], ShouldEqual, "DROP_SHADOW")
			So(req.Media.Metadata["title"], ShouldEqual, "Movie")
			So(req.Media.Metadata["images"], ShouldResemble, []Image{{URL: "https://cdn.example.com/poster.jpg"}})
		})
	})

	Convey("Without a default track the first one is active", t, func() {
		el := media.NewElement("video", "v", map[string]string{"src": "a.mp4"},
			media.Track{Index: 0, URL: "en.vtt", Language: "en"},
			media.Track{Index: 1, URL: "de.vtt", Language: "de"},
		)
		p, err := New(plugintest.New(el), &fakeContext{}, nil)
		So(err, ShouldBeNil)
		So(p.Init(context.Background()), ShouldBeNil)
		So(p.LoadRequest().ActiveTrackIDs, ShouldResemble, []int{0})
	})
}

func TestSession(t *testing.T) {
	Convey("Given a playing player and a cast plugin", t, func() {
		ctx := context.Background()
		core := newCore("")
		core.Play()
		remote := &fakeContext{}
		p, err := New(core, remote, nil)
		So(err, ShouldBeNil)
		So(p.Init(ctx), ShouldBeNil)

		Convey("Starting a session pauses locally and loads the media", func() {
			So(remote.RequestSession(ctx), ShouldBeNil)

			So(p.Casting(), ShouldBeTrue)
			So(core.Paused(), ShouldBeTrue)
			So(remote.session.loads, ShouldHaveLength, 1)
			So(remote.session.loads[0].Autoplay, ShouldBeTrue)

			Convey("Local play, pause and volume changes are relayed", func() {
				core.Emit(event.Play, nil)
				core.Emit(event.Pause, nil)
				core.Emit(event.VolumeChange, event.VolumePayload{Volume: 0.4})
				core.Emit(event.VolumeChange, event.VolumePayload{Volume: 0.4, Muted: true})

				So(remote.session.toggles, ShouldEqual, 2)
				So(remote.session.volumes, ShouldResemble, []float64{0.4, 0})
			})

			Convey("Track switches edit the active tracks", func() {
				core.Emit(event.TrackEnabled, event.TrackPayload{Language: "en"})
				core.Emit(event.TrackEnabled, event.TrackPayload{Language: "off"})
				core.Emit(event.TrackDisabled, event.TrackPayload{Language: "en"})
				core.Emit(event.TrackEnabled, event.TrackPayload{Language: "jp"})

				So(remote.session.edits, ShouldResemble, [][]int{{0}, {}, {}})
			})

			Convey("Ending the session resumes local playback and stops relaying", func() {
				session := remote.session
				So(remote.EndCurrentSession(ctx, true), ShouldBeNil)

				So(p.Casting(), ShouldBeFalse)
				So(core.Paused(), ShouldBeFalse)
				So(core.Calls(), ShouldResemble, []string{"play", "pause", "currentTime", "play"})

				core.Emit(event.Play, nil)
				So(session.toggles, ShouldEqual, 0)
			})
		})

		Convey("A resumed session is ended", func() {
			remote.fire(SessionResumed)
			So(remote.ended, ShouldEqual, 1)
		})

		Convey("A paused player stays paused after the session", func() {
			core.Pause()
			So(remote.RequestSession(ctx), ShouldBeNil)
			So(remote.session.loads[0].Autoplay, ShouldBeFalse)
			So(remote.EndCurrentSession(ctx, true), ShouldBeNil)
			So(core.Paused(), ShouldBeTrue)
		})

		Convey("Destroy detaches from the remote and the player", func() {
			So(p.Destroy(ctx), ShouldBeNil)
			So(core.Listeners(event.TrackEnabled), ShouldEqual, 0)
			So(remote.RequestSession(ctx), ShouldBeNil)
			So(remote.session.loads, ShouldBeEmpty)
		})
	})
}

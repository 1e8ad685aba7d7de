package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/sdk"
)

type nopAdapter struct{}

func (nopAdapter) Initialize(context.Context, *media.Element, media.Options, Emit) error { return nil }
func (nopAdapter) Play(context.Context) error                                            { return nil }
func (nopAdapter) Pause(context.Context) error                                           { return nil }
func (nopAdapter) Seek(context.Context, float64) error                                   { return nil }
func (nopAdapter) SetVolume(context.Context, float64) error                              { return nil }
func (nopAdapter) Mute(context.Context) error                                            { return nil }
func (nopAdapter) Unmute(context.Context) error                                          { return nil }
func (nopAdapter) CurrentTime(context.Context) (float64, error)                          { return 0, nil }
func (nopAdapter) Duration(context.Context) (float64, error)                             { return 0, nil }
func (nopAdapter) Destroy(context.Context) error                                         { return nil }

func newProvider(kind media.Kind, script mo.Option[sdk.Script]) *Provider {
	return &Provider{
		Kind:   kind,
		Name:   string(kind),
		Types:  []media.Type{media.Video},
		Script: script,
		New:    func() Adapter { return nopAdapter{} },
	}
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry", t, func() {
		r, err := NewRegistry(
			newProvider(media.Vimeo, mo.Some(sdk.Script{Kind: media.Vimeo, URL: "https://player.vimeo.com/api/player.js"})),
			newProvider(media.HTML5, mo.None[sdk.Script]()),
		)
		So(err, ShouldBeNil)

		Convey("When trying to get an unknown provider", func() {
			_, ok := r.Get(media.YouTube)
			Convey("Then ok should be false", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Providers are listed by kind", func() {
			all := r.All()
			So(len(all), ShouldEqual, 2)
			So(all[0].Kind, ShouldEqual, media.HTML5)
			So(all[1].Kind, ShouldEqual, media.Vimeo)
		})

		Convey("Only embed providers contribute scripts", func() {
			scripts := r.Scripts()
			So(len(scripts), ShouldEqual, 1)
			So(scripts[0].Kind, ShouldEqual, media.Vimeo)
		})

		Convey("A kind can not be registered twice", func() {
			So(r.Register(newProvider(media.HTML5, mo.None[sdk.Script]())), ShouldNotBeNil)
		})

		Convey("Providers without a constructor are rejected", func() {
			So(r.Register(&Provider{Kind: media.YouTube}), ShouldNotBeNil)
		})

		Convey("Supports checks the media type", func() {
			p, _ := r.Get(media.HTML5)
			So(p.Supports(media.Video), ShouldBeTrue)
			So(p.Supports(media.Audio), ShouldBeFalse)
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given a lifecycle", t, func() {
		var l Lifecycle

		Convey("Methods are rejected before readiness", func() {
			So(l.Begin(media.HTML5), ShouldBeNil)
			So(errors.Is(l.Check(media.HTML5, "play"), media.ErrInvalidState), ShouldBeTrue)

			l.MarkReady()
			So(l.Check(media.HTML5, "play"), ShouldBeNil)
		})

		Convey("Begin twice is an invalid state", func() {
			So(l.Begin(media.HTML5), ShouldBeNil)
			So(errors.Is(l.Begin(media.HTML5), media.ErrInvalidState), ShouldBeTrue)
		})

		Convey("End removes listeners in reverse order, once", func() {
			var order []int
			l.Track(func() { order = append(order, 1) })
			l.Track(func() { order = append(order, 2) })
			l.Track(nil)
			So(l.Listeners(), ShouldEqual, 2)

			So(l.End(), ShouldBeTrue)
			So(l.End(), ShouldBeFalse)
			So(order, ShouldResemble, []int{2, 1})
			So(l.Listeners(), ShouldEqual, 0)
			So(errors.Is(l.Begin(media.HTML5), media.ErrInvalidState), ShouldBeTrue)
		})
	})
}

func TestDetect(t *testing.T) {
	Convey("Detect", t, func() {
		Convey("YouTube urls", func() {
			for _, u := range []string{
				"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				"https://youtu.be/dQw4w9WgXcQ",
				"https://www.youtube.com/embed/dQw4w9WgXcQ",
			} {
				kind, el := Detect(u)
				So(kind, ShouldEqual, media.YouTube)
				So(el.DataID(media.YouTube), ShouldEqual, "dQw4w9WgXcQ")
			}
		})

		Convey("Vimeo urls", func() {
			kind, el := Detect("https://vimeo.com/76979871")
			So(kind, ShouldEqual, media.Vimeo)
			So(el.DataID(media.Vimeo), ShouldEqual, "76979871")
			So(el.ID, ShouldNotBeEmpty)
		})

		Convey("Dailymotion urls", func() {
			kind, el := Detect("https://www.dailymotion.com/video/x7tgad0")
			So(kind, ShouldEqual, media.Dailymotion)
			So(el.DataID(media.Dailymotion), ShouldEqual, "x7tgad0")
		})

		Convey("The short kind:id form names an embed", func() {
			kind, el := Detect("youtube:dQw4w9WgXcQ")
			So(kind, ShouldEqual, media.YouTube)
			So(el.DataID(media.YouTube), ShouldEqual, "dQw4w9WgXcQ")

			kind, _ = Detect("C:/videos/movie.mkv")
			So(kind, ShouldEqual, media.HTML5)
		})

		Convey("Everything else plays natively", func() {
			kind, el := Detect("/tmp/movie.mkv")
			So(kind, ShouldEqual, media.HTML5)
			So(el.Type(), ShouldEqual, media.Video)
			So(el.Src(), ShouldEqual, "/tmp/movie.mkv")
		})

		Convey("Audio files become audio elements", func() {
			_, el := Detect("https://example.com/podcast.mp3?token=1")
			So(el.Type(), ShouldEqual, media.Audio)
		})
	})
}

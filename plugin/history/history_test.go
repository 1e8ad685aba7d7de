package history

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/filesystem"
	store "github.com/vplay-cli/vplay/history"
	"github.com/vplay-cli/vplay/plugin/plugintest"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPlugin(t *testing.T) {
	Convey("Given a history plugin on a player", t, func() {
		ctx := context.Background()
		So(store.Clear(), ShouldBeNil)
		core := plugintest.New(nil)

		build := func(opts map[string]any) *Plugin {
			p, err := New(core, opts)
			So(err, ShouldBeNil)
			return p.(*Plugin)
		}

		Convey("Timeupdates are saved at most once per interval", func() {
			p := build(map[string]any{"key": "movie", "interval": "1h", "save": true})
			So(p.Init(ctx), ShouldBeNil)

			core.Emit(event.TimeUpdate, event.TimePayload{CurrentTime: 12, Duration: 60})
			core.Emit(event.TimeUpdate, event.TimePayload{CurrentTime: 13, Duration: 60})

			e, ok, err := store.Lookup("movie")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(e.Position, ShouldEqual, 12)

			Convey("And ended forgets the position", func() {
				core.Emit(event.Ended, nil)
				_, ok, _ := store.Lookup("movie")
				So(ok, ShouldBeFalse)
			})

			Convey("And destroy unsubscribes", func() {
				So(p.Destroy(ctx), ShouldBeNil)
				So(core.Listeners(event.TimeUpdate), ShouldEqual, 0)
				So(core.Listeners(event.Ended), ShouldEqual, 0)
			})
		})

		Convey("The element source is the default key", func() {
			p := build(map[string]any{"save": true, "interval": time.Nanosecond})
			So(p.Init(ctx), ShouldBeNil)
			core.Emit(event.TimeUpdate, event.TimePayload{CurrentTime: 5})

			_, ok, _ := store.Lookup("https://example.com/video.mp4")
			So(ok, ShouldBeTrue)
		})

		Convey("Ready resumes from a saved position above the threshold", func() {
			So(store.Save("movie", core.Kind(), 42, 60), ShouldBeNil)
			p := build(map[string]any{"key": "movie", "resume": true, "threshold": 10})
			So(p.OnReady(ctx), ShouldBeNil)
			So(core.Calls(), ShouldResemble, []string{"seek(42)"})
		})

		Convey("Positions under the threshold are not resumed", func() {
			So(store.Save("movie", core.Kind(), 4, 60), ShouldBeNil)
			p := build(map[string]any{"key": "movie", "resume": true, "threshold": 10})
			So(p.OnReady(ctx), ShouldBeNil)
			So(core.Calls(), ShouldBeEmpty)
		})

		Convey("Saving can be turned off", func() {
			p := build(map[string]any{"key": "movie", "save": false})
			So(p.Init(ctx), ShouldBeNil)
			So(core.Listeners(event.TimeUpdate), ShouldEqual, 0)
		})

		Convey("Unknown options are rejected", func() {
			_, err := New(core, map[string]any{"bogus": 1})
			So(err, ShouldNotBeNil)
		})
	})
}

package sdk

import (
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/media"
)

type fakeInjector struct {
	mu      sync.Mutex
	scripts []Script
	signals []Signal
}

func (f *fakeInjector) Inject(s Script, sig Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, s)
	f.signals = append(f.signals, sig)
}

func (f *fakeInjector) last() Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signals[len(f.signals)-1]
}

func (f *fakeInjector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signals)
}

var (
	vimeoScript   = Script{Kind: media.Vimeo, URL: "https://player.vimeo.com/api/player.js"}
	youtubeScript = Script{Kind: media.YouTube, URL: "https://www.youtube.com/iframe_api", Callback: YouTubeCallback}
)

func TestLoader(t *testing.T) {
	Convey("Given a loader with an embed script", t, func() {
		inj := &fakeInjector{}
		loader := NewLoader(inj, vimeoScript, youtubeScript)

		So(loader.State(media.Vimeo), ShouldEqual, NotRequested)
		So(loader.Requires(media.Vimeo), ShouldBeTrue)
		So(loader.Requires(media.HTML5), ShouldBeFalse)

		Convey("When many players ensure the script concurrently", func() {
			const n = 16
			var (
				mu       sync.Mutex
				notified []error
				wg       sync.WaitGroup
			)
			ensureErrs := make([]error, n)
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func(i int) {
					defer wg.Done()
					ensureErrs[i] = loader.Ensure(media.Vimeo, func(err error) {
						mu.Lock()
						notified = append(notified, err)
						mu.Unlock()
					})
				}(i)
			}
			wg.Wait()
			for _, err := range ensureErrs {
				So(err, ShouldBeNil)
			}

			Convey("Then the script is injected exactly once", func() {
				So(inj.count(), ShouldEqual, 1)
				So(loader.Injections(media.Vimeo), ShouldEqual, 1)
				So(loader.State(media.Vimeo), ShouldEqual, Loading)
				So(notified, ShouldBeEmpty)
			})

			Convey("Then every waiter is notified once when it loads", func() {
				inj.last().Loaded()
				So(loader.State(media.Vimeo), ShouldEqual, Loaded)
				So(len(notified), ShouldEqual, n)
				for _, err := range notified {
					So(err, ShouldBeNil)
				}
			})
		})

		Convey("Waiters are notified in registration order", func() {
			var order []int
			for i := 0; i < 3; i++ {
				i := i
				_ = loader.Ensure(media.Vimeo, func(error) { order = append(order, i) })
			}
			inj.last().Loaded()
			So(order, ShouldResemble, []int{0, 1, 2})
		})

		Convey("A waiter arriving after the script loaded runs immediately", func() {
			_ = loader.Ensure(media.Vimeo, func(error) {})
			inj.last().Loaded()

			called := false
			So(loader.Ensure(media.Vimeo, func(err error) { called = err == nil }), ShouldBeNil)
			So(called, ShouldBeTrue)
			So(inj.count(), ShouldEqual, 1)
		})

		Convey("When the script fails", func() {
			var got error
			_ = loader.Ensure(media.Vimeo, func(err error) { got = err })
			first := inj.last()
			first.Failed(errors.New("network down"))

			Convey("Then waiters get an sdk load error", func() {
				So(loader.State(media.Vimeo), ShouldEqual, Failed)
				So(errors.Is(got, media.ErrSDKLoad), ShouldBeTrue)
			})

			Convey("Then a later ensure starts a new attempt", func() {
				var retried error = errors.New("pending")
				_ = loader.Ensure(media.Vimeo, func(err error) { retried = err })
				So(loader.State(media.Vimeo), ShouldEqual, Loading)
				So(loader.Injections(media.Vimeo), ShouldEqual, 2)

				Convey("And signals from the old attempt are ignored", func() {
					first.Loaded()
					So(loader.State(media.Vimeo), ShouldEqual, Loading)

					inj.last().Loaded()
					So(retried, ShouldBeNil)
					So(loader.State(media.Vimeo), ShouldEqual, Loaded)
				})
			})
		})

		Convey("Failed with a nil error still fails", func() {
			var got error
			_ = loader.Ensure(media.Vimeo, func(err error) { got = err })
			inj.last().Failed(nil)
			So(got, ShouldNotBeNil)
		})

		Convey("Scripts with a callback wait for it", func() {
			var got error = errors.New("pending")
			_ = loader.Ensure(media.YouTube, func(err error) { got = err })
			inj.last().Loaded()
			So(loader.State(media.YouTube), ShouldEqual, Loading)

			So(loader.Callback("unrelated"), ShouldBeFalse)
			So(loader.Callback(YouTubeCallback), ShouldBeTrue)
			So(loader.State(media.YouTube), ShouldEqual, Loaded)
			So(got, ShouldBeNil)

			Convey("And a repeated callback is ignored", func() {
				So(loader.Callback(YouTubeCallback), ShouldBeFalse)
			})
		})

		Convey("Unknown kinds are a config error", func() {
			err := loader.Ensure(media.Dailymotion, func(error) {})
			So(errors.Is(err, media.ErrConfig), ShouldBeTrue)
		})

		Convey("Register only replaces scripts that were never requested", func() {
			loader.Register(Script{Kind: media.Vimeo, URL: "https://example.com/a.js"})
			s, _ := loader.Script(media.Vimeo)
			So(s.URL, ShouldEqual, "https://example.com/a.js")

			_ = loader.Ensure(media.Vimeo, func(error) {})
			loader.Register(Script{Kind: media.Vimeo, URL: "https://example.com/b.js"})
			s, _ = loader.Script(media.Vimeo)
			So(s.URL, ShouldEqual, "https://example.com/a.js")
		})
	})
}

func TestStateString(t *testing.T) {
	Convey("States have readable names", t, func() {
		So(Loaded.String(), ShouldEqual, "loaded")
		So(State(42).String(), ShouldEqual, "State(42)")
	})
}

package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
)

// fakeMPV answers JSON-IPC requests on one end of a pipe the way mpv does: replies carry
// the request id and observed properties report their value on observe and on change.
type fakeMPV struct {
	conn net.Conn

	mu       sync.Mutex
	props    map[string]any
	observed map[string]bool
	commands [][]any
	wmu      sync.Mutex
}

func newFakeMPV() (*fakeMPV, *Conn) {
	server, client := net.Pipe()
	f := &fakeMPV{
		conn: server,
		props: map[string]any{
			"pause":            true,
			"seeking":          false,
			"time-pos":         0.0,
			"duration":         120.0,
			"eof-reached":      false,
			"volume":           100.0,
			"mute":             false,
			"paused-for-cache": false,
		},
		observed: make(map[string]bool),
	}
	go f.serve()
	return f, NewConn(client)
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		f.mu.Unlock()

		name, _ := req.Command[0].(string)
		switch name {
		case "get_property":
			prop := req.Command[1].(string)
			f.mu.Lock()
			v, ok := f.props[prop]
			f.mu.Unlock()
			if !ok {
				f.write(Message{RequestID: req.RequestID, Error: "property unavailable"})
				continue
			}
			f.write(Message{RequestID: req.RequestID, Error: "success", Data: v})
		case "set_property":
			f.write(Message{RequestID: req.RequestID, Error: "success"})
			f.set(req.Command[1].(string), req.Command[2])
		case "observe_property":
			prop := req.Command[2].(string)
			f.mu.Lock()
			f.observed[prop] = true
			v := f.props[prop]
			f.mu.Unlock()
			f.write(Message{RequestID: req.RequestID, Error: "success"})
			f.write(Message{Event: "property-change", Name: prop, Data: v})
		case "seek":
			f.write(Message{RequestID: req.RequestID, Error: "success"})
			f.set("seeking", true)
			f.set("time-pos", req.Command[1])
			f.set("seeking", false)
		case "quit":
			f.write(Message{RequestID: req.RequestID, Error: "success"})
			_ = f.conn.Close()
			return
		default:
			f.write(Message{RequestID: req.RequestID, Error: "success"})
		}
	}
}

func (f *fakeMPV) set(prop string, v any) {
	f.mu.Lock()
	f.props[prop] = v
	observed := f.observed[prop]
	f.mu.Unlock()
	if observed {
		f.write(Message{Event: "property-change", Name: prop, Data: v})
	}
}

func (f *fakeMPV) write(m Message) {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	b, _ := json.Marshal(m)
	_, _ = f.conn.Write(append(b, '\n'))
}

func (f *fakeMPV) Commands() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.commands...)
}

// recorder collects native events in arrival order.
type recorder struct {
	mu     sync.Mutex
	events []string
	data   []any
}

func (r *recorder) listen(m *Media, names ...string) {
	for _, name := range names {
		name := name
		m.AddEventListener(name, func(data any) {
			r.mu.Lock()
			r.events = append(r.events, name)
			r.data = append(r.data, data)
			r.mu.Unlock()
		})
	}
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Last() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.data) == 0 {
		return nil
	}
	return r.data[len(r.data)-1]
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestConn(t *testing.T) {
	Convey("Given a connection to mpv", t, func() {
		ctx := context.Background()
		fake, conn := newFakeMPV()
		defer conn.Close()

		Convey("Replies are matched to their requests", func() {
			d, err := conn.Float(ctx, "duration")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, 120)

			paused, err := conn.Get(ctx, "pause")
			So(err, ShouldBeNil)
			So(paused, ShouldEqual, true)
		})

		Convey("Concurrent commands each get their own reply", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 10)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := conn.Float(ctx, "duration")
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}
			So(len(fake.Commands()), ShouldEqual, 10)
		})

		Convey("mpv errors are returned", func() {
			_, err := conn.Get(ctx, "chapter-list")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})

		Convey("Events reach the handler in order", func() {
			var (
				mu    sync.Mutex
				names []string
			)
			conn.OnEvent(func(m Message) {
				mu.Lock()
				names = append(names, m.Name)
				mu.Unlock()
			})
			So(conn.Observe(ctx, 1, "pause"), ShouldBeNil)
			So(conn.Observe(ctx, 2, "volume"), ShouldBeNil)

			So(eventually(func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(names) == 2
			}), ShouldBeTrue)
			So(names, ShouldResemble, []string{"pause", "volume"})
		})

		Convey("Commands fail once the connection is gone", func() {
			_, err := conn.Command(ctx, "quit")
			So(err, ShouldBeNil)
			<-conn.Done()

			_, err = conn.Get(ctx, "pause")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMedia(t *testing.T) {
	Convey("Given an element attached to mpv", t, func() {
		ctx := context.Background()
		var fake *fakeMPV
		var targets []string
		host := NewHostWith(func(_ context.Context, target string, l Launch) (*Session, error) {
			f, conn := newFakeMPV()
			fake = f
			targets = append(targets, target)
			exited := make(chan struct{})
			return NewSession(conn, exited, func() error {
				_, _ = conn.Command(context.Background(), "quit")
				close(exited)
				return conn.Close()
			}), nil
		})

		el := media.NewElement("video", "player", map[string]string{"src": "https://example.com/a.mp4"})
		hm, err := host.Attach(ctx, el, media.Options{})
		So(err, ShouldBeNil)
		m := hm.(*Media)
		Reset(func() { _ = m.Close() })

		rec := &recorder{}
		rec.listen(m, "play", "pause", "playing", "seeking", "seeked", "timeupdate", "volumechange", "ended")

		So(targets, ShouldResemble, []string{"https://example.com/a.mp4"})

		Convey("Initial property values do not produce events", func() {
			time.Sleep(20 * time.Millisecond)
			So(rec.Events(), ShouldBeEmpty)
		})

		Convey("Play unpauses and reports play then playing", func() {
			So(m.Play(ctx), ShouldBeNil)
			So(eventually(func() bool { return len(rec.Events()) == 2 }), ShouldBeTrue)
			So(rec.Events(), ShouldResemble, []string{"play", "playing"})
		})

		Convey("Seeking reports seeking, seeked and the new time", func() {
			So(m.SetCurrentTime(ctx, 42), ShouldBeNil)
			So(eventually(func() bool { return len(rec.Events()) == 3 }), ShouldBeTrue)
			So(rec.Events(), ShouldResemble, []string{"seeking", "timeupdate", "seeked"})

			pos, err := m.CurrentTime(ctx)
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 42)
		})

		Convey("Volume is scaled to mpv's range and back", func() {
			So(m.SetVolume(ctx, 0.5), ShouldBeNil)
			So(eventually(func() bool { return len(rec.Events()) == 1 }), ShouldBeTrue)
			So(rec.Last(), ShouldResemble, event.VolumePayload{Volume: 0.5})

			So(m.SetMuted(ctx, true), ShouldBeNil)
			So(eventually(func() bool { return len(rec.Events()) == 2 }), ShouldBeTrue)
			So(rec.Last(), ShouldResemble, event.VolumePayload{Volume: 0.5, Muted: true})
		})

		Convey("Removed listeners stop receiving events", func() {
			var calls int
			var mu sync.Mutex
			off := m.AddEventListener("pause", func(any) {
				mu.Lock()
				calls++
				mu.Unlock()
			})
			off()
			So(m.Play(ctx), ShouldBeNil)
			So(m.Pause(ctx), ShouldBeNil)
			So(eventually(func() bool { return len(rec.Events()) == 3 }), ShouldBeTrue)
			mu.Lock()
			So(calls, ShouldEqual, 0)
			mu.Unlock()
		})

		Convey("Close quits the session", func() {
			So(m.Close(), ShouldBeNil)
			<-m.Exited()
			So(fake.Commands()[len(fake.Commands())-1], ShouldResemble, []any{"quit"})
			So(m.Close(), ShouldBeNil)
		})
	})

	Convey("Elements without a source are rejected", t, func() {
		host := NewHostWith(func(context.Context, string, Launch) (*Session, error) {
			panic("must not start")
		})
		_, err := host.Attach(context.Background(), media.NewElement("video", "v", nil), media.Options{})
		So(err, ShouldNotBeNil)
	})
}

func TestTracker(t *testing.T) {
	Convey("Given a tracker seeded with initial values", t, func() {
		var got []string
		tr := newTracker(func(name string, _ any) { got = append(got, name) })
		for _, p := range []change{{"pause", true}, {"eof-reached", false}, {"paused-for-cache", false}, {"time-pos", 0.0}} {
			tr.property(p.name, p.value)
		}
		got = nil

		Convey("Small position changes are coalesced", func() {
			tr.property("time-pos", 0.1)
			tr.property("time-pos", 0.2)
			tr.property("time-pos", 0.3)
			So(got, ShouldResemble, []string{"timeupdate"})
		})

		Convey("End of file reports ended once", func() {
			tr.property("eof-reached", true)
			So(got, ShouldResemble, []string{"ended"})
		})

		Convey("Cache stalls report waiting then playing", func() {
			tr.property("paused-for-cache", true)
			tr.property("paused-for-cache", false)
			So(got, ShouldResemble, []string{"waiting", "playing"})
		})

		Convey("Null values are ignored", func() {
			tr.property("pause", nil)
			So(got, ShouldBeEmpty)
		})

		Convey("A file that fails to play reports an error", func() {
			tr.handle(Message{Event: "end-file", Reason: "eof"})
			So(got, ShouldBeEmpty)

			var payload any
			tr := newTracker(func(name string, data any) { got = append(got, name); payload = data })
			tr.handle(Message{Event: "end-file", Reason: "error", FileError: "loading failed"})
			So(got, ShouldResemble, []string{"error"})
			err, ok := payload.(error)
			So(ok, ShouldBeTrue)
			So(err.Error(), ShouldEqual, "mpv: loading failed")
		})
	})
}

type change struct {
	name  string
	value any
}

func TestArgs(t *testing.T) {
	Convey("Given a launch description", t, func() {
		l := Launch{
			Title:     "Big\nBuck",
			Headers:   map[string]string{"Referer": "https://a.b", "Cookie": "x=1,y=2"},
			Subtitles: []string{"https://example.com/en.vtt"},
			Start:     30,
		}

		Convey("mpv gets plain options and the target last", func() {
			args := Args("/usr/bin/mpv", "/tmp/s.sock", "https://example.com/a.mp4", l)
			So(args[0], ShouldEqual, "--no-terminal")
			So(args, ShouldContain, "--input-ipc-server=/tmp/s.sock")
			So(args, ShouldContain, "--pause=yes")
			So(args, ShouldContain, "--force-media-title=Big Buck")
			So(args, ShouldContain, "--http-header-fields=Cookie: x=1%2Cy=2,Referer: https://a.b")
			So(args, ShouldContain, "--sub-file=https://example.com/en.vtt")
			So(args, ShouldContain, "--start=30")
			So(args[len(args)-1], ShouldEqual, "https://example.com/a.mp4")
		})

		Convey("IINA gets mpv options behind a prefix", func() {
			args := Args("/usr/local/bin/iina-cli", "/tmp/s.sock", "a.mp4", l)
			So(args[0], ShouldEqual, "--keep-running")
			So(args, ShouldContain, "--mpv-input-ipc-server=/tmp/s.sock")
			So(args, ShouldNotContain, "--no-terminal")
		})
	})

	Convey("Media targets are sanitized", t, func() {
		_, err := sanitizeMediaTarget("--script=evil.lua")
		So(err, ShouldNotBeNil)
		_, err = sanitizeMediaTarget("file:///etc/passwd")
		So(err, ShouldNotBeNil)
		_, err = sanitizeMediaTarget("  ")
		So(err, ShouldNotBeNil)

		target, err := sanitizeMediaTarget("https://example.com/a.mp4")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "https://example.com/a.mp4")

		target, err = sanitizeMediaTarget("videos/../clip.mkv")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "clip.mkv")
	})
}

package inline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/plugin/plugintest"
)

func lines(buf *bytes.Buffer) []Line {
	var out []Line
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var l Line
		So(json.Unmarshal(scanner.Bytes(), &l), ShouldBeNil)
		out = append(out, l)
	}
	return out
}

func TestParseScript(t *testing.T) {
	Convey("ParseScript", t, func() {
		Convey("Should read commands separated by commas and spaces", func() {
			commands, err := ParseScript("play, seek:12.5 volume:0.5\nwait:20ms,mute,time")
			So(err, ShouldBeNil)
			So(commands, ShouldResemble, []Command{
				{Op: OpPlay},
				{Op: OpSeek, Value: 12.5},
				{Op: OpVolume, Value: 0.5},
				{Op: OpWait, Wait: 20 * time.Millisecond},
				{Op: OpMute},
				{Op: OpTime},
			})
		})

		Convey("Should reject bad arguments", func() {
			for _, bad := range []string{"seek", "seek:x", "volume:2", "wait:soon", "play:1", "rewind"} {
				_, err := ParseScript(bad)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("Should format commands back", func() {
			So(Command{Op: OpSeek, Value: 3}.String(), ShouldEqual, "seek:3")
			So(Command{Op: OpWait, Wait: time.Second}.String(), ShouldEqual, "wait:1s")
			So(Command{Op: OpPause}.String(), ShouldEqual, "pause")
		})
	})

	Convey("ParseEvents rejects names outside the vocabulary", t, func() {
		types, err := ParseEvents([]string{"Play", "timeupdate"})
		So(err, ShouldBeNil)
		So(types, ShouldResemble, []event.Type{event.Play, event.TimeUpdate})

		_, err = ParseEvents([]string{"loadedmetadata"})
		So(err, ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a player and a script", t, func() {
		ctx := context.Background()
		core := plugintest.New(nil)
		var buf bytes.Buffer

		Convey("Commands run in order and their results are written", func() {
			commands, err := ParseScript("play seek:5 time")
			So(err, ShouldBeNil)

			err = Run(ctx, core, &Options{Out: &buf, Json: true, Commands: commands})
			So(err, ShouldBeNil)
			So(core.Calls(), ShouldResemble, []string{"play", "seek(5)", "currentTime"})

			out := lines(&buf)
			So(len(out), ShouldEqual, 3)
			So(out[0].Command, ShouldEqual, "play")
			So(out[2].Command, ShouldEqual, "time")
			So(out[2].Result, ShouldNotBeNil)
			So(*out[2].Result, ShouldEqual, 5)
		})

		Convey("Events are streamed while following, until the media ends", func() {
			done := make(chan error, 1)
			go func() {
				done <- Run(ctx, core, &Options{Out: &buf, Json: true, Follow: true, Events: []event.Type{event.TimeUpdate, event.Ended}})
			}()

			time.Sleep(20 * time.Millisecond)
			core.Emit(event.Play, nil)
			core.Emit(event.TimeUpdate, event.TimePayload{CurrentTime: 1})
			core.Emit(event.Ended, nil)
			So(<-done, ShouldBeNil)

			out := lines(&buf)
			So(len(out), ShouldEqual, 2)
			So(out[0].Event, ShouldEqual, event.TimeUpdate)
			So(out[1].Event, ShouldEqual, event.Ended)
			So(core.Listeners(event.TimeUpdate), ShouldEqual, 0)
		})

		Convey("A failed command stops the script", func() {
			core.Fail(errors.New("backend gone"))
			err := Run(ctx, core, &Options{Out: &buf, Json: true, Commands: []Command{{Op: OpPlay}, {Op: OpPause}}})
			So(err, ShouldNotBeNil)
			So(core.Calls(), ShouldResemble, []string{"play"})

			out := lines(&buf)
			So(len(out), ShouldEqual, 1)
			So(out[0].Error, ShouldEqual, "backend gone")
		})

		Convey("Plain output is one readable line per record", func() {
			err := Run(ctx, core, &Options{Out: &buf, Commands: []Command{{Op: OpMute}, {Op: OpTime}}})
			So(err, ShouldBeNil)
			So(buf.String(), ShouldEqual, "mute ok\ntime = 0\n")
		})

		Convey("Cancellation interrupts a wait", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := Run(cctx, core, &Options{Out: &buf, Commands: []Command{{Op: OpWait, Wait: time.Hour}}})
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

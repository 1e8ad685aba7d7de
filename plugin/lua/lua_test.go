package lua

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin/plugintest"
	"github.com/vplay-cli/vplay/where"
)

const script = `
local player = require("player")

providers = {"html5"}
types = "video"
description = "Skips to a start position and pauses late"

local start = 0

function init(options)
	start = options.start or 0
end

function on_ready()
	player.seek(start)
	player.on("timeupdate", function(p)
		if p.current_time > 50 then
			player.pause()
		end
	end)
end

function destroy()
	player.log("bye")
end
`

func init() {
	filesystem.SetMemMapFs()
}

func write(name, content string) string {
	path := filepath.Join(where.Plugins(), name)
	So(filesystem.API().WriteFile(path, []byte(content), 0o644), ShouldBeNil)
	return path
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

func TestLoad(t *testing.T) {
	Convey("Given a plugin script", t, func() {
		path := write("late_pause.lua", script)

		Convey("Load reads its declarations", func() {
			d, err := Load(path)
			So(err, ShouldBeNil)
			So(d.Name, ShouldEqual, "late_pause")
			So(d.Description, ShouldEqual, "Skips to a start position and pauses late")
			So(d.Providers, ShouldResemble, []media.Kind{media.HTML5})
			So(d.Types, ShouldResemble, []media.Type{media.Video})
		})

		Convey("Unknown providers are rejected", func() {
			_, err := Load(write("vhs.lua", `providers = {"vhs"}`))
			So(err, ShouldNotBeNil)
		})

		Convey("Syntax errors are reported", func() {
			_, err := Load(write("broken.lua", `function (`))
			So(err, ShouldNotBeNil)
		})

		Convey("LoadAll skips broken scripts and other files", func() {
			write("broken.lua", `function (`)
			write("notes.txt", `hello`)
			all, err := LoadAll()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(all))
			for _, d := range all {
				names = append(names, d.Name)
			}
			So(names, ShouldContain, "late_pause")
			So(names, ShouldNotContain, "broken")
			So(names, ShouldNotContain, "notes")
		})
	})
}

func TestPlugin(t *testing.T) {
	Convey("Given a plugin built for a player", t, func() {
		ctx := context.Background()
		d, err := Load(write("late_pause.lua", script))
		So(err, ShouldBeNil)

		core := plugintest.New(nil)
		p, err := d.New(core, map[string]any{"start": 12})
		So(err, ShouldBeNil)

		So(p.Init(ctx), ShouldBeNil)
		So(p.OnReady(ctx), ShouldBeNil)

		Convey("Hooks drive the player", func() {
			So(core.Calls(), ShouldResemble, []string{"seek(12)"})
			So(core.Listeners(event.TimeUpdate), ShouldEqual, 1)
		})

		Convey("Event callbacks run in order off the emitting goroutine", func() {
			core.Emit(event.TimeUpdate, event.TimePayload{CurrentTime: 20})
			core.Emit(event.TimeUpdate, event.TimePayload{CurrentTime: 55})

			So(eventually(func() bool { return len(core.Calls()) == 2 }), ShouldBeTrue)
			So(core.Calls(), ShouldResemble, []string{"seek(12)", "pause"})
		})

		Convey("Destroy removes the script's listeners", func() {
			So(p.Destroy(ctx), ShouldBeNil)
			So(core.Listeners(event.TimeUpdate), ShouldEqual, 0)
		})
	})

	Convey("Scripts without hooks are valid", t, func() {
		d, err := Load(write("empty.lua", `providers = ""`))
		So(err, ShouldBeNil)
		So(d.Providers, ShouldBeEmpty)

		p, err := d.New(plugintest.New(nil), nil)
		So(err, ShouldBeNil)
		So(p.Init(context.Background()), ShouldBeNil)
		So(p.OnReady(context.Background()), ShouldBeNil)
		So(p.Destroy(context.Background()), ShouldBeNil)
	})

	Convey("Errors raised by a hook are returned", t, func() {
		d, err := Load(write("raise.lua", `function on_ready() error("boom") end`))
		So(err, ShouldBeNil)

		p, err := d.New(plugintest.New(nil), nil)
		So(err, ShouldBeNil)
		So(p.Init(context.Background()), ShouldBeNil)
		err = p.OnReady(context.Background())
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "boom")
		So(p.Destroy(context.Background()), ShouldBeNil)
	})
}

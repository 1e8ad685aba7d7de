package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRoots(t *testing.T) {
	Convey("Roots exist once resolved", t, func() {
		for _, dir := range []string{Config(), Cache(), Logs(), Plugins(), Scripts()} {
			So(dir, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(dir)), ShouldBeTrue)
		}
	})

	Convey("Environment variables override the roots", t, func() {
		dir := filepath.Join(os.TempDir(), "vplay-where-test")
		So(os.Setenv(EnvCachePath, dir), ShouldBeNil)
		defer os.Unsetenv(EnvCachePath)

		So(Cache(), ShouldEqual, dir)
		So(Scripts(), ShouldEqual, filepath.Join(dir, "sdk"))
		So(Queries(), ShouldEqual, filepath.Join(dir, "queries.json"))
	})
}

func TestLocations(t *testing.T) {
	Convey("Derived paths live under their root", t, func() {
		So(Plugins(), ShouldStartWith, Config())
		So(History(), ShouldEqual, filepath.Join(Config(), "history.json"))
	})

	Convey("Location names and shorthands are unique", t, func() {
		names := lo.Map(Locations, func(l Location, _ int) string { return l.Name })
		So(lo.Uniq(names), ShouldHaveLength, len(Locations))

		shorts := lo.Compact(lo.Map(Locations, func(l Location, _ int) string { return l.Short }))
		So(lo.Uniq(shorts), ShouldHaveLength, len(shorts))
	})

	Convey("Configuration is never disposable", t, func() {
		for _, l := range Locations {
			if l.Name == "config" || l.Name == "plugins" {
				So(l.Disposable, ShouldBeFalse)
			}
		}
	})
}

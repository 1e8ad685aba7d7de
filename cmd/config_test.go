package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/key"
)

func TestParseConfigValue(t *testing.T) {
	Convey("Values take the type of the default", t, func() {
		v, err := parseConfigValue(key.PlayerSeekStep, []string{"10"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 10)

		v, err = parseConfigValue(key.PlayerMuted, []string{"true"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		_, err = parseConfigValue(key.PlayerSeekStep, []string{"ten"})
		So(err, ShouldNotBeNil)

		_, err = parseConfigValue(key.PlayerSeekStep, nil)
		So(err, ShouldNotBeNil)
	})

	Convey("Lists accept separate and comma separated items", t, func() {
		v, err := parseConfigValue(key.PlayerPlugins, []string{"history, cast", "skip"})
		So(err, ShouldBeNil)
		So(v, ShouldResemble, []string{"history", "cast", "skip"})
	})
}

func TestErrUnknownKey(t *testing.T) {
	Convey("Unknown keys suggest the closest one", t, func() {
		err := errUnknownKey("player.plugin")
		So(err.Error(), ShouldContainSubstring, key.PlayerPlugins)
	})
}

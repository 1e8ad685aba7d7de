package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/media"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCanonical(t *testing.T) {
	Convey("Given no forced provider", t, func() {
		viper.Set(key.PlayerProvider, "")

		Convey("Embed URLs become kind and id", func() {
			s, err := canonical("https://youtu.be/dQw4w9WgXcQ", false)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "youtube:dQw4w9WgXcQ")
		})

		Convey("Files and streams stay as they are", func() {
			s, err := canonical(" /videos/a.mp4 ", false)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "/videos/a.mp4")
		})

		Convey("Empty sources are rejected", func() {
			_, err := canonical("  ", false)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a forced provider", t, func() {
		defer viper.Set(key.PlayerProvider, "")

		Convey("A bare id is bound to it", func() {
			viper.Set(key.PlayerProvider, "vimeo")
			s, err := canonical("76979871", false)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "vimeo:76979871")
		})

		Convey("A source of another provider is an error", func() {
			viper.Set(key.PlayerProvider, "vimeo")
			_, err := canonical("https://youtu.be/dQw4w9WgXcQ", false)
			So(err, ShouldNotBeNil)
		})

		Convey("A misspelled provider gets a suggestion", func() {
			viper.Set(key.PlayerProvider, "youtub")
			_, err := canonical("abc", false)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "did you mean youtube")
		})
	})
}

func TestAmbiguous(t *testing.T) {
	Convey("Only bare names that are not files are ambiguous", t, func() {
		So(filesystem.API().WriteFile("clip", []byte{0}, 0o644), ShouldBeNil)

		So(ambiguous(media.HTML5, "dQw4w9WgXcQ"), ShouldBeTrue)
		So(ambiguous(media.HTML5, "clip"), ShouldBeFalse)
		So(ambiguous(media.HTML5, "movie.mp4"), ShouldBeFalse)
		So(ambiguous(media.HTML5, "https://example.com/live"), ShouldBeFalse)
		So(ambiguous(media.YouTube, "abc"), ShouldBeFalse)
	})
}

func TestPlayerOptions(t *testing.T) {
	Convey("Given a command with player flags", t, func() {
		cmd := &cobra.Command{Use: "test"}
		playerFlags(cmd)

		viper.Set(key.PlayerPlugins, []string{"history"})
		defer viper.Set(key.PlayerPlugins, []string{})

		Convey("Flags and defaults become validated options", func() {
			So(cmd.Flags().Set("param", "start=30,dnt=true,color=ff0000"), ShouldBeNil)
			So(cmd.Flags().Set("poster", "https://example.com/poster.jpg"), ShouldBeNil)

			opts, err := playerOptions(cmd)
			So(err, ShouldBeNil)
			So(opts.Poster, ShouldEqual, "https://example.com/poster.jpg")
			So(opts.Plugins, ShouldResemble, []media.PluginSpec{{Name: "history"}})
			So(opts.Param("start", nil), ShouldEqual, 30.0)
			So(opts.Param("dnt", nil), ShouldEqual, true)
			So(opts.Param("color", nil), ShouldEqual, "ff0000")
		})

		Convey("An invalid poster is a config error", func() {
			So(cmd.Flags().Set("poster", "not a url"), ShouldBeNil)

			_, err := playerOptions(cmd)
			So(err, ShouldNotBeNil)
		})
	})
}

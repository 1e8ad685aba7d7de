package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/media"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a media element", t, func() {
		So(Clear(), ShouldBeNil)
		el := media.NewElement("video", "player", map[string]string{"src": "/videos/movie.mkv"})
		key := Key(media.HTML5, el)
		So(key, ShouldEqual, "/videos/movie.mkv")

		Convey("When saving its position", func() {
			err := Save(key, media.HTML5, 30, 120)
			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the position should be saved", func() {
					e, ok, err := Lookup(key)
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					So(e.Position, ShouldEqual, 30)
					So(e.Percentage(), ShouldEqual, 25)
					So(e.String(), ShouldContainSubstring, "00:00:30")
				})

				Convey("And removing it forgets the position", func() {
					So(Remove(key), ShouldBeNil)
					_, ok, _ := Lookup(key)
					So(ok, ShouldBeFalse)
				})
			})
		})

		Convey("Embeds are keyed by provider id", func() {
			yt := media.NewElement("div", "p", map[string]string{"data-youtube-id": "dQw4w9WgXcQ"})
			So(Key(media.YouTube, yt), ShouldEqual, "youtube:dQw4w9WgXcQ")
		})
	})
}

package media

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseElement(t *testing.T) {
	Convey("Given a video fragment with text tracks", t, func() {
		el, err := ParseElement(`
<video id="player" src="/movie.mp4" loop>
	<track kind="subtitles" src="/en.vtt" srclang="en" label="English" default>
	<track kind="subtitles" src="/fr.vtt" srclang="fr" label="Français">
</video>`)

		Convey("Then the element should be described", func() {
			So(err, ShouldBeNil)
			So(el.Tag, ShouldEqual, "video")
			So(el.ID, ShouldEqual, "player")
			So(el.Src(), ShouldEqual, "/movie.mp4")
			So(el.HasAttr("loop"), ShouldBeTrue)
			So(el.Type(), ShouldEqual, Video)
		})

		Convey("Then the tracks should be indexed in document order", func() {
			tracks := el.TextTracks()
			So(len(tracks), ShouldEqual, 2)
			So(tracks[0], ShouldResemble, Track{Index: 0, URL: "/en.vtt", Label: "English", Language: "en", IsDefault: true})
			So(tracks[1].Language, ShouldEqual, "fr")
			So(tracks[1].IsDefault, ShouldBeFalse)
		})
	})

	Convey("Given an embed placeholder", t, func() {
		el, err := ParseElement(`<div id="yt" data-youtube-id="bTqVqk7FSmY"></div>`)
		So(err, ShouldBeNil)
		So(el.DataID(YouTube), ShouldEqual, "bTqVqk7FSmY")
		So(el.DataID(Vimeo), ShouldBeEmpty)
	})

	Convey("Given an audio element with a source child", t, func() {
		el, err := ParseElement(`<audio id="a"><source src="/song.mp3" type="audio/mpeg"></audio>`)
		So(err, ShouldBeNil)
		So(el.Type(), ShouldEqual, Audio)
		So(el.Src(), ShouldEqual, "/song.mp3")
	})

	Convey("Given markup without a media node", t, func() {
		_, err := ParseElement(`<p>nothing here</p>`)
		So(errors.Is(err, ErrConfig), ShouldBeTrue)
	})
}

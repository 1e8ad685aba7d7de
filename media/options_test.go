package media

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOptions(t *testing.T) {
	Convey("Given raw player options", t, func() {
		Convey("When every key is recognized", func() {
			opts, err := DecodeOptions(map[string]any{
				"autoplay":       true,
				"muted":          true,
				"poster":         "https://example.com/poster.jpg",
				"providerParams": map[string]any{"color": "ff0000"},
				"plugins":        []any{"history", map[string]any{"name": "skip", "options": map[string]any{"intro": []any{0, 90}}}},
			})

			Convey("Then they should decode without error", func() {
				So(err, ShouldBeNil)
				So(opts.Autoplay, ShouldBeTrue)
				So(opts.Muted, ShouldBeTrue)
				So(opts.Param("color", ""), ShouldEqual, "ff0000")
				So(len(opts.Plugins), ShouldEqual, 2)
				So(opts.Plugins[0].Name, ShouldEqual, "history")
				So(opts.Plugins[1].Name, ShouldEqual, "skip")
			})
		})

		Convey("When a key is not recognized", func() {
			_, err := DecodeOptions(map[string]any{"autoplay": true, "controls": false})

			Convey("Then a config error should be returned", func() {
				So(errors.Is(err, ErrConfig), ShouldBeTrue)
			})
		})

		Convey("When the poster is not a URL", func() {
			_, err := DecodeOptions(map[string]any{"poster": "not a url"})

			Convey("Then a config error should be returned", func() {
				So(errors.Is(err, ErrConfig), ShouldBeTrue)
			})
		})

		Convey("When a plugin has no name", func() {
			err := Options{Plugins: []PluginSpec{{Name: ""}}}.Validate()

			Convey("Then validation should fail", func() {
				So(errors.Is(err, ErrConfig), ShouldBeTrue)
			})
		})
	})

	Convey("Clone should not share provider params", t, func() {
		orig := Options{ProviderParams: map[string]any{"a": 1}}
		clone := orig.Clone()
		orig.ProviderParams["a"] = 2
		So(clone.ProviderParams["a"], ShouldEqual, 1)
	})
}

func TestParseKind(t *testing.T) {
	Convey("ParseKind", t, func() {
		k, err := ParseKind(" YouTube ")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, YouTube)

		_, err = ParseKind("flash")
		So(errors.Is(err, ErrConfig), ShouldBeTrue)
	})
}

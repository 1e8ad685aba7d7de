package filesystem

import (
	"errors"
	"io"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteAtomic(t *testing.T) {
	Convey("Given an in-memory backend", t, func() {
		SetMemMapFs()
		So(API().Name(), ShouldEqual, "MemMapFS")

		Convey("A successful write replaces the file", func() {
			So(API().WriteFile("/scripts/a", []byte("old"), 0o644), ShouldBeNil)

			err := WriteAtomic("/scripts/a", func(w io.Writer) error {
				_, err := io.WriteString(w, "new")
				return err
			})
			So(err, ShouldBeNil)

			data, err := API().ReadFile("/scripts/a")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "new")

			exists, _ := API().Exists("/scripts/a.tmp")
			So(exists, ShouldBeFalse)
		})

		Convey("A failed write leaves the old file alone", func() {
			So(API().WriteFile("/scripts/b", []byte("old"), 0o644), ShouldBeNil)

			boom := errors.New("boom")
			err := WriteAtomic("/scripts/b", func(w io.Writer) error {
				_, _ = io.WriteString(w, "partial")
				return boom
			})
			So(err, ShouldEqual, boom)

			data, _ := API().ReadFile("/scripts/b")
			So(string(data), ShouldEqual, "old")

			exists, _ := API().Exists("/scripts/b.tmp")
			So(exists, ShouldBeFalse)
		})
	})
}

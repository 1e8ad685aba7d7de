package open

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/constant"
)

func TestCommand(t *testing.T) {
	Convey("Command picks the platform opener", t, func() {
		cmd, err := Command(constant.Linux, "https://vimeo.com/1")
		So(err, ShouldBeNil)
		So(cmd.Args, ShouldResemble, []string{"xdg-open", "https://vimeo.com/1"})

		cmd, err = Command(constant.Darwin, "/tmp/a.mp4")
		So(err, ShouldBeNil)
		So(cmd.Args[0], ShouldEqual, "open")

		_, err = Command("plan9", "x")
		So(err, ShouldNotBeNil)
	})
}

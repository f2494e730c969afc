package open

import (
	"runtime"
	"testing"

	"github.com/mwembed/mwembed/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("Given a media URL", t, func() {
		const url = "https://media.example/a.webm?x=1&y=2"

		Convey("The default handler of the platform is used", func() {
			cmd, ok := command(url, "")
			if runtime.GOOS == constant.Linux {
				So(ok, ShouldBeTrue)
				So(cmd.Args, ShouldResemble, []string{"xdg-open", url})
			}
			if ok {
				So(cmd.Args[len(cmd.Args)-1], ShouldEqual, url)
			}
		})

		Convey("A named application receives the input", func() {
			cmd, ok := command(url, "vlc")
			if runtime.GOOS == constant.Linux {
				So(ok, ShouldBeTrue)
				So(cmd.Args, ShouldResemble, []string{"vlc", url})
			}
			if runtime.GOOS == constant.Windows {
				So(cmd.Args[len(cmd.Args)-1], ShouldEqual, "https://media.example/a.webm?x=1^&y=2")
			}
		})
	})
}

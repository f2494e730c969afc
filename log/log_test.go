package log

import (
	"testing"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("Player entries are discarded", func() {
			entry := Player("vid0")
			So(entry.Data["player"], ShouldEqual, "vid0")
			So(func() { entry.Info("ignored") }, ShouldNotPanic)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)

		Convey("Player entries carry the instance id", func() {
			So(Player("vid1").Data["player"], ShouldEqual, "vid1")
		})
	})
}

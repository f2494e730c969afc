package config

import (
	"testing"
	"time"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should expose the monitor cadence as a duration", func() {
			_ = Setup()
			So(Millis(key.MonitorRate), ShouldEqual, 250*time.Millisecond)
			So(Millis(key.WaitForMetaTimeout), ShouldEqual, 5*time.Second)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("embedplayer.monitor_rate")
			So(result, ShouldEqual, "embedplayer_monitor_rate")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.AttrVolume]

		Convey("Env should be prefixed with the application name", func() {
			So(field.Env(), ShouldEqual, "MWEMBED_EMBEDPLAYER_ATTRIBUTES_VOLUME")
		})

		Convey("Its type name should follow the default value", func() {
			So(field.typeName(), ShouldEqual, "float64")
			monitor := Default[key.MonitorRate]
			So(monitor.typeName(), ShouldEqual, "int")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Validate", t, func() {
		Convey("Every default passes", func() {
			for k, f := range Default {
				So(Validate(k, f.Value), ShouldBeNil)
			}
		})

		Convey("Enumerated keys only take their options", func() {
			So(Validate(key.URLTimeEncoding, "plugin"), ShouldBeNil)
			So(Validate(key.URLTimeEncoding, "sometimes"), ShouldNotBeNil)
			So(Validate(key.LogsLevel, "verbose"), ShouldNotBeNil)

			opts, ok := Options(key.URLTimeEncoding)
			So(ok, ShouldBeTrue)
			So(opts, ShouldContain, "always")
		})

		Convey("Sizes, aspects and bounds are checked", func() {
			So(Validate(key.DefaultSize, "640x360"), ShouldBeNil)
			So(Validate(key.DefaultSize, "640"), ShouldNotBeNil)
			So(Validate(key.VideoAspect, "16:9"), ShouldBeNil)
			So(Validate(key.VideoAspect, "16:0"), ShouldNotBeNil)
			So(Validate(key.AttrVolume, 1.5), ShouldNotBeNil)
			So(Validate(key.MonitorRate, 0), ShouldNotBeNil)
			So(Validate(key.SeekResumeDelay, 0), ShouldBeNil)
		})
	})

	Convey("Sections", t, func() {
		So(Section(key.MonitorRate), ShouldEqual, "embedplayer")
		So(Section(key.AttrVolume), ShouldEqual, "embedplayer")
		So(Sections(), ShouldContain, "backend")
		So(Sections(), ShouldContain, "lookup")
	})
}

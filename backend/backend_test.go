package backend

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/sched"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestFeatures(t *testing.T) {
	Convey("Given the default features", t, func() {
		base := DefaultFeatures()

		Convey("Merge overrides declared flags only", func() {
			merged := base.Merge(Features{FeatureOverlays: false, FeatureAutoplay: true})
			So(merged.Has(FeatureOverlays), ShouldBeFalse)
			So(merged.Has(FeatureAutoplay), ShouldBeTrue)
			So(merged.Has(FeaturePlayHead), ShouldBeTrue)
			So(base.Has(FeatureOverlays), ShouldBeTrue)
		})

		Convey("Enabled is sorted", func() {
			So(Features{FeaturePause: true, FeatureAutoplay: true, FeatureStop: false}.Enabled(),
				ShouldResemble, []Feature{FeatureAutoplay, FeaturePause})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		viper.Set(key.BackendPreferred, "")
		r := Default(NativeOptions{})

		Convey("Identifiers are unique", func() {
			So(r.Register(MPVDescriptor()), ShouldNotBeNil)
			So(r.Register(Descriptor{ID: "x"}), ShouldNotBeNil)
		})

		Convey("Backends are listed in registration order", func() {
			So(r.DefaultFor("video/mp4").MustGet().ID, ShouldEqual, NativeID)
			So(len(r.For("video/mp4")), ShouldEqual, 3)
		})

		Convey("The preferred backend moves first", func() {
			viper.Set(key.BackendPreferred, MPVID)
			defer viper.Set(key.BackendPreferred, "")
			So(r.DefaultFor("video/mp4").MustGet().ID, ShouldEqual, MPVID)
			So(r.For("video/mp4")[1].ID, ShouldEqual, NativeID)
		})

		Convey("Support is decided by declared MIME types", func() {
			So(r.Supports("video/x-matroska"), ShouldBeTrue)
			So(r.Supports("application/x-shockwave-flash"), ShouldBeFalse)
			So(r.DefaultFor("video/x-matroska").MustGet().ID, ShouldEqual, MPVID)
		})

		Convey("HasNative only counts host decoders", func() {
			So(r.HasNative([]string{"video/x-matroska", "video/ogg"}), ShouldBeTrue)
			So(r.HasNative([]string{"video/x-matroska"}), ShouldBeFalse)
		})

		Convey("Suggest finds the closest identifier", func() {
			So(r.Suggest("mvp"), ShouldEqual, MPVID)
			So(r.Suggest("iiina"), ShouldEqual, IINAID)
		})

		Convey("The system backend registers after the defaults", func() {
			So(r.Register(SystemDescriptor()), ShouldBeNil)
			flac := r.For("audio/flac")
			So(flac[len(flac)-1].ID, ShouldEqual, SystemID)
			So(r.For("video/webm")[0].ID, ShouldEqual, NativeID)
			So(r.HasNative([]string{"audio/flac"}), ShouldBeFalse)
		})
	})
}

func TestNative(t *testing.T) {
	Convey("Given a native adapter on virtual time", t, func() {
		s := sched.NewManual()
		n := NewNative(s, NativeOptions{LoadDelay: 200 * time.Millisecond, Duration: 60, BufferRate: 0.5})

		var loadErr error
		loaded := false
		n.Load("clip.ogv", func(err error) { loaded, loadErr = true, err })

		Convey("Load completes after the delay", func() {
			s.Advance(100 * time.Millisecond)
			So(loaded, ShouldBeFalse)
			s.Advance(100 * time.Millisecond)
			So(loaded, ShouldBeTrue)
			So(loadErr, ShouldBeNil)
			So(n.Src(), ShouldEqual, "clip.ogv")
		})

		Convey("Time advances only while playing", func() {
			s.Advance(200 * time.Millisecond)
			So(n.Play(), ShouldBeNil)
			s.Advance(2 * time.Second)
			ct, _ := n.CurrentTime()
			So(ct, ShouldAlmostEqual, 2.0)

			So(n.Pause(), ShouldBeNil)
			s.Advance(time.Second)
			ct, _ = n.CurrentTime()
			So(ct, ShouldAlmostEqual, 2.0)

			So(n.SetCurrentTime(30), ShouldBeNil)
			ct, _ = n.CurrentTime()
			So(ct, ShouldEqual, 30)
		})

		Convey("Buffer grows from load time", func() {
			s.Advance(200 * time.Millisecond)
			s.Advance(time.Second)
			b, _ := n.Buffered()
			So(b, ShouldAlmostEqual, 0.5)
			s.Advance(5 * time.Second)
			b, _ = n.Buffered()
			So(b, ShouldEqual, 1)
		})

		Convey("Volume is clamped", func() {
			So(n.SetVolume(1.4), ShouldBeNil)
			v, _ := n.Volume()
			So(v, ShouldEqual, 1)
		})

		Convey("A failing load reports its error", func() {
			failing := NewNative(s, NativeOptions{FailLoad: errors.New("decode")})
			var got error
			failing.Load("clip.ogv", func(err error) { got = err })
			s.Flush()
			So(got, ShouldNotBeNil)
		})
	})
}

func TestIINA(t *testing.T) {
	Convey("Given an IINA adapter", t, func() {
		s := sched.NewManual()
		a := NewIINA(s)

		Convey("It declares no playback accessors", func() {
			var adapter Adapter = a
			_, isTime := adapter.(TimeGetter)
			_, isPlayer := adapter.(Player)
			So(isTime, ShouldBeFalse)
			So(isPlayer, ShouldBeFalse)
			So(a.Features().Has(FeaturePlayHead), ShouldBeFalse)
		})

		if runtime.GOOS != constant.Darwin {
			Convey("Loading fails outside macOS", func() {
				var got error
				a.Load("clip.mp4", func(err error) { got = err })
				s.Flush()
				So(got, ShouldNotBeNil)
			})
		}
	})
}

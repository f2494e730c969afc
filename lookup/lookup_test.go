package lookup

import (
	"errors"
	"testing"
	"time"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/sched"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestStaticAndChain(t *testing.T) {
	Convey("Given a static table", t, func() {
		s := sched.NewManual()
		table := Static(s, map[string]Resolution{
			"intro": {Source: media.NewSource("intro.webm", ""), Poster: mo.Some("intro.jpg")},
			"empty": {},
		})

		var got mo.Result[Resolution]
		called := 0
		done := func(r mo.Result[Resolution]) { got, called = r, called+1 }

		Convey("Known keys resolve on the next turn", func() {
			table.Lookup("intro", done)
			So(called, ShouldEqual, 0)
			s.Flush()
			So(called, ShouldEqual, 1)
			So(got.MustGet().Source.MimeType, ShouldEqual, "video/webm")
			So(got.MustGet().Poster.MustGet(), ShouldEqual, "intro.jpg")
		})

		Convey("Unknown keys fail with ErrNotFound", func() {
			table.Lookup("outro", done)
			s.Flush()
			So(errors.Is(got.Error(), ErrNotFound), ShouldBeTrue)
		})

		Convey("Entries without a source are failures", func() {
			table.Lookup("empty", done)
			s.Flush()
			So(got.IsError(), ShouldBeTrue)
		})

		Convey("A chain falls through on ErrNotFound only", func() {
			second := Static(s, map[string]Resolution{"outro": {Source: media.NewSource("outro.mp4", "")}})
			Chain{table, second}.Lookup("outro", done)
			s.Flush()
			So(got.MustGet().Source.URI, ShouldEqual, "outro.mp4")

			Chain{table, second}.Lookup("empty", done)
			s.Flush()
			So(got.IsError(), ShouldBeTrue)
			So(errors.Is(got.Error(), ErrNotFound), ShouldBeFalse)

			Chain{}.Lookup("x", done)
			So(errors.Is(got.Error(), ErrNotFound), ShouldBeTrue)
		})
	})
}

const resolver = `
function Resolve(key)
	if key == "lecture" then
		return { uri = "https://media.example/lecture.ogv", poster = "lecture.jpg", duration = 120, url_time_encoding = true }
	end
	return nil
end
`

func TestScript(t *testing.T) {
	Convey("Given a Lua lookup script", t, func() {
		filesystem.SetMemMapFs()
		lo.Must0(filesystem.API().MkdirAll("/lookups", 0755))
		lo.Must0(filesystem.API().WriteFile("/lookups/archive.lua", []byte(resolver), 0644))
		lo.Must0(filesystem.API().WriteFile("/lookups/broken.lua", []byte(`return 1`), 0644))
		lo.Must0(filesystem.API().WriteFile("/lookups/notes.txt", []byte(`x`), 0644))

		s := sched.NewManual()

		Convey("Only valid scripts are loaded", func() {
			scripts, err := LoadScripts(s, "/lookups")
			So(err, ShouldBeNil)
			So(len(scripts), ShouldEqual, 1)
			So(scripts[0].Name(), ShouldEqual, "archive")
		})

		Convey("Resolve tables become resolutions", func() {
			sc, err := LoadScript(s, "/lookups/archive.lua")
			So(err, ShouldBeNil)

			var got *mo.Result[Resolution]
			sc.Lookup("lecture", func(r mo.Result[Resolution]) { got = &r })
			So(s.FlushUntil(func() bool { return got != nil }, 5*time.Second), ShouldBeTrue)

			res := got.MustGet()
			So(res.Source.MimeType, ShouldEqual, "video/ogg")
			So(res.Source.URLTimeEncoding, ShouldBeTrue)
			So(res.Source.DurationHint.MustGet(), ShouldEqual, 120)
			So(res.Poster.MustGet(), ShouldEqual, "lecture.jpg")
		})

		Convey("Nil results are not found", func() {
			sc, _ := LoadScript(s, "/lookups/archive.lua")

			var got *mo.Result[Resolution]
			sc.Lookup("unknown", func(r mo.Result[Resolution]) { got = &r })
			So(s.FlushUntil(func() bool { return got != nil }, 5*time.Second), ShouldBeTrue)
			So(errors.Is(got.Error(), ErrNotFound), ShouldBeTrue)
		})
	})
}

type countingLookup struct {
	inner Lookup
	calls int
}

func (c *countingLookup) Lookup(key string, done func(mo.Result[Resolution])) {
	c.calls++
	c.inner.Lookup(key, done)
}

func TestCached(t *testing.T) {
	Convey("Given a cached lookup", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.LookupCache, true)

		s := sched.NewManual()
		inner := &countingLookup{inner: Static(s, map[string]Resolution{
			"intro": {Source: media.NewSource("intro.webm", ""), Duration: mo.Some(30.0)},
		})}
		cached := NewCached(inner, "/cache/lookups.json", time.Hour)

		var got mo.Result[Resolution]
		done := func(r mo.Result[Resolution]) { got = r }

		Convey("The second lookup is answered from the cache", func() {
			cached.Lookup("intro", done)
			s.Flush()
			So(got.MustGet().Source.URI, ShouldEqual, "intro.webm")

			cached.Lookup("intro", done)
			So(inner.calls, ShouldEqual, 1)
			So(got.MustGet().Duration.MustGet(), ShouldEqual, 30)
			So(got.MustGet().Source.DurationHint.MustGet(), ShouldEqual, 30)
		})

		Convey("Failures are not cached", func() {
			cached.Lookup("outro", done)
			s.Flush()
			cached.Lookup("outro", done)
			s.Flush()
			So(inner.calls, ShouldEqual, 2)
		})

		Convey("Disabling the cache bypasses it", func() {
			viper.Set(key.LookupCache, false)
			defer viper.Set(key.LookupCache, true)
			cached.Lookup("intro", done)
			s.Flush()
			cached.Lookup("intro", done)
			s.Flush()
			So(inner.calls, ShouldEqual, 2)
		})
	})
}

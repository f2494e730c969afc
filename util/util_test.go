package util

import (
	"math"
	"regexp"
	"testing"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "player", "players"), ShouldEqual, "1 player")
		So(Quantify(2, "player", "players"), ShouldEqual, "2 players")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<w>\d+)x(?P<h>\d+)`)
		groups := ReGroups(re, "400x300")
		So(groups["w"], ShouldEqual, "400")
		So(groups["h"], ShouldEqual, "300")
		So(ReGroups(re, "wide"), ShouldBeEmpty)
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/lookup.lua"), ShouldEqual, "lookup")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestMaxMinClamp(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})

	Convey("Clamp", t, func() {
		So(Clamp(1.5, 0.0, 1.0), ShouldEqual, 1.0)
		So(Clamp(-0.2, 0.0, 1.0), ShouldEqual, 0.0)
		So(Clamp(0.4, 0.0, 1.0), ShouldEqual, 0.4)
	})

	Convey("Finite", t, func() {
		So(Finite(1), ShouldBeTrue)
		So(Finite(math.NaN()), ShouldBeFalse)
		So(Finite(math.Inf(1)), ShouldBeFalse)
	})
}

func TestDelete(t *testing.T) {
	Convey("Given a file on the in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		lo.Must0(filesystem.API().WriteFile("/tmp/a.txt", []byte("a"), 0644))

		So(Delete("/tmp/a.txt"), ShouldBeNil)
		So(lo.Must(filesystem.API().Exists("/tmp/a.txt")), ShouldBeFalse)
		So(Delete("/tmp/missing"), ShouldNotBeNil)
	})
}

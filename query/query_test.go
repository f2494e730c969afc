package query

import (
	"testing"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.LookupSuggestions, true)
}

func TestQuery(t *testing.T) {
	Convey("Given remembered lookup keys", t, func() {
		So(Remember("lecture-01", 1), ShouldBeNil)
		So(Remember("lecture-02", 10), ShouldBeNil)

		Convey("Suggestions are sorted by rank", func() {
			s := SuggestMany("lect")
			So(len(s), ShouldBeGreaterThanOrEqualTo, 2)
			So(s[0], ShouldEqual, "lecture-02")
		})

		Convey("Remembering again raises the rank", func() {
			So(Remember("lecture-01", 20), ShouldBeNil)
			So(Suggest("lect").OrEmpty(), ShouldEqual, "lecture-01")
		})

		Convey("Blank keys are ignored", func() {
			So(Remember("   ", 5), ShouldBeNil)
			So(SuggestMany(""), ShouldNotContain, "")
		})

		Convey("Suggestions can be disabled", func() {
			viper.Set(key.LookupSuggestions, false)
			defer viper.Set(key.LookupSuggestions, true)
			So(SuggestMany("lect"), ShouldBeEmpty)
		})

		Convey("It sanitizes input", func() {
			So(sanitize("  Lecture-01  "), ShouldEqual, "lecture-01")
		})
	})
}

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPrune(t *testing.T) {
	Convey("Given a directory with old and fresh files", t, func() {
		fs := filesystem.API()
		dir := filepath.Join("/", "prune")
		lo.Must0(fs.MkdirAll(dir, 0o755))

		old := filepath.Join(dir, "mwembed-1a2b.sock")
		kept := filepath.Join(dir, "lookups.json")
		fresh := filepath.Join(dir, "version.json")
		for _, path := range []string{old, kept, fresh} {
			lo.Must0(fs.WriteFile(path, []byte("x"), 0o644))
		}

		past := time.Now().Add(-2 * TTL)
		lo.Must0(fs.Chtimes(old, past, past))
		lo.Must0(fs.Chtimes(kept, past, past))

		Convey("Only stale files outside keep are removed", func() {
			So(Prune(dir, time.Now().Add(-TTL), kept), ShouldEqual, 1)
			So(lo.Must(fs.Exists(old)), ShouldBeFalse)
			So(lo.Must(fs.Exists(kept)), ShouldBeTrue)
			So(lo.Must(fs.Exists(fresh)), ShouldBeTrue)
		})

		Convey("A missing directory is not an error", func() {
			So(Prune(filepath.Join(dir, "missing"), time.Now()), ShouldEqual, 0)
		})
	})
}

package playlist

import (
	"errors"
	"testing"
	"time"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/config"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/player"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/target"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	lo.Must0(config.Setup())
}

func TestPlaylist(t *testing.T) {
	Convey("Given a playlist of two clips", t, func() {
		s := sched.NewManual()
		rec := events.NewRecorder()
		pl := New(s, FromURIs("a.webm", "b.webm")...)

		finished := 0
		pl.Finished = func() { finished++ }

		m := player.NewManager(player.Options{
			Scheduler: s,
			Registry:  backend.NewRegistry(backend.NativeDescriptor(backend.NativeOptions{Duration: 120})),
			Surface:   events.Multi{rec, pl},
		})

		el := target.New(target.Video, map[string]string{"src": "a.webm", "data-durationhint": "120", "width": "640"})
		id := lo.Must(m.Register(el, player.Overrides{}))
		p, _ := m.Get(id)
		pl.Attach(p)
		s.Flush()
		p.Play()

		Convey("The next clip starts when the first is done", func() {
			s.Advance(121 * time.Second)

			So(pl.Current(), ShouldEqual, 1)
			So(p.Media().Selected().MustGet().URI, ShouldEqual, "b.webm")
			So(p.IsPlaying(), ShouldBeTrue)
			So(rec.Count(events.ChangeMediaDone), ShouldEqual, 1)
			So(finished, ShouldEqual, 0)
		})

		Convey("The queue finishes after the last clip", func() {
			s.Advance(250 * time.Second)

			So(pl.Current(), ShouldEqual, 1)
			So(p.State(), ShouldEqual, player.Stopped)
			So(finished, ShouldEqual, 1)
		})

		Convey("Looping restarts the queue", func() {
			pl.Loop = true
			s.Advance(250 * time.Second)

			So(pl.Current(), ShouldEqual, 0)
			So(p.IsPlaying(), ShouldBeTrue)
			So(finished, ShouldEqual, 0)
		})

		Convey("Selecting past the ends fails", func() {
			So(errors.Is(pl.Prev(), ErrOutOfRange), ShouldBeTrue)
			So(errors.Is(pl.Play(2), ErrOutOfRange), ShouldBeTrue)
			So(pl.Len(), ShouldEqual, 2)
		})
	})
}

package player

import (
	"errors"
	"testing"
	"time"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/target"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

// ready embeds a native clip of 120 seconds and waits for it to be Ready.
func ready(attrs map[string]string, sources ...string) (*harness, *EmbedPlayer) {
	h := newHarness(nil, backend.NativeDescriptor(nativeClip), bareDescriptor(bareOptions{}))
	if len(sources) == 0 {
		sources = []string{"a.webm"}
	}
	p := h.embed(clip("intro", attrs, sources...), Overrides{})
	h.sched.Flush()
	return h, p
}

func TestPlayPause(t *testing.T) {
	Convey("Given a ready player", t, func() {
		h, p := ready(nil)
		So(p.State(), ShouldEqual, Ready)
		So(p.IsStopped(), ShouldBeTrue)

		Convey("Play notifies once", func() {
			p.Play()
			p.Play()
			So(p.IsPlaying(), ShouldBeTrue)
			So(native(p).Playing(), ShouldBeTrue)
			So(h.recorder.Count(events.OnPlay), ShouldEqual, 1)
			So(h.recorder.Count(events.FirstPlay), ShouldEqual, 1)
		})

		Convey("Pause notifies once", func() {
			p.Play()
			p.Pause()
			p.Pause()
			So(p.State(), ShouldEqual, Paused)
			So(native(p).Playing(), ShouldBeFalse)
			So(h.recorder.Count(events.OnPause), ShouldEqual, 1)
		})

		Convey("Stop rewinds and shows the poster", func() {
			p.Play()
			h.sched.Advance(5 * time.Second)
			p.Stop()

			So(p.State(), ShouldEqual, Stopped)
			So(p.PosterDisplayed(), ShouldBeTrue)
			So(p.CurrentTime(), ShouldEqual, 0)
			So(p.MonitorRunning(), ShouldBeFalse)
			So(lo.Must(native(p).CurrentTime()), ShouldEqual, 0)
			So(h.recorder.Count(events.DoStop), ShouldEqual, 1)
		})

		Convey("Suppressed propagation hides play and pause", func() {
			p.SetPropagateEvents(false)
			p.Play()
			p.Pause()
			So(h.recorder.Count(events.OnPlay), ShouldEqual, 0)
			So(h.recorder.Count(events.OnPause), ShouldEqual, 0)
		})
	})
}

func TestMonitor(t *testing.T) {
	Convey("Given a playing player", t, func() {
		h, p := ready(nil)
		p.Play()

		Convey("Starting the monitor twice leaves one tick scheduled", func() {
			p.startMonitor()
			p.startMonitor()
			h.recorder.Reset()

			h.sched.Advance(250 * time.Millisecond)
			So(h.recorder.Count(events.MonitorEvent), ShouldEqual, 1)
			So(p.MonitorRunning(), ShouldBeTrue)
		})

		Convey("The playhead and position follow the backend", func() {
			h.sched.Advance(30 * time.Second)
			So(p.CurrentTime(), ShouldAlmostEqual, 30, 0.3)

			last, ok := h.recorder.Last(events.UpdatePlayHeadPercent)
			So(ok, ShouldBeTrue)
			So(last.Value.(float64), ShouldAlmostEqual, 0.25, 0.01)

			status, _ := h.recorder.Last(events.StatusUpdate)
			So(status.Value, ShouldEqual, "0:30/2:00")
		})

		Convey("Buffering is reported once at each end", func() {
			h.sched.Advance(10 * time.Second)
			So(h.recorder.Count(events.BufferStart), ShouldEqual, 1)
			So(h.recorder.Count(events.BufferEnd), ShouldEqual, 1)
		})

		Convey("A position set by a host script is sought", func() {
			h.sched.Advance(time.Second)
			p.SetCurrentTime(60)
			h.sched.Advance(250 * time.Millisecond)

			seek, ok := h.recorder.Last(events.Seeking)
			So(ok, ShouldBeTrue)
			So(seek.Value, ShouldEqual, 0.5)
			So(p.CurrentTime(), ShouldAlmostEqual, 60, 0.01)
		})

		Convey("A scrubber drag suppresses seeking and the playhead", func() {
			h.sched.Advance(time.Second)
			p.SetUserSlide(true)
			h.recorder.Reset()
			p.SetCurrentTime(60)
			h.sched.Advance(250 * time.Millisecond)

			So(h.recorder.Count(events.Seeking), ShouldEqual, 0)
			So(h.recorder.Count(events.UpdatePlayHeadPercent), ShouldEqual, 0)
		})

		Convey("Backend errors pause playback", func() {
			native(p).Fail(errors.New("decode error"))
			h.sched.Advance(250 * time.Millisecond)

			So(p.State(), ShouldEqual, Paused)
			So(p.MonitorRunning(), ShouldBeFalse)
			var perr *PlaybackError
			So(errors.As(p.Err(), &perr), ShouldBeTrue)
			So(perr.Backend, ShouldEqual, backend.NativeID)
			So(h.recorder.Count(events.PlayerError), ShouldEqual, 1)
		})
	})

	Convey("Given a clip with a temporal fragment", t, func() {
		h, p := ready(nil, "a.webm#t=10,20")
		So(p.CurrentTime(), ShouldEqual, 10)

		Convey("Playback starts at the fragment and pauses at its end", func() {
			p.Play()
			h.sched.Advance(15 * time.Second)

			So(p.Paused(), ShouldBeTrue)
			So(p.CurrentTime(), ShouldBeBetweenOrEqual, 20, 20.5)
		})
	})

	Convey("End boundary", t, func() {
		p := &EmbedPlayer{}
		So(p.passed(120, 120), ShouldBeFalse)
		So(p.passed(121, 120), ShouldBeTrue)

		p.cfg.inclusiveEnd = true
		So(p.passed(120, 120), ShouldBeTrue)
	})
}

func TestClipDone(t *testing.T) {
	Convey("Given a playing 120 second clip", t, func() {
		Convey("Playing past the end finishes the clip once", func() {
			h, p := ready(nil)
			p.Play()
			h.sched.Advance(121 * time.Second)

			So(h.recorder.Count(events.Ended), ShouldEqual, 1)
			So(h.recorder.Count(events.OnEndedDone), ShouldEqual, 1)
			So(p.State(), ShouldEqual, Stopped)
			So(p.PosterDisplayed(), ShouldBeTrue)
			So(p.MonitorRunning(), ShouldBeFalse)
			So(p.DonePlayingCount(), ShouldEqual, 1)
		})

		Convey("A second clip done is ignored", func() {
			h, p := ready(nil)
			p.Play()
			p.OnClipDone()
			p.OnClipDone()
			So(h.recorder.Count(events.Ended), ShouldEqual, 1)
		})

		Convey("Looping replays without the poster", func() {
			h, p := ready(map[string]string{"loop": ""})
			p.Play()
			h.sched.Advance(121 * time.Second)

			So(h.recorder.Count(events.Ended), ShouldEqual, 1)
			So(h.recorder.Count(events.ReplayEvent), ShouldEqual, 1)
			So(h.recorder.Count(events.OnEndedDone), ShouldEqual, 0)
			So(p.PosterDisplayed(), ShouldBeFalse)
			So(p.IsPlaying(), ShouldBeTrue)
			So(p.CurrentTime(), ShouldBeLessThan, 2)
		})

		Convey("Preview mode does not report the end", func() {
			h, p := ready(map[string]string{"previewmode": "true"})
			p.Play()
			h.sched.Advance(121 * time.Second)

			So(h.recorder.Count(events.Ended), ShouldEqual, 1)
			So(h.recorder.Count(events.OnEndedDone), ShouldEqual, 0)
		})
	})
}

func TestSeek(t *testing.T) {
	Convey("Given a ready player", t, func() {
		h, p := ready(nil)

		Convey("Percentages are clamped", func() {
			p.DoSeek(1.5)
			seek, _ := h.recorder.Last(events.Seeking)
			So(seek.Value, ShouldEqual, 1.0)
			So(p.CurrentTime(), ShouldEqual, 120)

			p.DoSeek(-0.5)
			seek, _ = h.recorder.Last(events.Seeking)
			So(seek.Value, ShouldEqual, 0.0)
			So(p.CurrentTime(), ShouldEqual, 0)
		})

		Convey("Playback resumes after the seek", func() {
			p.DoSeek(0.5)
			So(p.Seeking(), ShouldBeTrue)
			So(lo.Must(native(p).CurrentTime()), ShouldEqual, 60)

			h.sched.Advance(100 * time.Millisecond)
			So(p.Seeking(), ShouldBeFalse)
			So(p.IsPlaying(), ShouldBeTrue)
		})

		Convey("The latest seek owns the resume", func() {
			p.DoSeek(0.25)
			h.sched.Advance(50 * time.Millisecond)
			p.DoSeek(0.5)
			h.sched.Advance(60 * time.Millisecond)
			So(p.Seeking(), ShouldBeTrue)

			h.sched.Advance(40 * time.Millisecond)
			So(p.Seeking(), ShouldBeFalse)
			So(h.recorder.Count(events.OnPlay), ShouldEqual, 1)
		})
	})

	Convey("Given a source served with URL time encoding", t, func() {
		el := clip("intro", nil)
		el.Sources = []target.SourceChild{{
			Src:   "http://example.org/clip.webm",
			Attrs: map[string]string{"data-urltimeencoding": "true"},
		}}
		h := newHarness(nil, backend.NativeDescriptor(nativeClip))
		p := h.embed(el, Overrides{})
		h.sched.Flush()

		Convey("Seeking reloads the stream at the target time", func() {
			p.DoSeek(0.5)
			So(native(p).Src(), ShouldContainSubstring, "t=0%3A01%3A00")

			h.sched.Advance(100 * time.Millisecond)
			So(p.IsPlaying(), ShouldBeTrue)

			h.sched.Advance(time.Second)
			So(p.CurrentTime(), ShouldBeBetween, 60, 62)
		})

		Convey("Stopping drops the server seek time", func() {
			p.Play()
			p.DoSeek(0.5)
			h.sched.Advance(100 * time.Millisecond)
			So(p.serverSeekTime, ShouldEqual, 60)

			p.Stop()
			So(p.serverSeekTime, ShouldEqual, 0)
			So(p.CurrentTime(), ShouldEqual, 0)

			p.Play()
			h.sched.Flush()
			So(native(p).Src(), ShouldEqual, "http://example.org/clip.webm")
			So(p.IsPlaying(), ShouldBeTrue)

			h.sched.Advance(time.Second)
			So(p.CurrentTime(), ShouldBeBetween, 0.5, 2)
		})

		Convey("A second reload keeps the running backend", func() {
			running := native(p)
			p.DoSeek(0.5)
			So(p.UpdateVideoTimeReq("0:00:10/0:00:20"), ShouldBeNil)
			h.sched.Flush()

			So(native(p), ShouldEqual, running)
			So(native(p).Src(), ShouldContainSubstring, "t=0%3A00%3A10")
			So(p.State(), ShouldNotEqual, Errored)
		})
	})

	Convey("Given a looping source served with URL time encoding", t, func() {
		el := clip("intro", map[string]string{"loop": ""})
		el.Sources = []target.SourceChild{{
			Src:   "http://example.org/clip.webm",
			Attrs: map[string]string{"data-urltimeencoding": "true"},
		}}
		h := newHarness(nil, backend.NativeDescriptor(nativeClip))
		p := h.embed(el, Overrides{})
		h.sched.Flush()

		Convey("The replay starts from the beginning of the stream", func() {
			p.Play()
			p.DoSeek(0.5)
			h.sched.Advance(61 * time.Second)

			So(p.DonePlayingCount(), ShouldEqual, 1)
			So(p.serverSeekTime, ShouldEqual, 0)
			So(native(p).Src(), ShouldEqual, "http://example.org/clip.webm")
			So(p.IsPlaying(), ShouldBeTrue)
			So(p.CurrentTime(), ShouldBeLessThan, 2)
		})
	})
}

func TestBackendSwap(t *testing.T) {
	Convey("Given a player bound to the native backend", t, func() {
		h, p := ready(nil)
		So(p.Installed(), ShouldContain, CapCurrentTime)
		p.Play()
		h.sched.Advance(time.Second)

		Convey("Selecting the bound backend does nothing", func() {
			So(p.SelectPlayer(backend.NativeID), ShouldBeNil)
			So(p.State(), ShouldEqual, Playing)
		})

		Convey("Unknown backends are suggested", func() {
			err := p.SelectPlayer("bar")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, `"bare"`)
		})

		Convey("Swapping removes the previous capabilities", func() {
			So(p.SelectPlayer("bare"), ShouldBeNil)
			h.sched.Flush()

			So(p.Backend().MustGet(), ShouldEqual, "bare")
			So(p.Installed(), ShouldBeEmpty)
			So(p.IsPlaying(), ShouldBeTrue)

			position := p.CurrentTime()
			h.sched.Advance(time.Second)
			So(p.CurrentTime(), ShouldEqual, position)

			_, err := p.methods.volume()
			So(errors.Is(err, backend.ErrUnsupported), ShouldBeTrue)
		})

		Convey("A playback error survives the swap", func() {
			native(p).Fail(errors.New("decode error"))
			h.sched.Advance(250 * time.Millisecond)

			So(p.SelectPlayer("bare"), ShouldBeNil)
			h.sched.Flush()

			So(p.Backend().MustGet(), ShouldEqual, "bare")
			var perr *PlaybackError
			So(errors.As(p.Err(), &perr), ShouldBeTrue)
			So(perr.Backend, ShouldEqual, backend.NativeID)
		})
	})

	Convey("Given a player no backend could load", t, func() {
		broken := errors.New("broken")
		h := newHarness(nil,
			bareDescriptor(bareOptions{fails: map[string]error{"a.webm": broken}}),
			backend.NativeDescriptor(backend.NativeOptions{Duration: 120, FailLoad: broken}),
		)
		p := h.embed(clip("intro", nil, "a.webm"), Overrides{})
		h.sched.Flush()
		So(p.State(), ShouldEqual, Errored)

		Convey("Selecting a backend is refused", func() {
			err := p.SelectPlayer("bare")
			So(errors.Is(err, ErrErrored), ShouldBeTrue)
			So(errors.Is(err, ErrNoPlayableSource), ShouldBeTrue)

			h.sched.Flush()
			So(p.State(), ShouldEqual, Errored)
			So(p.Err(), ShouldNotBeNil)
		})

		Convey("Changing the media recovers", func() {
			p.EmptySources()
			So(p.AddSource(media.NewSource("b.webm", "")), ShouldBeTrue)
			p.ChangeMedia(nil)
			h.sched.Flush()

			So(p.State(), ShouldEqual, Ready)
			So(p.Backend().MustGet(), ShouldEqual, "bare")
			So(p.Err(), ShouldBeNil)
		})
	})
}

func TestVolume(t *testing.T) {
	Convey("Given a playing player", t, func() {
		h, p := ready(nil)
		p.Play()
		So(p.Volume(), ShouldEqual, 0.75)

		Convey("Volume is clamped", func() {
			p.SetVolume(2, true)
			So(p.Volume(), ShouldEqual, 1)
			So(lo.Must(native(p).Volume()), ShouldEqual, 1)
			So(h.recorder.Count(events.VolumeChanged), ShouldEqual, 1)
		})

		Convey("Mute toggles and restores", func() {
			p.ToggleMute()
			So(p.Muted(), ShouldBeTrue)
			So(lo.Must(native(p).Muted()), ShouldBeTrue)

			p.ToggleMute()
			So(p.Muted(), ShouldBeFalse)
			So(p.Volume(), ShouldEqual, 0.75)
			So(h.recorder.Count(events.Muted), ShouldEqual, 2)
		})

		Convey("Backend mute changes are adopted once", func() {
			_ = native(p).SetMuted(true)
			h.sched.Advance(250 * time.Millisecond)
			So(p.Muted(), ShouldBeTrue)
			So(h.recorder.Count(events.Muted), ShouldEqual, 1)

			h.sched.Advance(time.Second)
			So(p.Muted(), ShouldBeTrue)
			So(h.recorder.Count(events.Muted), ShouldEqual, 1)
			So(lo.Must(native(p).Muted()), ShouldBeTrue)
		})

		Convey("Backend volume changes are adopted", func() {
			_ = native(p).SetVolume(0.3)
			h.sched.Advance(250 * time.Millisecond)
			So(p.Volume(), ShouldEqual, 0.3)
			So(h.recorder.Count(events.VolumeChanged), ShouldEqual, 1)
		})
	})
}

func TestChangeMedia(t *testing.T) {
	Convey("Given a playing player", t, func() {
		h, p := ready(nil)
		p.Play()
		h.sched.Advance(time.Second)
		h.recorder.Reset()

		Convey("New sources are loaded and playback resumes", func() {
			done := 0
			p.EmptySources()
			So(p.AddSource(media.NewSource("b.webm", "")), ShouldBeTrue)
			p.ChangeMedia(func() { done++ })
			h.sched.Flush()

			So(done, ShouldEqual, 1)
			So(p.Media().Selected().MustGet().URI, ShouldEqual, "b.webm")
			So(native(p).Src(), ShouldEqual, "b.webm")
			So(p.IsPlaying(), ShouldBeTrue)
			So(h.recorder.Count(events.ChangeMedia), ShouldEqual, 1)
			So(h.recorder.Count(events.ChangeMediaDone), ShouldEqual, 1)
			So(h.recorder.Count(events.FirstPlay), ShouldEqual, 1)
		})

		Convey("The ready hook is rebound by a second change", func() {
			first, second := 0, 0
			p.ChangeMedia(func() { first++ })
			p.ChangeMedia(func() { second++ })
			h.sched.Flush()

			So(first, ShouldEqual, 0)
			So(second, ShouldEqual, 1)
			So(h.recorder.Count(events.PlayerReady), ShouldEqual, 1)
		})

		Convey("The running backend can switch sources directly", func() {
			var result error = errors.New("pending")
			p.SwitchPlaySrc("c.webm", func(err error) { result = err })
			h.sched.Flush()

			So(result, ShouldBeNil)
			So(native(p).Src(), ShouldEqual, "c.webm")
			So(p.Media().Selected().MustGet().URI, ShouldEqual, "c.webm")
			So(p.IsPlaying(), ShouldBeTrue)
		})
	})

	Convey("Given a ready player", t, func() {
		h, p := ready(nil)

		Convey("The clip can be narrowed", func() {
			So(p.UpdateVideoTimeReq("0:00:10/0:00:20"), ShouldBeNil)
			So(p.Duration(), ShouldEqual, 10)
			So(p.CurrentTime(), ShouldEqual, 10)
			So(lo.Must(native(p).CurrentTime()), ShouldEqual, 10)

			So(p.UpdateVideoTimeReq("/0:00:20"), ShouldNotBeNil)
		})

		Convey("The poster can be replaced", func() {
			p.UpdatePosterSrc("still.jpg")
			So(p.Attributes().Poster, ShouldEqual, "still.jpg")
			So(h.recorder.Count(events.PosterUpdate), ShouldEqual, 1)
		})
	})
}

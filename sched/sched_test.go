package sched

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManual(t *testing.T) {
	Convey("Given a manual scheduler", t, func() {
		m := NewManual()
		var order []string

		Convey("Callbacks run in due order, then scheduling order", func() {
			m.AfterFunc(20*time.Millisecond, func() { order = append(order, "c") })
			m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
			m.AfterFunc(10*time.Millisecond, func() { order = append(order, "b") })

			m.Advance(15 * time.Millisecond)
			So(order, ShouldResemble, []string{"a", "b"})

			m.Advance(5 * time.Millisecond)
			So(order, ShouldResemble, []string{"a", "b", "c"})
			So(m.Elapsed(), ShouldEqual, 20*time.Millisecond)
		})

		Convey("Stop prevents a pending callback exactly once", func() {
			timer := m.AfterFunc(time.Second, func() { order = append(order, "x") })
			So(m.Pending(), ShouldEqual, 1)
			So(timer.Stop(), ShouldBeTrue)
			So(timer.Stop(), ShouldBeFalse)
			So(m.Pending(), ShouldEqual, 0)

			m.Advance(2 * time.Second)
			So(order, ShouldBeEmpty)
		})

		Convey("Stop after firing reports false", func() {
			timer := m.AfterFunc(time.Millisecond, func() {})
			m.Advance(time.Millisecond)
			So(timer.Stop(), ShouldBeFalse)
		})

		Convey("Callbacks scheduled while advancing run if due", func() {
			m.AfterFunc(10*time.Millisecond, func() {
				order = append(order, "outer")
				m.AfterFunc(10*time.Millisecond, func() { order = append(order, "inner") })
			})

			m.Advance(30 * time.Millisecond)
			So(order, ShouldResemble, []string{"outer", "inner"})
		})

		Convey("Post runs on the next flush", func() {
			m.Post(func() { order = append(order, "posted") })
			So(order, ShouldBeEmpty)
			m.Flush()
			So(order, ShouldResemble, []string{"posted"})
		})

		Convey("Now follows the callback being run", func() {
			var at time.Duration
			m.AfterFunc(40*time.Millisecond, func() { at = m.Elapsed() })
			m.Advance(time.Second)
			So(at, ShouldEqual, 40*time.Millisecond)
		})
	})
}

func TestLoop(t *testing.T) {
	Convey("Given a running loop", t, func() {
		loop := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- loop.Run(ctx) }()

		Convey("Timers fire on the loop", func() {
			fired := make(chan struct{})
			loop.AfterFunc(5*time.Millisecond, func() { close(fired) })

			select {
			case <-fired:
			case <-time.After(time.Second):
				So("timer did not fire", ShouldBeEmpty)
			}
		})

		Convey("Stopped timers do not fire", func() {
			fired := make(chan struct{}, 1)
			timer := loop.AfterFunc(5*time.Millisecond, func() { fired <- struct{}{} })
			So(timer.Stop(), ShouldBeTrue)

			time.Sleep(20 * time.Millisecond)
			So(len(fired), ShouldEqual, 0)
		})

		Reset(func() {
			cancel()
			So(<-done, ShouldEqual, context.Canceled)
		})
	})

	Convey("Given a loop that has stopped", t, func() {
		loop := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		So(loop.Run(ctx), ShouldEqual, context.Canceled)

		Convey("Posting never blocks", func() {
			posted := make(chan struct{})
			go func() {
				for i := 0; i < 2*queueSize; i++ {
					loop.Post(func() {})
				}
				close(posted)
			}()

			select {
			case <-posted:
			case <-time.After(time.Second):
				So("post blocked", ShouldBeEmpty)
			}
		})
	})
}

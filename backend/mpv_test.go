package backend

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mwembed/mwembed/constant"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/sched"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

// fakeMPV writes an executable that ignores its arguments and sleeps.
func fakeMPV(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "mpv")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nsleep 5\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// settle flushes s until done reports true or a few seconds pass.
func settle(s *sched.Manual, done func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.Flush()
		if done() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestMPV(t *testing.T) {
	Convey("MPV", t, func() {
		m := NewMPV(sched.NewManual())

		Convey("Implements every optional capability", func() {
			var adapter Adapter = m
			_, isTime := adapter.(TimeGetter)
			_, isSeeker := adapter.(Seeker)
			_, isVolume := adapter.(VolumeSetter)
			_, isBuffer := adapter.(BufferReporter)
			_, isSwitch := adapter.(SourceSwitcher)
			So(isTime && isSeeker && isVolume && isBuffer && isSwitch, ShouldBeTrue)
		})

		Convey("Close without a process is a no-op", func() {
			So(m.Close(), ShouldBeNil)
			So(m.Socket(), ShouldBeEmpty)
		})
	})

	if runtime.GOOS == constant.Windows {
		return
	}

	Convey("Given an mpv executable that never opens its socket", t, func() {
		viper.Set(key.BackendMPVPath, fakeMPV(t))
		defer viper.Set(key.BackendMPVPath, "mpv")

		s := sched.NewManual()
		m := NewMPV(s)

		var loadErr error
		loaded := false
		onReady := func(err error) {
			loadErr, loaded = err, true
		}

		Convey("Closing mid-load leaves no process behind", func() {
			m.Load("a.webm", onReady)
			time.Sleep(20 * time.Millisecond)

			began := time.Now()
			So(m.Close(), ShouldBeNil)
			So(time.Since(began), ShouldBeLessThan, time.Second)

			So(settle(s, func() bool { return loaded }), ShouldBeTrue)
			So(loadErr, ShouldNotBeNil)

			m.proc.Lock()
			exited := m.exited
			m.proc.Unlock()
			if exited != nil {
				select {
				case <-exited:
				case <-time.After(time.Second):
					t.Error("mpv still running after Close")
				}
			}
		})

		Convey("A load after Close never spawns", func() {
			So(m.Close(), ShouldBeNil)
			m.Load("a.webm", onReady)

			So(settle(s, func() bool { return loaded }), ShouldBeTrue)
			So(errors.Is(loadErr, ErrClosed), ShouldBeTrue)
			So(m.Socket(), ShouldBeEmpty)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Should accept http and local paths", func() {
			v, err := sanitizeMediaTarget(" https://example.com/a.mp4 ")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "https://example.com/a.mp4")

			v, err = sanitizeMediaTarget("media/../media/a.ogv")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "media/a.ogv")
		})

		Convey("Should reject flags, control characters and odd schemes", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
			_, err = sanitizeMediaTarget("a\nb")
			So(err, ShouldNotBeNil)
			_, err = sanitizeMediaTarget("file:///etc/passwd")
			So(err, ShouldNotBeNil)
			_, err = sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("sanitizeTitle", t, func() {
		So(sanitizeTitle(" a\tb\nc\x00 "), ShouldEqual, "a b c")
	})
}

func TestIPCCodec(t *testing.T) {
	Convey("encodeCommand", t, func() {
		payload, err := encodeCommand([]interface{}{"get_property", "time-pos"})
		So(err, ShouldBeNil)
		So(string(payload), ShouldEqual, `{"command":["get_property","time-pos"]}`+"\n")
	})

	Convey("decodeResponse", t, func() {
		Convey("Should return data on success", func() {
			data, err := decodeResponse([]byte(`{"data":12.5,"error":"success"}` + "\n"))
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 12.5)
		})

		Convey("Should surface mpv errors", func() {
			_, err := decodeResponse([]byte(`{"error":"property unavailable"}`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})

		Convey("Should only read the first reply line", func() {
			data, err := decodeResponse([]byte(`{"data":true,"error":"success"}` + "\n" + `{"event":"pause"}` + "\n"))
			So(err, ShouldBeNil)
			So(data, ShouldEqual, true)
		})
	})
}

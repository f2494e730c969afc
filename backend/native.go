package backend

import (
	"errors"
	"time"

	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/util"
)

// NativeID is the registry identifier of the native backend.
const NativeID = "native"

// NativeMimeTypes are the formats the host decoder handles.
var NativeMimeTypes = []string{
	"video/ogg",
	"video/webm",
	"video/mp4",
	"audio/ogg",
	"audio/mpeg",
	"audio/wav",
}

// NativeOptions configure the simulated host decoder.
type NativeOptions struct {
	// LoadDelay is the time between Load and the ready signal.
	LoadDelay time.Duration
	// Duration of the media; zero means unknown.
	Duration float64
	// BufferRate is the fraction of the media buffered per second of wall time.
	BufferRate float64
	// FailLoad makes Load report this error.
	FailLoad error
}

// Native is a host decoder driven by the scheduler clock. Playback position
// advances with scheduler time while playing.
type Native struct {
	sched sched.Scheduler
	opts  NativeOptions

	src      string
	loaded   bool
	playing  bool
	position float64
	anchor   time.Time
	loadedAt time.Time
	volume   float64
	muted    bool
	err      error
}

// NewNative creates a native adapter.
func NewNative(s sched.Scheduler, opts NativeOptions) *Native {
	if opts.BufferRate <= 0 {
		opts.BufferRate = 0.25
	}
	return &Native{sched: s, opts: opts, volume: 1}
}

// NativeDescriptor registers the native backend with opts.
func NativeDescriptor(opts NativeOptions) Descriptor {
	return Descriptor{
		ID:        NativeID,
		Name:      "Native host decoder",
		MimeTypes: NativeMimeTypes,
		Native:    true,
		New:       func(s sched.Scheduler) Adapter { return NewNative(s, opts) },
	}
}

func (n *Native) ID() string { return NativeID }

// Load becomes ready after LoadDelay.
func (n *Native) Load(src string, onReady func(error)) {
	n.src = src
	n.sched.AfterFunc(n.opts.LoadDelay, func() {
		if n.opts.FailLoad != nil {
			onReady(n.opts.FailLoad)
			return
		}
		n.loaded = true
		n.position = 0
		n.playing = false
		n.loadedAt = n.sched.Now()
		onReady(nil)
	})
}

// Features of the host decoder.
func (n *Native) Features() Features {
	return Features{
		FeatureSourceSwitch: true,
		FeatureAutoplay:     true,
	}
}

// Src returns the loaded media.
func (n *Native) Src() string { return n.src }

// Playing reports whether the clock is running.
func (n *Native) Playing() bool { return n.playing }

func (n *Native) Play() error {
	if !n.loaded {
		return errors.New("native: media not loaded")
	}
	if !n.playing {
		n.anchor = n.sched.Now()
		n.playing = true
	}
	return nil
}

func (n *Native) Pause() error {
	n.position = n.now()
	n.playing = false
	return nil
}

func (n *Native) CurrentTime() (float64, error) {
	if !n.loaded {
		return 0, errors.New("native: media not loaded")
	}
	return n.now(), nil
}

func (n *Native) SetCurrentTime(seconds float64) error {
	n.position = seconds
	n.anchor = n.sched.Now()
	return nil
}

func (n *Native) Duration() (float64, error) {
	if n.opts.Duration <= 0 {
		return 0, errors.New("native: duration unknown")
	}
	return n.opts.Duration, nil
}

func (n *Native) Volume() (float64, error) { return n.volume, nil }

func (n *Native) SetVolume(volume float64) error {
	n.volume = util.Clamp(volume, 0, 1)
	return nil
}

func (n *Native) Muted() (bool, error) { return n.muted, nil }

func (n *Native) SetMuted(muted bool) error {
	n.muted = muted
	return nil
}

// Buffered grows with BufferRate from the moment the media loaded.
func (n *Native) Buffered() (float64, error) {
	if !n.loaded {
		return 0, nil
	}
	elapsed := n.sched.Now().Sub(n.loadedAt).Seconds()
	return util.Clamp(elapsed*n.opts.BufferRate, 0, 1), nil
}

// SwitchSrc replaces the media in place.
func (n *Native) SwitchSrc(src string, onSwitched func(error)) {
	n.loaded = false
	n.Load(src, onSwitched)
}

func (n *Native) Err() error { return n.err }

// Fail raises a playback error on the decoder.
func (n *Native) Fail(err error) {
	n.err = err
	n.playing = false
}

func (n *Native) Close() error {
	n.playing = false
	n.loaded = false
	return nil
}

func (n *Native) now() float64 {
	if !n.playing {
		return n.position
	}
	return n.position + n.sched.Now().Sub(n.anchor).Seconds()
}

// Package backend defines the playback engines an embed player can bind to.
//
// An Adapter only has to load media and declare its features. Everything else is
// optional and expressed as small capability interfaces; the embed player checks
// for them when binding and falls back to last-known values when one is missing.
package backend

import "errors"

// ErrUnsupported is returned by adapters for operations their engine cannot perform.
var ErrUnsupported = errors.New("operation not supported by backend")

// Adapter is the minimal contract of a playback engine.
type Adapter interface {
	// ID returns the registry identifier of the backend.
	ID() string

	// Load prepares src for playback. onReady runs on the scheduler exactly once,
	// with a non-nil error when the engine could not load the media.
	Load(src string, onReady func(error))

	// Features returns the capability flags the engine supports.
	Features() Features
}

// Player starts and suspends playback.
type Player interface {
	Play() error
	Pause() error
}

// TimeGetter reports the playback position in seconds.
type TimeGetter interface {
	CurrentTime() (float64, error)
}

// Seeker moves the playback position to an absolute time in seconds.
type Seeker interface {
	SetCurrentTime(seconds float64) error
}

// VolumeGetter reports the volume in [0,1].
type VolumeGetter interface {
	Volume() (float64, error)
}

// VolumeSetter changes the volume in [0,1].
type VolumeSetter interface {
	SetVolume(volume float64) error
}

// MuteGetter reports whether audio is muted.
type MuteGetter interface {
	Muted() (bool, error)
}

// MuteSetter mutes or unmutes audio.
type MuteSetter interface {
	SetMuted(muted bool) error
}

// BufferReporter reports the buffered fraction of the media in [0,1].
type BufferReporter interface {
	Buffered() (float64, error)
}

// DurationGetter reports the media duration in seconds.
type DurationGetter interface {
	Duration() (float64, error)
}

// SourceSwitcher replaces the media of a running engine without reloading it.
type SourceSwitcher interface {
	SwitchSrc(src string, onSwitched func(error))
}

// ErrorReporter exposes a playback error raised by the engine after loading.
type ErrorReporter interface {
	Err() error
}

// Closer releases engine resources.
type Closer interface {
	Close() error
}

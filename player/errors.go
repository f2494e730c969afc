package player

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPlayableSource means no source has a compatible backend, or every candidate failed to load.
	ErrNoPlayableSource = errors.New("no playable source")

	// ErrBackendLoad wraps a single backend load failure.
	ErrBackendLoad = errors.New("backend failed to load")

	// ErrSourceLookup wraps a failed external source lookup.
	ErrSourceLookup = errors.New("source lookup failed")

	// ErrErrored is returned for commands an errored instance cannot carry out.
	ErrErrored = errors.New("embed player errored")

	// ErrAlreadyEmbedded is returned when registering a placeholder that was already rewritten.
	ErrAlreadyEmbedded = errors.New("placeholder already has an embed player")
)

// PlaybackError is a playback error reported by the bound backend or declared on the placeholder.
type PlaybackError struct {
	Backend string
	Err     error
}

func (e *PlaybackError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("playback: %v", e.Err)
	}
	return fmt.Sprintf("playback (%s): %v", e.Backend, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

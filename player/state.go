// Package player implements the embed player lifecycle and the manager that aggregates readiness.
//
// Every method runs on the scheduler the player was created with. Nothing in this
// package takes locks; adapters and lookups hand their results back with Post.
package player

// State is a lifecycle state of an embed player.
type State int

const (
	Initializing State = iota
	AwaitingMetadata
	ResolvingSources
	SelectingBackend
	Loading
	Ready
	Playing
	Paused
	Seeking
	Stopped
	Errored
)

var stateNames = map[State]string{
	Initializing:     "initializing",
	AwaitingMetadata: "awaiting-metadata",
	ResolvingSources: "resolving-sources",
	SelectingBackend: "selecting-backend",
	Loading:          "loading",
	Ready:            "ready",
	Playing:          "playing",
	Paused:           "paused",
	Seeking:          "seeking",
	Stopped:          "stopped",
	Errored:          "errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Transitional reports whether commands must wait for the state to settle.
func (s State) Transitional() bool {
	return s < Ready
}

// Settled reports whether the manager counts the state toward aggregate readiness.
func (s State) Settled() bool {
	return s >= Ready
}

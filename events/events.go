// Package events defines the notifications an embed player sends to its control surface.
package events

import (
	"fmt"

	"github.com/mwembed/mwembed/log"
)

// EventType enumerates notification categories.
type EventType string

const (
	PlayerReady           EventType = "playerReady"
	OnPlay                EventType = "onplay"
	OnPause               EventType = "onpause"
	DoStop                EventType = "doStop"
	Ended                 EventType = "ended"
	OnEndedDone           EventType = "onEndedDone"
	UpdatePlayHeadPercent EventType = "updatePlayHeadPercent"
	UpdateBufferPercent   EventType = "updateBufferPercent"
	BufferStart           EventType = "bufferStartEvent"
	BufferEnd             EventType = "bufferEndEvent"
	VolumeChanged         EventType = "volumeChanged"
	ReplayEvent           EventType = "replayEvent"
	FirstPlay             EventType = "firstPlay"
	MonitorEvent          EventType = "monitorEvent"

	UpdateFeatureSupport EventType = "updateFeatureSupport"
	StatusUpdate         EventType = "statusUpdate"
	Seeking              EventType = "seeking"
	NoSourceError        EventType = "noSourceError"
	PlayerError          EventType = "playerError"
	ChangeMedia          EventType = "onChangeMedia"
	ChangeMediaDone      EventType = "onChangeMediaDone"
	PosterUpdate         EventType = "updatePoster"
	Muted                EventType = "onToggleMute"
)

// Event is a single notification.
type Event struct {
	Type     EventType
	PlayerID string
	Value    any
}

func (e Event) String() string {
	if e.Value == nil {
		return fmt.Sprintf("%s[%s]", e.Type, e.PlayerID)
	}
	return fmt.Sprintf("%s[%s] %v", e.Type, e.PlayerID, e.Value)
}

// Surface receives notifications. Implementations must not call back into the
// player synchronously in a way that expects the notification to be complete.
type Surface interface {
	Notify(Event)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(Event)

// Notify calls f.
func (f SurfaceFunc) Notify(e Event) { f(e) }

// Multi fans a notification out to several surfaces in order.
type Multi []Surface

// Notify forwards e to every surface.
func (m Multi) Notify(e Event) {
	for _, s := range m {
		s.Notify(e)
	}
}

// Discard ignores every notification.
var Discard Surface = SurfaceFunc(func(Event) {})

// Logged writes every notification at debug level through the player-scoped logger.
var Logged Surface = SurfaceFunc(func(e Event) {
	entry := log.Player(e.PlayerID).WithField("event", string(e.Type))
	if e.Value != nil {
		entry = entry.WithField("value", e.Value)
	}
	entry.Debug("surface notification")
})

// Package playlist drives one embed player through an ordered queue of clips.
package playlist

import (
	"errors"
	"fmt"

	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/player"
	"github.com/mwembed/mwembed/sched"
	"github.com/samber/lo"
)

// ErrOutOfRange is returned when selecting a clip past either end of the queue.
var ErrOutOfRange = errors.New("clip index out of range")

// Clip is one entry of the queue.
type Clip struct {
	Title   string
	Sources []*media.Source
}

// FromURIs builds one single-source clip per uri.
func FromURIs(uris ...string) []Clip {
	return lo.Map(uris, func(uri string, _ int) Clip {
		return Clip{Title: uri, Sources: []*media.Source{media.NewSource(uri, "")}}
	})
}

// Playlist advances its player to the next clip whenever playback of the current one is done.
// It is a Surface and must receive the notifications of its player.
type Playlist struct {
	sched  sched.Scheduler
	clips  []Clip
	player *player.EmbedPlayer
	index  int

	// Loop restarts the queue after the last clip.
	Loop bool

	// Finished runs once the last clip is done and Loop is off.
	Finished func()
}

// New creates a playlist over clips. The attached player is expected to hold the first clip.
func New(s sched.Scheduler, clips ...Clip) *Playlist {
	return &Playlist{sched: s, clips: clips}
}

// Attach binds the playlist to p.
func (pl *Playlist) Attach(p *player.EmbedPlayer) {
	pl.player = p
	pl.index = 0
}

// Len returns the number of clips.
func (pl *Playlist) Len() int { return len(pl.clips) }

// Current returns the index of the clip being played.
func (pl *Playlist) Current() int { return pl.index }

// Notify reacts to the end of playback of the attached player.
func (pl *Playlist) Notify(e events.Event) {
	if pl.player == nil || e.PlayerID != pl.player.ID() || e.Type != events.OnEndedDone {
		return
	}

	pl.sched.Post(func() {
		if err := pl.Next(); err != nil {
			if pl.Finished != nil {
				pl.Finished()
			}
		}
	})
}

// Next plays the following clip.
func (pl *Playlist) Next() error {
	next := pl.index + 1
	if next >= len(pl.clips) {
		if !pl.Loop {
			return ErrOutOfRange
		}
		next = 0
	}
	return pl.Play(next)
}

// Prev plays the preceding clip.
func (pl *Playlist) Prev() error {
	return pl.Play(pl.index - 1)
}

// Play replaces the media of the player with clip i and starts it once ready.
func (pl *Playlist) Play(i int) error {
	if pl.player == nil {
		return errors.New("playlist is not attached to a player")
	}
	if i < 0 || i >= len(pl.clips) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(pl.clips))
	}

	clip := pl.clips[i]
	pl.index = i
	log.Player(pl.player.ID()).WithField("clip", clip.Title).Info("next clip")

	pl.player.EmptySources()
	for _, s := range clip.Sources {
		pl.player.AddSource(s)
	}
	pl.player.ChangeMedia(pl.player.Play)
	return nil
}

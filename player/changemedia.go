package player

import (
	"fmt"
	"strings"

	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/media"
	"github.com/samber/mo"
)

// changeMediaHook is the ready hook ChangeMedia rebinds on every call.
const changeMediaHook = "changeMedia"

// EmptySources removes every candidate source.
func (p *EmbedPlayer) EmptySources() {
	p.media.Empty()
	p.candidates = nil
}

// AddSource appends a candidate source. It reports whether the source was accepted.
func (p *EmbedPlayer) AddSource(s *media.Source) bool {
	return p.media.TryAddSource(s)
}

// ChangeMedia resets playback state and re-runs source selection and backend
// loading for the current sources. done runs once the new media is ready.
// Playback resumes if the previous media was playing.
func (p *EmbedPlayer) ChangeMedia(done func()) {
	resume := p.IsPlaying()
	p.notify(events.ChangeMedia, p.id)

	p.epoch++
	p.stopMonitor()
	p.cancelSeek()
	if p.metaTimer != nil && p.state != AwaitingMetadata {
		p.metaTimer.Stop()
		p.metaTimer = nil
	}
	if !p.paused {
		_ = p.methods.pause()
	}

	p.err = nil
	p.pending = nil
	p.reloading = false
	p.rewindSrc = false
	p.paused = true
	p.posterDisplayed = true
	p.seeking = false
	p.firstPlay = true
	p.currentTime, p.previousTime, p.serverSeekTime = 0, 0, 0
	p.pauseTime = mo.None[float64]()
	p.bufferedPercent = 0
	p.bufferStarted, p.bufferEnded = false, false
	p.donePlaying, p.replayEvents = 0, 0
	p.duration = 0
	p.startOffset = p.attrs.StartOffset
	p.attrs.PlayerError = ""

	p.OnReady(changeMediaHook, func() {
		if resume {
			p.Stop()
			p.Play()
		}
		p.notify(events.ChangeMediaDone, p.id)
		if done != nil {
			done()
		}
	})

	// the pending start or metadata wait picks up the new sources
	if p.state == Initializing || p.state == AwaitingMetadata {
		return
	}
	p.resolveSources()
}

// UpdateVideoTime re-clips the selected source to [startNPT, endNPT] and rewinds to the new start.
func (p *EmbedPlayer) UpdateVideoTime(startNPT, endNPT string) error {
	if err := p.media.UpdateSourceTimes(startNPT, endNPT); err != nil {
		return err
	}

	source, _ := p.media.Selected().Get()
	p.startOffset = source.StartOffset
	if d, ok := source.Duration().Get(); ok {
		p.duration = d
	}
	p.serverSeekTime = 0
	p.currentTime, p.previousTime = p.startOffset, p.startOffset
	p.updatePlayHead(0)

	if p.supportsURLTimeEncoding() {
		p.serverSeekTime = p.startOffset
		p.reload()
	} else if err := p.methods.seek(p.startOffset); err != nil {
		p.log.WithError(err).Debug("seek to clip start")
	}
	return nil
}

// UpdateVideoTimeReq is UpdateVideoTime taking a "start/end" request.
func (p *EmbedPlayer) UpdateVideoTimeReq(req string) error {
	start, end, _ := strings.Cut(req, "/")
	if start == "" {
		return fmt.Errorf("time request %q has no start", req)
	}
	return p.UpdateVideoTime(start, end)
}

// UpdatePosterSrc replaces the poster image.
func (p *EmbedPlayer) UpdatePosterSrc(src string) {
	p.attrs.Poster = src
	p.notify(events.PosterUpdate, src)
}

// SwitchPlaySrc replaces the media of the running backend without rebinding.
// done runs once the backend has switched.
func (p *EmbedPlayer) SwitchPlaySrc(src string, done func(error)) {
	if p.binding == nil {
		if done != nil {
			p.sched.Post(func() { done(ErrNoPlayableSource) })
		}
		return
	}

	resume := p.IsPlaying()
	s := media.NewSource(src, "")
	p.media.TryAddSource(s)
	for _, existing := range p.media.Sources() {
		if existing.URI == src {
			_ = p.media.Select(existing)
		}
	}

	p.stopMonitor()
	p.currentTime, p.previousTime = 0, 0
	p.reloading = true
	token := p.binding.token
	p.methods.switchSrc(src, func(err error) {
		if p.binding == nil || p.binding.token != token {
			return
		}
		p.reloading = false
		if err != nil {
			p.log.WithError(err).WithField("src", src).Warn("switch source")
		} else if resume {
			p.paused = true
			p.Play()
		}
		p.drainPending()
		if done != nil {
			done(err)
		}
	})
}

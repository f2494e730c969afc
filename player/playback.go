package player

import (
	"errors"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/metrics"
)

// Play starts or resumes playback. Calls made while the instance is between
// states run once it is Ready.
func (p *EmbedPlayer) Play() {
	if p.whenSettled(p.Play) {
		return
	}
	if p.state == Errored {
		p.log.Debug("play ignored, instance errored")
		return
	}
	if p.err != nil {
		p.notify(events.PlayerError, p.err.Error())
		return
	}
	if p.rewindSrc {
		p.reload()
		if p.whenSettled(p.Play) {
			return
		}
	}

	p.posterDisplayed = false

	if p.paused {
		p.paused = false
		if err := p.methods.play(); err != nil {
			p.log.WithError(err).Warn("backend play")
		}
		if p.propagate {
			p.notify(events.OnPlay, nil)
		}
		if p.firstPlay {
			p.firstPlay = false
			p.notify(events.FirstPlay, nil)
		}
	}

	if p.donePlaying > 0 && p.propagate && p.replayEvents < p.donePlaying {
		p.replayEvents++
		p.notify(events.ReplayEvent, p.replayEvents)
	}

	if start := p.attrs.Start; start > 0 && p.currentTime < start && p.duration > 0 && !p.seeking {
		p.currentTime = start
	}

	p.setState(Playing)
	p.startMonitor()
}

// Pause suspends playback. Pausing a paused instance does nothing.
func (p *EmbedPlayer) Pause() {
	if p.whenSettled(p.Pause) {
		return
	}
	if p.state == Errored || p.paused {
		return
	}

	p.paused = true
	if err := p.methods.pause(); err != nil {
		p.log.WithError(err).Warn("backend pause")
	}
	if p.propagate {
		p.notify(events.OnPause, nil)
	}
	if !p.seeking {
		p.setState(Paused)
	}
}

// Stop pauses, rewinds to the clip start and shows the poster. A stream
// reloaded at a server seek time is reloaded from the start on the next Play.
func (p *EmbedPlayer) Stop() {
	if p.whenSettled(p.Stop) {
		return
	}
	if p.state == Errored {
		return
	}

	if p.propagate {
		p.notify(events.DoStop, nil)
	}

	p.stopMonitor()
	p.cancelSeek()
	if !p.paused {
		p.Pause()
	}

	if err := p.methods.seek(p.startOffset); err != nil && !errors.Is(err, backend.ErrUnsupported) {
		p.log.WithError(err).Warn("rewind")
	}

	if p.serverSeekTime != 0 {
		p.serverSeekTime = 0
		p.rewindSrc = true
	}
	p.currentTime = 0
	p.previousTime = 0
	p.bufferedPercent = 0
	p.posterDisplayed = true
	p.paused = true
	p.seeking = false

	p.updatePlayHead(0)
	p.setState(Stopped)
}

// OnClipDone handles the clip reaching its end: it notifies the host once,
// stops and then either replays or reports the end of playback.
func (p *EmbedPlayer) OnClipDone() {
	if !p.propagate || p.IsStopped() {
		return
	}

	p.donePlaying++
	metrics.ClipsDone.Inc()
	p.log.WithField("count", p.donePlaying).Debug("clip done")

	p.propagate = false
	p.notify(events.Ended, p.donePlaying)
	p.propagate = true

	p.Stop()

	if p.attrs.Loop {
		p.Play()
		return
	}

	p.updatePlayHead(0)
	if !p.attrs.PreviewMode {
		p.notify(events.OnEndedDone, p.id)
	}
}

// SetPropagateEvents enables or suppresses host notifications for play, pause, stop and monitor ticks.
func (p *EmbedPlayer) SetPropagateEvents(propagate bool) {
	p.propagate = propagate
}

// checkPlaybackError surfaces an error the backend raised after loading.
func (p *EmbedPlayer) checkPlaybackError() bool {
	err := p.methods.err()
	if err == nil {
		return false
	}

	p.err = &PlaybackError{Backend: p.binding.descriptor.ID, Err: err}
	p.log.WithError(err).Warn("backend playback error")
	p.stopMonitor()
	p.paused = true
	p.setState(Paused)
	p.notify(events.PlayerError, p.err.Error())
	return true
}

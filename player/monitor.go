package player

import (
	"errors"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/npt"
	"github.com/mwembed/mwembed/util"
	"github.com/samber/mo"
)

// startMonitor arms the monitor loop. Any pending tick is cleared first so at
// most one is ever scheduled.
func (p *EmbedPlayer) startMonitor() {
	p.stopMonitor()
	p.monitorTimer = p.sched.AfterFunc(p.cfg.monitorRate, p.monitor)
}

func (p *EmbedPlayer) stopMonitor() {
	if p.monitorTimer != nil {
		p.monitorTimer.Stop()
		p.monitorTimer = nil
	}
}

// MonitorRunning reports whether a monitor tick is scheduled.
func (p *EmbedPlayer) MonitorRunning() bool {
	return p.monitorTimer != nil
}

// monitor is one tick of the loop keeping the instance in sync with its backend.
func (p *EmbedPlayer) monitor() {
	p.monitorTimer = nil
	metrics.MonitorTicks.Inc()

	if p.checkPlaybackError() {
		return
	}

	// A host script moved the position since the last tick.
	if p.currentTime != p.previousTime && !p.userSlide && !p.seeking &&
		p.duration > 0 && p.currentTime >= p.startOffset && p.currentTime <= p.startOffset+p.duration {
		p.DoSeek((p.currentTime - p.startOffset) / p.duration)
	}

	if t, ok := read(p, CapCurrentTime, p.methods.currentTime); ok {
		if p.supportsURLTimeEncoding() {
			t += p.serverSeekTime
		}
		p.currentTime = t
	}
	p.previousTime = p.currentTime

	if at, ok := p.pauseTime.Get(); ok && p.currentTime >= at && !p.paused {
		p.pauseTime = mo.None[float64]()
		p.Pause()
	}

	p.reconcileVolume()

	if !p.userSlide && !p.seeking && p.duration > 0 {
		p.updatePlayHead((p.currentTime - p.startOffset) / p.duration)
		p.notify(events.StatusUpdate, npt.Short(p.currentTime-p.startOffset)+"/"+npt.Short(p.duration))
	}

	if p.duration > 0 && !p.IsStopped() && !p.seeking {
		if p.passed(p.currentTime, p.startOffset+p.duration) {
			p.OnClipDone()
			return
		}
	}

	p.updateBufferStatus()

	if p.IsStopped() {
		p.stopMonitor()
	} else {
		p.startMonitor()
	}

	if p.propagate {
		p.notify(events.MonitorEvent, p.currentTime)
	}
}

// passed reports whether t is past end.
func (p *EmbedPlayer) passed(t, end float64) bool {
	if p.cfg.inclusiveEnd {
		return t >= end
	}
	return t > end
}

// read calls an accessor. Failures keep the last-known value.
func read[T any](p *EmbedPlayer, name Capability, get func() (T, error)) (T, bool) {
	v, err := get()
	if err == nil {
		return v, true
	}
	if !errors.Is(err, backend.ErrUnsupported) {
		metrics.AccessorFailures.WithLabelValues(string(name)).Inc()
		p.log.WithError(err).WithField("accessor", name).Debug("accessor failed")
	}
	return v, false
}

func (p *EmbedPlayer) updatePlayHead(percent float64) {
	if !util.Finite(percent) {
		return
	}
	p.notify(events.UpdatePlayHeadPercent, util.Clamp(percent, 0, 1))
}

func (p *EmbedPlayer) updateBufferStatus() {
	if b, ok := read(p, CapBuffered, p.methods.buffered); ok {
		p.bufferedPercent = b
	}
	p.bufferedPercent = util.Clamp(p.bufferedPercent, 0, 1)
	p.notify(events.UpdateBufferPercent, p.bufferedPercent)

	if p.bufferedPercent > 0 && !p.bufferStarted {
		p.bufferStarted = true
		p.notify(events.BufferStart, nil)
	}
	if p.bufferedPercent == 1 && !p.bufferEnded {
		p.bufferEnded = true
		p.notify(events.BufferEnd, nil)
	}
}

package player

import (
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/util"
	"github.com/samber/lo"
)

// DoSeek moves playback to percent of the clip, clamped to [0,1], and resumes
// playback shortly after. When the source supports URL time encoding the
// stream is reloaded starting at the target time instead. A newer seek
// replaces the pending resume of an older one.
func (p *EmbedPlayer) DoSeek(percent float64) {
	if p.whenSettled(func() { p.DoSeek(percent) }) {
		return
	}
	if p.state == Errored {
		return
	}

	percent = util.Clamp(percent, 0, 1)
	p.seeking = true
	p.setState(Seeking)
	p.notify(events.Seeking, percent)
	p.updatePlayHead(percent)

	to := p.startOffset + percent*p.duration

	if p.supportsURLTimeEncoding() {
		metrics.Seeks.WithLabelValues("server").Inc()
		if !p.IsStopped() {
			p.Stop()
			p.seeking = true
		}
		p.serverSeekTime = to
		p.currentTime, p.previousTime = to, to
		p.reload()
	} else {
		metrics.Seeks.WithLabelValues("client").Inc()
		if err := p.methods.seek(to); err != nil {
			p.log.WithError(err).WithField("to", to).Warn("seek")
		}
		p.currentTime, p.previousTime = to, to
	}

	p.cancelSeek()
	p.seekTimer = p.sched.AfterFunc(p.cfg.seekResumeDelay, func() {
		p.seekTimer = nil
		p.seeking = false
		p.Play()
	})
}

func (p *EmbedPlayer) cancelSeek() {
	if p.seekTimer != nil {
		p.seekTimer.Stop()
		p.seekTimer = nil
	}
}

// reload hands the selected source to the bound backend again, encoding the
// server seek time in the URL. A backend that can switch sources keeps
// running, even while an earlier reload is still in flight. Commands wait
// until the backend reports back.
func (p *EmbedPlayer) reload() {
	p.rewindSrc = false
	source, ok := p.media.Selected().Get()
	if !ok || p.binding == nil {
		return
	}

	p.reloading = true
	done := func(err error) {
		p.reloading = false
		if err != nil {
			p.fail(err)
			return
		}
		p.drainPending()
	}

	if b := p.binding; lo.Contains(b.installed, CapSwitchSrc) {
		p.switchSrc(b, source.Src(p.serverSeekTime), done)
		return
	}
	p.load(p.binding.descriptor, source.Src(p.serverSeekTime), done)
}

package player

import (
	"math"

	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/util"
)

// SetVolume changes the volume, clamped to [0,1]. A non-zero volume unmutes.
func (p *EmbedPlayer) SetVolume(volume float64, notify bool) {
	volume = util.Clamp(volume, 0, 1)
	p.previousVolume = p.volume
	p.volume = volume

	if volume > 0 && p.muted {
		p.muted = false
		_ = p.methods.setMuted(false)
		p.notify(events.Muted, false)
	}
	if err := p.methods.setVolume(volume); err != nil {
		p.log.WithError(err).Debug("backend volume")
	}
	if notify {
		p.notify(events.VolumeChanged, volume)
	}
}

// ToggleMute mutes or restores the volume from before muting.
func (p *EmbedPlayer) ToggleMute() {
	if p.muted {
		p.muted = false
		if err := p.methods.setMuted(false); err != nil {
			p.volume = p.preMuteVolume
			_ = p.methods.setVolume(p.volume)
		}
	} else {
		p.preMuteVolume = p.volume
		p.muted = true
		if err := p.methods.setMuted(true); err != nil {
			_ = p.methods.setVolume(0)
		}
	}
	p.notify(events.Muted, p.muted)
}

// pushVolume applies the tracked volume and mute state to a freshly loaded backend.
func (p *EmbedPlayer) pushVolume() {
	_ = p.methods.setVolume(p.volume)
	if p.muted {
		if err := p.methods.setMuted(true); err != nil {
			_ = p.methods.setVolume(0)
		}
	}
}

// reconcileVolume adopts volume and mute changes made on the backend itself.
// Backend state is adopted, never toggled.
func (p *EmbedPlayer) reconcileVolume() {
	if v, ok := read(p, CapVolume, p.methods.volume); ok && !p.muted {
		if math.Round(math.Abs(v-p.volume)*100) >= p.cfg.volumeTolerance {
			p.previousVolume = p.volume
			p.volume = util.Clamp(v, 0, 1)
			p.notify(events.VolumeChanged, p.volume)
		}
	}

	if m, ok := read(p, CapMuted, p.methods.muted); ok && m != p.muted {
		if m {
			p.preMuteVolume = p.volume
		}
		p.muted = m
		p.notify(events.Muted, m)
	}
}

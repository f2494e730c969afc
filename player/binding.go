package player

import (
	"fmt"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/metrics"
	"github.com/samber/lo"
)

// Capability names a backend-specific behaviour installed on an instance.
type Capability string

const (
	CapPlay        Capability = "play"
	CapPause       Capability = "pause"
	CapCurrentTime Capability = "currentTime"
	CapSeek        Capability = "setCurrentTime"
	CapVolume      Capability = "volume"
	CapSetVolume   Capability = "setVolume"
	CapMuted       Capability = "muted"
	CapSetMuted    Capability = "setMuted"
	CapBuffered    Capability = "buffered"
	CapDuration    Capability = "duration"
	CapSwitchSrc   Capability = "switchSrc"
	CapError       Capability = "error"
	CapClose       Capability = "close"
)

// methods is the capability table the lifecycle dispatches through.
type methods struct {
	play        func() error
	pause       func() error
	currentTime func() (float64, error)
	seek        func(float64) error
	volume      func() (float64, error)
	setVolume   func(float64) error
	muted       func() (bool, error)
	setMuted    func(bool) error
	buffered    func() (float64, error)
	duration    func() (float64, error)
	switchSrc   func(string, func(error))
	err         func() error
	close       func() error
}

// baseMethods are in place while no backend provides a capability. Getters
// report ErrUnsupported so callers keep their last-known values.
func (p *EmbedPlayer) baseMethods() methods {
	return methods{
		play:        func() error { return nil },
		pause:       func() error { return nil },
		currentTime: func() (float64, error) { return 0, backend.ErrUnsupported },
		seek:        func(float64) error { return backend.ErrUnsupported },
		volume:      func() (float64, error) { return 0, backend.ErrUnsupported },
		setVolume:   func(float64) error { return backend.ErrUnsupported },
		muted:       func() (bool, error) { return false, backend.ErrUnsupported },
		setMuted:    func(bool) error { return backend.ErrUnsupported },
		buffered:    func() (float64, error) { return 0, backend.ErrUnsupported },
		duration:    func() (float64, error) { return 0, backend.ErrUnsupported },
		switchSrc: func(_ string, done func(error)) {
			p.sched.Post(func() { done(backend.ErrUnsupported) })
		},
		err:   func() error { return nil },
		close: func() error { return nil },
	}
}

type binding struct {
	descriptor backend.Descriptor
	adapter    backend.Adapter
	installed  []Capability
	token      uint64
	loaded     bool
}

// install copies every capability a implements into the table and returns their names.
func (p *EmbedPlayer) install(a backend.Adapter) []Capability {
	var installed []Capability
	m := &p.methods

	if v, ok := a.(backend.Player); ok {
		m.play, m.pause = v.Play, v.Pause
		installed = append(installed, CapPlay, CapPause)
	}
	if v, ok := a.(backend.TimeGetter); ok {
		m.currentTime = v.CurrentTime
		installed = append(installed, CapCurrentTime)
	}
	if v, ok := a.(backend.Seeker); ok {
		m.seek = v.SetCurrentTime
		installed = append(installed, CapSeek)
	}
	if v, ok := a.(backend.VolumeGetter); ok {
		m.volume = v.Volume
		installed = append(installed, CapVolume)
	}
	if v, ok := a.(backend.VolumeSetter); ok {
		m.setVolume = v.SetVolume
		installed = append(installed, CapSetVolume)
	}
	if v, ok := a.(backend.MuteGetter); ok {
		m.muted = v.Muted
		installed = append(installed, CapMuted)
	}
	if v, ok := a.(backend.MuteSetter); ok {
		m.setMuted = v.SetMuted
		installed = append(installed, CapSetMuted)
	}
	if v, ok := a.(backend.BufferReporter); ok {
		m.buffered = v.Buffered
		installed = append(installed, CapBuffered)
	}
	if v, ok := a.(backend.DurationGetter); ok {
		m.duration = v.Duration
		installed = append(installed, CapDuration)
	}
	if v, ok := a.(backend.SourceSwitcher); ok {
		m.switchSrc = v.SwitchSrc
		installed = append(installed, CapSwitchSrc)
	}
	if v, ok := a.(backend.ErrorReporter); ok {
		m.err = v.Err
		installed = append(installed, CapError)
	}
	if v, ok := a.(backend.Closer); ok {
		m.close = v.Close
		installed = append(installed, CapClose)
	}

	return installed
}

// uninstall restores the base behaviour of every capability the bound backend installed.
func (p *EmbedPlayer) uninstall() {
	if p.binding == nil {
		return
	}

	base := p.baseMethods()
	m := &p.methods
	for _, c := range p.binding.installed {
		switch c {
		case CapPlay:
			m.play = base.play
		case CapPause:
			m.pause = base.pause
		case CapCurrentTime:
			m.currentTime = base.currentTime
		case CapSeek:
			m.seek = base.seek
		case CapVolume:
			m.volume = base.volume
		case CapSetVolume:
			m.setVolume = base.setVolume
		case CapMuted:
			m.muted = base.muted
		case CapSetMuted:
			m.setMuted = base.setMuted
		case CapBuffered:
			m.buffered = base.buffered
		case CapDuration:
			m.duration = base.duration
		case CapSwitchSrc:
			m.switchSrc = base.switchSrc
		case CapError:
			m.err = base.err
		case CapClose:
			m.close = base.close
		}
	}
	p.binding.installed = nil
}

// Installed returns the capabilities the bound backend provides.
func (p *EmbedPlayer) Installed() []Capability {
	if p.binding == nil {
		return nil
	}
	return append([]Capability(nil), p.binding.installed...)
}

// Close stops every timer of the instance and releases the bound backend.
// Callbacks still in flight are discarded.
func (p *EmbedPlayer) Close() error {
	p.stopMonitor()
	p.cancelSeek()
	if p.metaTimer != nil {
		p.metaTimer.Stop()
		p.metaTimer = nil
	}
	p.epoch++
	p.pending = nil

	if p.binding == nil {
		return nil
	}
	err := p.methods.close()
	p.uninstall()
	p.binding = nil
	return err
}

// bind replaces the current backend with a fresh adapter of d.
func (p *EmbedPlayer) bind(d backend.Descriptor) {
	if p.binding != nil {
		previous := p.binding.descriptor.ID
		if err := p.methods.close(); err != nil {
			p.log.WithError(err).WithField("backend", previous).Warn("closing backend")
		}
		p.uninstall()
		metrics.BackendSwaps.Inc()
		p.log.WithField("from", previous).WithField("to", d.ID).Debug("swapping backend")
	}

	adapter := d.New(p.sched)
	p.loadSeq++
	p.binding = &binding{
		descriptor: d,
		adapter:    adapter,
		token:      p.loadSeq,
	}
	p.binding.installed = p.install(adapter)
}

// load hands src to a backend of kind d. A loaded backend of the same kind that
// can switch sources keeps running; anything else is rebound. Callbacks from
// superseded loads are discarded.
func (p *EmbedPlayer) load(d backend.Descriptor, src string, done func(error)) {
	if b := p.binding; b != nil && b.loaded && b.descriptor.ID == d.ID && lo.Contains(b.installed, CapSwitchSrc) {
		p.switchSrc(b, src, done)
		return
	}

	p.bind(d)
	p.binding.adapter.Load(src, p.guard(p.binding.token, d, done))
}

// switchSrc replaces the media of the bound backend in place. Only the latest switch reports back.
func (p *EmbedPlayer) switchSrc(b *binding, src string, done func(error)) {
	p.loadSeq++
	b.token = p.loadSeq
	b.loaded = false
	p.methods.switchSrc(src, p.guard(b.token, b.descriptor, done))
}

func (p *EmbedPlayer) guard(token uint64, d backend.Descriptor, done func(error)) func(error) {
	return func(err error) {
		if p.binding == nil || p.binding.token != token {
			p.log.WithField("backend", d.ID).Debug("discarding stale backend callback")
			return
		}

		status := "ok"
		if err != nil {
			status = "failed"
			err = fmt.Errorf("%w: %s: %w", ErrBackendLoad, d.ID, err)
		} else {
			p.binding.loaded = true
		}
		metrics.BackendLoads.WithLabelValues(d.ID, status).Inc()
		done(err)
	}
}

// SelectPlayer swaps the bound backend for the one registered under id and
// reloads the selected source. Selecting the bound backend is a no-op. An
// errored instance only recovers through ChangeMedia.
func (p *EmbedPlayer) SelectPlayer(id string) error {
	if p.state == Errored {
		return fmt.Errorf("%w: select %s: %w", ErrErrored, id, p.err)
	}
	if b := p.binding; b != nil && b.descriptor.ID == id {
		return nil
	}

	d, ok := p.registry.Get(id)
	if !ok {
		return fmt.Errorf("unknown backend %q, did you mean %q?", id, p.registry.Suggest(id))
	}

	source, ok := p.media.Selected().Get()
	if !ok {
		return ErrNoPlayableSource
	}
	if !d.Plays(source.MimeType) {
		return fmt.Errorf("backend %s cannot play %s", d.ID, source.MimeType)
	}

	if p.whenSettled(func() { _ = p.SelectPlayer(id) }) {
		return nil
	}

	resume := p.IsPlaying()
	p.stopMonitor()
	p.cancelSeek()

	p.bind(d)
	p.setState(Loading)
	p.binding.adapter.Load(source.Src(p.serverSeekTime), p.guard(p.binding.token, d, func(err error) {
		if err != nil {
			p.fail(err)
			return
		}
		position := p.currentTime
		p.OnReady("selectPlayer", func() {
			if position > 0 {
				_ = p.methods.seek(position)
				p.currentTime, p.previousTime = position, position
			}
			if resume {
				p.paused = true
				p.Play()
			}
		})
		p.onBackendReady()
	}))
	return nil
}

package player

import (
	"errors"
	"time"

	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/config"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/lookup"
	"github.com/mwembed/mwembed/media"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/target"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// URL time encoding modes.
const (
	URLTimeNone   = "none"
	URLTimeAlways = "always"
	URLTimePlugin = "plugin"
)

// settings are read from the configuration once per instance.
type settings struct {
	monitorRate     time.Duration
	seekResumeDelay time.Duration
	metaTimeout     time.Duration
	waitForMeta     bool
	inclusiveEnd    bool
	urlTimeEncoding string
	volumeTolerance float64
}

func loadSettings() settings {
	return settings{
		monitorRate:     config.Millis(key.MonitorRate),
		seekResumeDelay: config.Millis(key.SeekResumeDelay),
		metaTimeout:     config.Millis(key.WaitForMetaTimeout),
		waitForMeta:     viper.GetBool(key.WaitForMeta),
		inclusiveEnd:    viper.GetBool(key.InclusiveEnd),
		urlTimeEncoding: viper.GetString(key.URLTimeEncoding),
		volumeTolerance: viper.GetFloat64(key.VolumeTolerance),
	}
}

// EmbedPlayer is one media instance: its attributes, candidate sources, the
// bound backend and the playback state the monitor loop keeps in sync.
type EmbedPlayer struct {
	id        string
	target    *target.Element
	overrides Overrides
	attrs     Attributes
	size      Size

	sched    sched.Scheduler
	registry *backend.Registry
	lookup   lookup.Lookup
	surface  events.Surface
	onSettle func(*EmbedPlayer)
	cfg      settings
	log      *logrus.Entry

	state State
	err   error

	media      *media.Element
	candidates []candidate
	binding    *binding
	methods    methods
	features   backend.Features
	loadSeq    uint64
	epoch      uint64
	reloading  bool
	rewindSrc  bool

	// playback
	paused          bool
	posterDisplayed bool
	seeking         bool
	userSlide       bool
	propagate       bool
	firstPlay       bool
	currentTime     float64
	previousTime    float64
	duration        float64
	startOffset     float64
	serverSeekTime  float64
	pauseTime       mo.Option[float64]
	donePlaying     int
	replayEvents    int

	volume         float64
	previousVolume float64
	preMuteVolume  float64
	muted          bool

	bufferedPercent float64
	bufferStarted   bool
	bufferEnded     bool

	monitorTimer sched.Timer
	seekTimer    sched.Timer
	metaTimer    sched.Timer
	metaDone     bool

	readyHooks map[string]func()
	pending    []func()
}

type options struct {
	id       string
	sched    sched.Scheduler
	registry *backend.Registry
	lookup   lookup.Lookup
	surface  events.Surface
	onSettle func(*EmbedPlayer)
}

func newEmbedPlayer(el *target.Element, o Overrides, opts options) *EmbedPlayer {
	p := &EmbedPlayer{
		id:         opts.id,
		target:     el,
		overrides:  o,
		sched:      opts.sched,
		registry:   opts.registry,
		lookup:     opts.lookup,
		surface:    lo.Ternary[events.Surface](opts.surface == nil, events.Discard, opts.surface),
		onSettle:   opts.onSettle,
		cfg:        loadSettings(),
		log:        log.Player(opts.id),
		state:      Initializing,
		media:      media.NewElement(),
		features:   backend.DefaultFeatures(),
		paused:     true,
		propagate:  true,
		firstPlay:  true,
		readyHooks: make(map[string]func()),
	}
	p.methods = p.baseMethods()
	return p
}

// ID returns the instance identifier.
func (p *EmbedPlayer) ID() string { return p.id }

// State returns the lifecycle state.
func (p *EmbedPlayer) State() State { return p.state }

// Err returns the error that moved the instance to Errored, or a declared playback error.
func (p *EmbedPlayer) Err() error { return p.err }

// Attributes returns the resolved attribute record.
func (p *EmbedPlayer) Attributes() Attributes { return p.attrs }

// Size returns the resolved display box.
func (p *EmbedPlayer) Size() Size { return p.size }

// Target returns the placeholder the instance was built from.
func (p *EmbedPlayer) Target() *target.Element { return p.target }

// Media returns the candidate sources.
func (p *EmbedPlayer) Media() *media.Element { return p.media }

// Features returns the capability flags of the bound backend.
func (p *EmbedPlayer) Features() backend.Features { return p.features }

// Backend returns the identifier of the bound backend.
func (p *EmbedPlayer) Backend() mo.Option[string] {
	if p.binding == nil {
		return mo.None[string]()
	}
	return mo.Some(p.binding.descriptor.ID)
}

// CurrentTime returns the last known playback position in seconds.
func (p *EmbedPlayer) CurrentTime() float64 { return p.currentTime }

// Duration returns the clip duration in seconds, zero when unknown.
func (p *EmbedPlayer) Duration() float64 { return p.duration }

// Volume returns the volume in [0,1].
func (p *EmbedPlayer) Volume() float64 { return p.volume }

// Muted reports whether the instance is muted.
func (p *EmbedPlayer) Muted() bool { return p.muted }

// Paused reports the tracked paused flag.
func (p *EmbedPlayer) Paused() bool { return p.paused }

// PosterDisplayed reports whether the poster is shown in place of the media.
func (p *EmbedPlayer) PosterDisplayed() bool { return p.posterDisplayed }

// IsStopped reports whether playback is stopped with the poster shown.
func (p *EmbedPlayer) IsStopped() bool { return p.posterDisplayed }

// IsPlaying reports whether media is playing.
func (p *EmbedPlayer) IsPlaying() bool { return !p.posterDisplayed && !p.paused }

// DonePlayingCount returns how many times the clip played to its end.
func (p *EmbedPlayer) DonePlayingCount() int { return p.donePlaying }

// Seeking reports whether a seek is in flight.
func (p *EmbedPlayer) Seeking() bool { return p.seeking }

// SetCurrentTime moves the tracked position as a host script would. The next
// monitor tick notices the change and seeks the backend.
func (p *EmbedPlayer) SetCurrentTime(seconds float64) {
	p.currentTime = seconds
}

// SetUserSlide marks the scrubber as being dragged; the monitor neither seeks nor moves the playhead meanwhile.
func (p *EmbedPlayer) SetUserSlide(sliding bool) {
	p.userSlide = sliding
}

func (p *EmbedPlayer) setState(s State) {
	if p.state == s {
		return
	}
	p.log.WithFields(logrus.Fields{"from": p.state, "to": s}).Debug("state")
	p.state = s
	metrics.StateTransitions.WithLabelValues(s.String()).Inc()
}

func (p *EmbedPlayer) notify(t events.EventType, value any) {
	p.surface.Notify(events.Event{Type: t, PlayerID: p.id, Value: value})
}

// settle reports the instance to the manager once it reaches Ready or Errored.
func (p *EmbedPlayer) settle() {
	if p.onSettle != nil {
		p.onSettle(p)
	}
}

// fail moves the instance to Errored.
func (p *EmbedPlayer) fail(err error) {
	p.log.WithError(err).Warn("embed failed")
	p.err = err
	p.stopMonitor()
	p.cancelSeek()
	p.pending = nil
	p.setState(Errored)

	if errors.Is(err, ErrNoPlayableSource) {
		p.notify(events.NoSourceError, err.Error())
	} else {
		p.notify(events.PlayerError, err.Error())
	}
	p.settle()
}

// whenSettled queues cmd while the instance is between states. It reports whether cmd was queued.
func (p *EmbedPlayer) whenSettled(cmd func()) bool {
	if !p.reloading && !p.state.Transitional() {
		return false
	}
	p.pending = append(p.pending, cmd)
	return true
}

func (p *EmbedPlayer) drainPending() {
	for len(p.pending) > 0 && !p.reloading && !p.state.Transitional() {
		cmd := p.pending[0]
		p.pending = p.pending[1:]
		cmd()
	}
}

// OnReady registers a one-shot hook run the next time the instance becomes
// Ready. Registering a hook under an existing name replaces it.
func (p *EmbedPlayer) OnReady(name string, hook func()) {
	p.readyHooks[name] = hook
}

func (p *EmbedPlayer) runReadyHooks() {
	names := lo.Keys(p.readyHooks)
	slices.Sort(names)
	hooks := p.readyHooks
	p.readyHooks = make(map[string]func())
	for _, name := range names {
		hooks[name]()
	}
}

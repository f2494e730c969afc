package player

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/mwembed/mwembed/backend"
	"github.com/mwembed/mwembed/events"
	"github.com/mwembed/mwembed/key"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/lookup"
	"github.com/mwembed/mwembed/metrics"
	"github.com/mwembed/mwembed/sched"
	"github.com/mwembed/mwembed/target"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Options configure a Manager.
type Options struct {
	Scheduler sched.Scheduler
	Registry  *backend.Registry

	// Lookup resolves sources for instances that declare a lookup key. Optional.
	Lookup lookup.Lookup

	// Surface receives every instance notification. Defaults to events.Discard.
	Surface events.Surface
}

// Manager registers embed players and tells waiting callers when every
// registered instance is ready to be driven.
type Manager struct {
	opts Options

	players   map[string]*EmbedPlayer
	order     []string
	waiting   []func()
	batch     uuid.UUID
	generated int
}

// NewManager creates a manager.
func NewManager(opts Options) *Manager {
	if opts.Surface == nil {
		opts.Surface = events.Discard
	}
	return &Manager{
		opts:    opts,
		players: make(map[string]*EmbedPlayer),
		batch:   uuid.New(),
	}
}

// Register creates an embed player for el and starts its lifecycle on the next
// scheduler turn. Placeholders without an id get a generated one. Backend
// selection never happens during Register.
func (m *Manager) Register(el *target.Element, o Overrides) (string, error) {
	if el.Generated {
		return "", fmt.Errorf("%w: %s", ErrAlreadyEmbedded, el.ID)
	}

	id := el.ID
	if id == "" {
		id = m.nextID()
		el.ID = id
	}
	if _, exists := m.players[id]; exists {
		return "", fmt.Errorf("duplicate embed player id %q", id)
	}

	p := newEmbedPlayer(el, o, options{
		id:       id,
		sched:    m.opts.Scheduler,
		registry: m.opts.Registry,
		lookup:   m.opts.Lookup,
		surface:  m.opts.Surface,
		onSettle: m.settled,
	})
	el.Generated = true

	m.players[id] = p
	m.order = append(m.order, id)
	metrics.InstancesRegistered.Inc()
	m.log().WithField("player", id).Debug("registered")

	m.opts.Scheduler.Post(p.start)
	return id, nil
}

func (m *Manager) nextID() string {
	prefix := viper.GetString(key.PlaceholderIDPrefix)
	for {
		id := prefix + strconv.Itoa(m.generated)
		m.generated++
		if _, taken := m.players[id]; !taken {
			return id
		}
	}
}

// WhenAllReady runs cb once every registered instance is Ready or Errored.
// When that already holds, cb runs on the next scheduler turn.
func (m *Manager) WhenAllReady(cb func()) {
	m.waiting = append(m.waiting, cb)
	if m.complete() {
		m.opts.Scheduler.Post(m.drain)
	}
}

// Get returns the instance registered under id.
func (m *Manager) Get(id string) (*EmbedPlayer, bool) {
	p, ok := m.players[id]
	return p, ok
}

// Players returns every instance in registration order.
func (m *Manager) Players() []*EmbedPlayer {
	return lo.Map(m.order, func(id string, _ int) *EmbedPlayer { return m.players[id] })
}

// Close releases the backends of every instance.
func (m *Manager) Close() error {
	var errs []error
	for _, p := range m.Players() {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// complete reports whether every registered instance has settled.
func (m *Manager) complete() bool {
	return lo.EveryBy(m.order, func(id string) bool {
		return m.players[id].State().Settled()
	})
}

func (m *Manager) settled(p *EmbedPlayer) {
	m.log().WithFields(logrus.Fields{"player": p.ID(), "state": p.State()}).Debug("instance settled")
	if m.complete() {
		m.drain()
	}
}

// drain runs every waiting callback once, in registration order.
func (m *Manager) drain() {
	if len(m.waiting) == 0 || !m.complete() {
		return
	}

	callbacks := m.waiting
	m.waiting = nil
	metrics.ReadyBatches.Inc()
	m.log().WithField("callbacks", len(callbacks)).Debug("all players ready")
	m.batch = uuid.New()

	for _, cb := range callbacks {
		cb()
	}
}

func (m *Manager) log() *logrus.Entry {
	return log.Player("manager").WithField("batch", m.batch.String())
}

package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/vendordesk/api/internal/enum"
)

const (
	// DefaultArrivalInterval is how often the synthetic feed produces an order.
	DefaultArrivalInterval = 12 * time.Second
	// DefaultArrivalCap stops the synthetic feed once the collection holds this many orders.
	DefaultArrivalCap = 50
)

// Event describes a mutation of the order collection.
type Event struct {
	Type     string
	Orders   []Order
	At       time.Time
	Expanded bool // new state, order.expanded only
}

// Listener receives events after the mutation is visible to readers.
// Listeners are called one at a time, in mutation order, and must not call
// back into the Manager.
type Listener func(Event)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock (tests pass a clockwork.FakeClock).
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithRand sets the random source used by the synthetic feed.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithArrivalInterval sets the synthetic feed period.
func WithArrivalInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithArrivalCap sets the collection size at which the feed stops inserting.
func WithArrivalCap(n int) Option {
	return func(m *Manager) { m.capacity = n }
}

// WithListener registers a listener for change events.
func WithListener(l Listener) Option {
	return func(m *Manager) { m.listeners = append(m.listeners, l) }
}

// WithArrivalLogging logs every synthetic arrival.
func WithArrivalLogging(on bool) Option {
	return func(m *Manager) { m.logArrivals = on }
}

// Manager owns the order collection. Every read returns copies and every
// mutation goes through one of its methods.
type Manager struct {
	mu       sync.Mutex
	orders   []*Order // arrival order, newest synthetic arrival first
	byID     map[string]*Order
	expanded map[string]struct{}
	pending  *BulkConfirmation

	clock       clockwork.Clock
	rng         *rand.Rand
	interval    time.Duration
	capacity    int
	logArrivals bool

	emitMu    sync.Mutex
	listeners []Listener

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates an empty Manager. Call Seed to load initial orders and
// Start to arm the synthetic feed.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		byID:     make(map[string]*Order),
		expanded: make(map[string]struct{}),
		clock:    clockwork.NewRealClock(),
		interval: DefaultArrivalInterval,
		capacity: DefaultArrivalCap,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(uint64(m.clock.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return m
}

// Now returns the manager's notion of the current time.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// Seed appends orders in the given order. The batch is rejected as a whole
// if any order is invalid or reuses an existing id.
func (m *Manager) Seed(orders ...Order) error {
	seen := make(map[string]struct{}, len(orders))
	for i, o := range orders {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("order[%d] %s: %w", i, o.ID, err)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("order[%d] %s: %w", i, o.ID, ErrDuplicateOrder)
		}
		seen[o.ID] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, o := range orders {
		if _, exists := m.byID[o.ID]; exists {
			return fmt.Errorf("order[%d] %s: %w", i, o.ID, ErrDuplicateOrder)
		}
	}
	for _, o := range orders {
		c := o.Clone()
		m.orders = append(m.orders, &c)
		m.byID[c.ID] = &c
	}
	return nil
}

// Get returns a copy of the order with the given id.
func (m *Manager) Get(id string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o.Clone(), nil
}

// Len returns the number of orders in the collection.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// Transition moves an order to target. reason is only used when target is
// CANCELLED; an empty reason falls back to enum.DefaultRejectionReason.
// The order is left untouched on error.
func (m *Manager) Transition(id string, target Status, reason string) (Order, error) {
	m.mu.Lock()

	o, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err := validateStatusTransition(o.Status, target); err != nil {
		m.mu.Unlock()
		return Order{}, fmt.Errorf("order %s: %w", id, err)
	}

	if target == StatusCancelled {
		if reason == "" {
			reason = enum.DefaultRejectionReason
		}
		o.CancellationReason = reason
	}
	o.Status = target
	updated := o.Clone()

	m.unlockAndEmit(Event{Type: enum.EventOrderStatusChanged, Orders: []Order{updated}, At: m.clock.Now()})
	return updated, nil
}

// ToggleExpanded flips whether an order shows its line items. It returns the new state.
func (m *Manager) ToggleExpanded(id string) (bool, error) {
	m.mu.Lock()

	o, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	_, expanded := m.expanded[id]
	if expanded {
		delete(m.expanded, id)
	} else {
		m.expanded[id] = struct{}{}
	}

	m.unlockAndEmit(Event{Type: enum.EventOrderExpanded, Orders: []Order{o.Clone()}, At: m.clock.Now(), Expanded: !expanded})
	return !expanded, nil
}

// IsExpanded reports whether an order currently shows its line items.
func (m *Manager) IsExpanded(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.expanded[id]
	return ok
}

// Expanded returns the ids of every expanded order.
func (m *Manager) Expanded() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]bool, len(m.expanded))
	for id := range m.expanded {
		out[id] = true
	}
	return out
}

// Subscribe registers a listener for change events.
func (m *Manager) Subscribe(l Listener) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// unlockAndEmit releases m.mu and delivers events. emitMu is taken before
// m.mu is released so listeners observe events in mutation order.
func (m *Manager) unlockAndEmit(events ...Event) {
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()

	for _, ev := range events {
		for _, l := range m.listeners {
			l(ev)
		}
	}
}

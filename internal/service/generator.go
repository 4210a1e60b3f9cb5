package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendordesk/api/internal/enum"
)

type menuItem struct {
	name  string
	price decimal.Decimal
}

var arrivalCustomers = []string{
	"Rahul Sharma",
	"Priya Patel",
	"Amit Kumar",
	"Sneha Reddy",
	"Vikram Singh",
	"Ananya Iyer",
	"Karan Mehta",
	"Divya Nair",
}

var arrivalMenu = []menuItem{
	{"Butter Chicken", decimal.NewFromInt(320)},
	{"Paneer Tikka", decimal.NewFromInt(280)},
	{"Masala Dosa", decimal.NewFromInt(150)},
	{"Veg Biryani", decimal.NewFromInt(240)},
	{"Chole Bhature", decimal.NewFromInt(180)},
	{"Cold Coffee", decimal.NewFromInt(120)},
	{"Gulab Jamun", decimal.NewFromInt(90)},
}

var arrivalPayments = []PaymentMethod{PaymentUPI, PaymentCard}

// newOrderID returns a short dashboard-friendly id such as ORD-3F9A1C2B.
func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// SynthesizeArrival prepends one synthetic INCOMING order. It returns false
// without inserting anything once the collection has reached the cap.
func (m *Manager) SynthesizeArrival() (Order, bool) {
	m.mu.Lock()

	if len(m.orders) >= m.capacity {
		m.mu.Unlock()
		return Order{}, false
	}

	item := arrivalMenu[m.rng.IntN(len(arrivalMenu))]
	o := &Order{
		ID:           newOrderID(),
		CustomerName: arrivalCustomers[m.rng.IntN(len(arrivalCustomers))],
		Status:       StatusIncoming,
		Items: []OrderItem{{
			ID:       uuid.NewString(),
			Name:     item.name,
			Quantity: 1,
			Price:    item.price,
		}},
		TotalAmount:   item.price,
		OrderTime:     m.clock.Now(),
		PaymentMethod: arrivalPayments[m.rng.IntN(len(arrivalPayments))],
	}
	for m.byID[o.ID] != nil {
		o.ID = newOrderID()
	}

	m.orders = append([]*Order{o}, m.orders...)
	m.byID[o.ID] = o
	created := o.Clone()

	if m.logArrivals {
		log.Printf("order feed: %s from %s (%s)", created.ID, created.CustomerName, created.Items[0].Name)
	}
	m.unlockAndEmit(Event{Type: enum.EventOrderCreated, Orders: []Order{created}, At: created.OrderTime})
	return created, true
}

// Start arms the synthetic feed. The feed runs until Stop is called or ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.runningLocked() {
		return ErrManagerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := m.clock.NewTicker(m.interval)
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				// A tick racing with cancellation must not insert.
				if ctx.Err() != nil {
					return
				}
				m.SynthesizeArrival()
			}
		}
	}()
	return nil
}

// Stop disarms the synthetic feed and waits for it to exit. Safe to call more than once.
func (m *Manager) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
}

// Running reports whether the synthetic feed is armed. A feed whose parent
// context is done counts as stopped.
func (m *Manager) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.runningLocked()
}

// runningLocked must be called with m.runMu held. It clears the state left
// behind by a feed that exited on its own.
func (m *Manager) runningLocked() bool {
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		m.cancel()
		m.cancel = nil
		m.done = nil
		return false
	default:
		return true
	}
}

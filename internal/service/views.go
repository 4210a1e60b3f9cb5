package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vendordesk/api/internal/enum"
)

// Overview summarizes the collection for the dashboard landing page.
type Overview struct {
	Total            int
	ByStatus         map[Status]int
	Live             int
	Incoming         int
	Scheduled        int
	Rejected         int
	CompletedRevenue decimal.Decimal
}

func isLive(s Status) bool {
	switch s {
	case StatusIncoming, StatusPending, StatusPreparing, StatusReadyForPickup:
		return true
	}
	return false
}

// filter returns copies of the orders matching keep, in collection order.
func (m *Manager) filter(keep func(*Order) bool) []Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Orders returns every order in collection order.
func (m *Manager) Orders() []Order {
	return m.filter(func(*Order) bool { return true })
}

// LiveOrders returns orders that are INCOMING, PENDING, PREPARING or READY_FOR_PICKUP.
func (m *Manager) LiveOrders() []Order {
	return m.filter(func(o *Order) bool { return isLive(o.Status) })
}

// ScheduledOrders returns orders that are SCHEDULED.
func (m *Manager) ScheduledOrders() []Order {
	return m.filter(func(o *Order) bool { return o.Status == StatusScheduled })
}

// RejectedOrders returns orders that are CANCELLED.
func (m *Manager) RejectedOrders() []Order {
	return m.filter(func(o *Order) bool { return o.Status == StatusCancelled })
}

// IncomingOrders returns the INCOMING subset of the live view.
func (m *Manager) IncomingOrders() []Order {
	return m.filter(func(o *Order) bool { return o.Status == StatusIncoming })
}

// View resolves a dashboard view name to its projection.
func (m *Manager) View(name string) ([]Order, error) {
	switch name {
	case "", enum.ViewAll:
		return m.Orders(), nil
	case enum.ViewLive:
		return m.LiveOrders(), nil
	case enum.ViewScheduled:
		return m.ScheduledOrders(), nil
	case enum.ViewRejected:
		return m.RejectedOrders(), nil
	case enum.ViewIncoming:
		return m.IncomingOrders(), nil
	}
	return nil, fmt.Errorf("unknown view %q", name)
}

// Overview counts orders per status and sums revenue from completed orders.
func (m *Manager) Overview() Overview {
	m.mu.Lock()
	defer m.mu.Unlock()

	ov := Overview{
		Total:            len(m.orders),
		ByStatus:         make(map[Status]int, len(AllStatuses)),
		CompletedRevenue: decimal.Zero,
	}
	for _, s := range AllStatuses {
		ov.ByStatus[s] = 0
	}
	for _, o := range m.orders {
		ov.ByStatus[o.Status]++
		if isLive(o.Status) {
			ov.Live++
		}
		if o.Status == StatusCompleted {
			ov.CompletedRevenue = ov.CompletedRevenue.Add(o.TotalAmount)
		}
	}
	ov.Incoming = ov.ByStatus[StatusIncoming]
	ov.Scheduled = ov.ByStatus[StatusScheduled]
	ov.Rejected = ov.ByStatus[StatusCancelled]
	return ov
}

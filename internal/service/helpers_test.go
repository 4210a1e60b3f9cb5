package service

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

// newTestManager creates a Manager on a fake clock with a fixed random source.
func newTestManager(t *testing.T, opts ...Option) (*Manager, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	base := []Option{
		WithClock(clock),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	m := NewManager(append(base, opts...)...)
	t.Cleanup(m.Stop)
	return m, clock
}

// makeOrder returns a valid order with one item of qty x price.
func makeOrder(id string, status Status, qty int32, price int64) Order {
	o := Order{
		ID:           id,
		CustomerName: "Test Customer",
		Status:       status,
		Items: []OrderItem{
			{ID: id + "-1", Name: "Masala Dosa", Quantity: qty, Price: decimal.NewFromInt(price)},
		},
		TotalAmount:   decimal.NewFromInt(int64(qty) * price),
		OrderTime:     testNow.Add(-10 * time.Minute),
		PaymentMethod: PaymentCash,
	}
	switch status {
	case StatusCancelled:
		o.CancellationReason = "Out of stock"
	case StatusScheduled:
		at := testNow.Add(2 * time.Hour)
		o.ScheduledTime = &at
	}
	return o
}

func seedManager(t *testing.T, m *Manager, orders ...Order) {
	t.Helper()
	require.NoError(t, m.Seed(orders...))
}

func ids(orders []Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

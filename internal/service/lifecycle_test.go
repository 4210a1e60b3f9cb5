package service

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendordesk/api/internal/enum"
)

func TestTransitionIncomingToPreparing(t *testing.T) {
	m, _ := newTestManager(t)
	before := makeOrder("ORD-1", StatusIncoming, 2, 150)
	seedManager(t, m, before)

	got, err := m.Transition("ORD-1", StatusPreparing, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPreparing, got.Status)

	stored, err := m.Get("ORD-1")
	require.NoError(t, err)

	want := before
	want.Status = StatusPreparing
	assert.Equal(t, want, stored)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(300)))
	assert.NotContains(t, ids(m.IncomingOrders()), "ORD-1")
}

func TestTransitionInvalidDoesNotMutate(t *testing.T) {
	m, _ := newTestManager(t)
	before := makeOrder("ORD-1", StatusPreparing, 1, 100)
	seedManager(t, m, before)

	_, err := m.Transition("ORD-1", StatusCompleted, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = m.Transition("ORD-1", StatusCancelled, "customer left")
	require.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := m.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, before, stored)
}

func TestTransitionTerminalStatuses(t *testing.T) {
	m, _ := newTestManager(t)
	seedManager(t, m,
		makeOrder("DONE", StatusCompleted, 1, 100),
		makeOrder("GONE", StatusCancelled, 1, 100),
	)

	for _, id := range []string{"DONE", "GONE"} {
		for _, target := range AllStatuses {
			_, err := m.Transition(id, target, "")
			assert.ErrorIsf(t, err, ErrInvalidTransition, "%s -> %s", id, target)
		}
	}
}

func TestTransitionUnknownOrder(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Transition("missing", StatusPreparing, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTransitionCancelReason(t *testing.T) {
	m, _ := newTestManager(t)
	seedManager(t, m,
		makeOrder("A", StatusIncoming, 1, 100),
		makeOrder("B", StatusPending, 1, 100),
	)

	a, err := m.Transition("A", StatusCancelled, "Kitchen closed")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen closed", a.CancellationReason)

	b, err := m.Transition("B", StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, enum.DefaultRejectionReason, b.CancellationReason)
}

func TestTransitionReasonIgnoredUnlessCancelling(t *testing.T) {
	m, _ := newTestManager(t)
	seedManager(t, m, makeOrder("A", StatusIncoming, 1, 100))

	a, err := m.Transition("A", StatusPreparing, "should not stick")
	require.NoError(t, err)
	assert.Empty(t, a.CancellationReason)
}

func TestFullLifecycle(t *testing.T) {
	m, _ := newTestManager(t)
	seedManager(t, m, makeOrder("A", StatusScheduled, 1, 100))

	for _, target := range []Status{StatusPreparing, StatusReadyForPickup, StatusCompleted} {
		_, err := m.Transition("A", target, "")
		require.NoError(t, err, target)
	}

	got, err := m.Get("A")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.ScheduledTime, "scheduled time is kept after leaving SCHEDULED")
}

func TestGetReturnsCopy(t *testing.T) {
	m, _ := newTestManager(t)
	seedManager(t, m, makeOrder("A", StatusIncoming, 1, 100))

	got, err := m.Get("A")
	require.NoError(t, err)
	got.Items[0].Name = "changed"
	got.Status = StatusCompleted

	again, err := m.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "Masala Dosa", again.Items[0].Name)
	assert.Equal(t, StatusIncoming, again.Status)
}

func TestSeedRejectsInvalidBatch(t *testing.T) {
	m, _ := newTestManager(t)

	bad := makeOrder("B", StatusIncoming, 2, 100)
	bad.TotalAmount = decimal.NewFromInt(150)

	err := m.Seed(makeOrder("A", StatusIncoming, 1, 100), bad)
	require.ErrorIs(t, err, ErrTotalMismatch)
	assert.Zero(t, m.Len(), "batch must be all-or-nothing")

	err = m.Seed(makeOrder("A", StatusIncoming, 1, 100), makeOrder("A", StatusPending, 1, 100))
	require.ErrorIs(t, err, ErrDuplicateOrder)

	seedManager(t, m, makeOrder("A", StatusIncoming, 1, 100))
	err = m.Seed(makeOrder("A", StatusIncoming, 1, 100))
	require.ErrorIs(t, err, ErrDuplicateOrder)
	assert.Equal(t, 1, m.Len())
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
		want   error
	}{
		{"ok", func(o *Order) {}, nil},
		{"missing id", func(o *Order) { o.ID = "" }, ErrMissingID},
		{"missing customer", func(o *Order) { o.CustomerName = "" }, ErrMissingCustomer},
		{"bad status", func(o *Order) { o.Status = "LOST" }, ErrInvalidStatus},
		{"bad payment", func(o *Order) { o.PaymentMethod = "CHEQUE" }, ErrInvalidPaymentMethod},
		{"no items", func(o *Order) { o.Items = nil }, ErrEmptyItems},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }, ErrInvalidQuantity},
		{"negative price", func(o *Order) { o.Items[0].Price = decimal.NewFromInt(-1) }, ErrInvalidPrice},
		{"total mismatch", func(o *Order) { o.TotalAmount = decimal.NewFromInt(1) }, ErrTotalMismatch},
		{"sub-cent price", func(o *Order) {
			o.Items[0].Price = decimal.RequireFromString("10.005")
			o.TotalAmount = decimal.RequireFromString("20.01")
		}, ErrInvalidPrecision},
		{"sub-cent total", func(o *Order) {
			o.TotalAmount = decimal.RequireFromString("300.004")
		}, ErrInvalidPrecision},
		{"trailing zeros ok", func(o *Order) {
			o.Items[0].Price = decimal.RequireFromString("150.000")
			o.TotalAmount = decimal.RequireFromString("300.00")
		}, nil},
		{"reason without cancel", func(o *Order) { o.CancellationReason = "x" }, ErrUnexpectedReason},
		{"cancel without reason", func(o *Order) { o.Status = StatusCancelled }, ErrMissingReason},
		{"scheduled without time", func(o *Order) { o.Status = StatusScheduled }, ErrMissingScheduledTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := makeOrder("A", StatusIncoming, 2, 150)
			tt.mutate(&o)
			err := o.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToggleExpanded(t *testing.T) {
	m, _ := newTestManager(t)
	seedManager(t, m, makeOrder("A", StatusIncoming, 1, 100))

	on, err := m.ToggleExpanded("A")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, m.IsExpanded("A"))
	assert.Equal(t, map[string]bool{"A": true}, m.Expanded())

	off, err := m.ToggleExpanded("A")
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, m.IsExpanded("A"))

	got, err := m.Get("A")
	require.NoError(t, err)
	assert.Equal(t, StatusIncoming, got.Status)

	_, err = m.ToggleExpanded("missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListenersReceiveEventsInOrder(t *testing.T) {
	var (
		mu     sync.Mutex
		events []Event
	)
	m, _ := newTestManager(t, WithListener(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}))
	seedManager(t, m, makeOrder("A", StatusIncoming, 1, 100), makeOrder("B", StatusIncoming, 1, 100))

	_, err := m.Transition("A", StatusPreparing, "")
	require.NoError(t, err)
	_, err = m.ToggleExpanded("A")
	require.NoError(t, err)
	_, err = m.BulkTransition(StatusCancelled)
	require.NoError(t, err)
	_, ok := m.SynthesizeArrival()
	require.True(t, ok)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 4)
	assert.Equal(t, enum.EventOrderStatusChanged, events[0].Type)
	assert.Equal(t, enum.EventOrderExpanded, events[1].Type)
	assert.Equal(t, enum.EventOrdersBulk, events[2].Type)
	assert.Equal(t, []string{"B"}, ids(events[2].Orders))
	assert.Equal(t, enum.EventOrderCreated, events[3].Type)
	assert.Equal(t, testNow, events[3].At)
}

func TestFailedTransitionEmitsNothing(t *testing.T) {
	calls := 0
	m, _ := newTestManager(t, WithListener(func(Event) { calls++ }))
	seedManager(t, m, makeOrder("A", StatusCompleted, 1, 100))

	_, err := m.Transition("A", StatusPreparing, "")
	require.Error(t, err)
	_, err = m.Transition("missing", StatusPreparing, "")
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestNowFollowsClock(t *testing.T) {
	m, clock := newTestManager(t)
	clock.Advance(5 * time.Minute)
	assert.Equal(t, testNow.Add(5*time.Minute), m.Now())
}

package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/vendordesk/api/internal/enum"
)

// BulkConfirmation is a bulk action waiting for the operator to confirm it.
// Count is the number of INCOMING orders when the request was made; the
// confirmed action applies to whatever is INCOMING at execution time.
type BulkConfirmation struct {
	ID          uuid.UUID
	Target      Status
	Count       int
	RequestedAt time.Time
}

// BulkResult is the outcome of a bulk transition.
type BulkResult struct {
	Target        Status
	AffectedCount int
	Orders        []Order
}

func validateBulkTarget(target Status) error {
	if target != StatusPreparing && target != StatusCancelled {
		return ErrInvalidBulkTarget
	}
	return nil
}

// RequestBulk opens a confirmation for accepting (PREPARING) or rejecting
// (CANCELLED) every incoming order. Any earlier pending confirmation is replaced.
func (m *Manager) RequestBulk(target Status) (BulkConfirmation, error) {
	if err := validateBulkTarget(target); err != nil {
		return BulkConfirmation{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, o := range m.orders {
		if o.Status == StatusIncoming {
			count++
		}
	}
	c := BulkConfirmation{
		ID:          uuid.New(),
		Target:      target,
		Count:       count,
		RequestedAt: m.clock.Now(),
	}
	m.pending = &c
	return c, nil
}

// PendingBulk returns the confirmation awaiting the operator, if any.
func (m *Manager) PendingBulk() (BulkConfirmation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return BulkConfirmation{}, false
	}
	return *m.pending, true
}

// DismissBulk discards the pending confirmation without applying it.
func (m *Manager) DismissBulk(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return ErrNoPendingBulk
	}
	if m.pending.ID != id {
		return ErrBulkMismatch
	}
	m.pending = nil
	return nil
}

// ConfirmBulk executes the pending confirmation identified by id.
func (m *Manager) ConfirmBulk(id uuid.UUID) (BulkResult, error) {
	m.mu.Lock()

	if m.pending == nil {
		m.mu.Unlock()
		return BulkResult{}, ErrNoPendingBulk
	}
	if m.pending.ID != id {
		m.mu.Unlock()
		return BulkResult{}, ErrBulkMismatch
	}
	target := m.pending.Target
	m.pending = nil

	return m.bulkLocked(target), nil
}

// BulkTransition moves every INCOMING order to target in one step, skipping
// the confirmation workflow.
func (m *Manager) BulkTransition(target Status) (BulkResult, error) {
	if err := validateBulkTarget(target); err != nil {
		return BulkResult{}, err
	}
	m.mu.Lock()
	return m.bulkLocked(target), nil
}

// bulkLocked must be called with m.mu held; it releases it.
func (m *Manager) bulkLocked(target Status) BulkResult {
	res := BulkResult{Target: target}
	for _, o := range m.orders {
		if o.Status != StatusIncoming {
			continue
		}
		o.Status = target
		if target == StatusCancelled {
			o.CancellationReason = enum.BulkRejectionReason
		}
		res.Orders = append(res.Orders, o.Clone())
	}
	res.AffectedCount = len(res.Orders)

	if res.AffectedCount == 0 {
		m.mu.Unlock()
		return res
	}
	m.unlockAndEmit(Event{Type: enum.EventOrdersBulk, Orders: res.Orders, At: m.clock.Now()})
	return res
}

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendordesk/api/internal/enum"
)

// Errors returned by the order lifecycle manager.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidBulkTarget = errors.New("bulk target must be PREPARING or CANCELLED")
	ErrNoPendingBulk     = errors.New("no bulk action awaiting confirmation")
	ErrBulkMismatch      = errors.New("bulk confirmation does not match the pending request")
	ErrDuplicateOrder    = errors.New("order id already exists")
	ErrManagerRunning    = errors.New("order feed already started")
)

// Validation errors returned by Order.Validate.
var (
	ErrMissingID            = errors.New("id is required")
	ErrMissingCustomer      = errors.New("customer_name is required")
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidPrice         = errors.New("price must be >= 0")
	ErrInvalidPrecision     = errors.New("amounts must have at most 2 decimal places")
	ErrTotalMismatch        = errors.New("total_amount does not match item total")
	ErrMissingReason        = errors.New("cancellation_reason is required for CANCELLED orders")
	ErrUnexpectedReason     = errors.New("cancellation_reason is only allowed on CANCELLED orders")
	ErrMissingScheduledTime = errors.New("scheduled_time is required for SCHEDULED orders")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusIncoming       Status = enum.OrderStatusIncoming
	StatusPending        Status = enum.OrderStatusPending
	StatusPreparing      Status = enum.OrderStatusPreparing
	StatusReadyForPickup Status = enum.OrderStatusReadyForPickup
	StatusScheduled      Status = enum.OrderStatusScheduled
	StatusCompleted      Status = enum.OrderStatusCompleted
	StatusCancelled      Status = enum.OrderStatusCancelled
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusIncoming,
	StatusPending,
	StatusPreparing,
	StatusReadyForPickup,
	StatusScheduled,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusIncoming, StatusPending, StatusPreparing, StatusReadyForPickup,
		StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = enum.PaymentMethodCash
	PaymentCard PaymentMethod = enum.PaymentMethodCard
	PaymentUPI  PaymentMethod = enum.PaymentMethodUPI
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// OrderItem is a single line on an order.
type OrderItem struct {
	ID       string
	Name     string
	Quantity int32
	Price    decimal.Decimal // unit price
}

// Subtotal returns price * quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order is a customer purchase tracked through the fulfillment lifecycle.
type Order struct {
	ID                 string
	CustomerName       string
	TotalAmount        decimal.Decimal
	Status             Status
	Items              []OrderItem
	OrderTime          time.Time
	PickupTime         *time.Time
	ScheduledTime      *time.Time
	CancellationReason string
	PaymentMethod      PaymentMethod
}

// ItemsTotal sums the subtotal of every item.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Validate checks the invariants an order must hold before it enters the collection.
func (o Order) Validate() error {
	if o.ID == "" {
		return ErrMissingID
	}
	if o.CustomerName == "" {
		return ErrMissingCustomer
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	if !o.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, o.PaymentMethod)
	}
	if len(o.Items) == 0 {
		return ErrEmptyItems
	}
	for i, it := range o.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidPrice)
		}
		if !isCents(it.Price) {
			return fmt.Errorf("items[%d]: %w: %s", i, ErrInvalidPrecision, it.Price)
		}
	}
	if !isCents(o.TotalAmount) {
		return fmt.Errorf("total_amount: %w: %s", ErrInvalidPrecision, o.TotalAmount)
	}
	if sum := o.ItemsTotal(); !sum.Equal(o.TotalAmount) {
		return fmt.Errorf("%w: total %s, items %s", ErrTotalMismatch, o.TotalAmount.StringFixed(2), sum.StringFixed(2))
	}

	switch {
	case o.Status == StatusCancelled && o.CancellationReason == "":
		return ErrMissingReason
	case o.Status != StatusCancelled && o.CancellationReason != "":
		return ErrUnexpectedReason
	}
	if o.Status == StatusScheduled && o.ScheduledTime == nil {
		return ErrMissingScheduledTime
	}
	return nil
}

// isCents reports whether d fits NUMERIC(12,2) without rounding.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Clone returns a deep copy so callers never share memory with the manager.
func (o Order) Clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.PickupTime != nil {
		t := *o.PickupTime
		c.PickupTime = &t
	}
	if o.ScheduledTime != nil {
		t := *o.ScheduledTime
		c.ScheduledTime = &t
	}
	return c
}

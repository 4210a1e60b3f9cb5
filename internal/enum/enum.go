package enum

// ── Group A: Order lifecycle (closed set, validated by service.ParseStatus) ──

const (
	OrderStatusIncoming       = "INCOMING"
	OrderStatusPending        = "PENDING"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusReadyForPickup = "READY_FOR_PICKUP"
	OrderStatusScheduled      = "SCHEDULED"
	OrderStatusCompleted      = "COMPLETED"
	OrderStatusCancelled      = "CANCELLED"
)

// ── Group B: Payment ──

const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
	PaymentMethodUPI  = "UPI"
)

// ── Group C: Dashboard views ──

const (
	ViewAll       = "all"
	ViewLive      = "live"
	ViewScheduled = "scheduled"
	ViewRejected  = "rejected"
	ViewIncoming  = "incoming"
)

// ── Group D: Event types pushed to dashboards ──

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrdersBulk         = "orders.bulk_transitioned"
	EventOrderExpanded      = "order.expanded"
)

// BulkRejectionReason is recorded on every order cancelled by a bulk reject.
const BulkRejectionReason = "Bulk Rejection by Admin"

// DefaultRejectionReason is used when a single order is cancelled without a reason.
const DefaultRejectionReason = "Rejected by Admin"

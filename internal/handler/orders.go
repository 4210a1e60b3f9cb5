package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vendordesk/api/internal/enum"
	"github.com/vendordesk/api/internal/service"
)

// OrderManager defines the lifecycle operations needed by order handlers.
// Satisfied by *service.Manager; narrow interface for testability.
type OrderManager interface {
	View(name string) ([]service.Order, error)
	Get(id string) (service.Order, error)
	Overview() service.Overview
	Transition(id string, target service.Status, reason string) (service.Order, error)
	ToggleExpanded(id string) (bool, error)
	Expanded() map[string]bool
	RequestBulk(target service.Status) (service.BulkConfirmation, error)
	PendingBulk() (service.BulkConfirmation, bool)
	ConfirmBulk(id uuid.UUID) (service.BulkResult, error)
	DismissBulk(id uuid.UUID) error
	Now() time.Time
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	mgr OrderManager
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(mgr OrderManager) *OrderHandler {
	return &OrderHandler{mgr: mgr}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/overview", h.Overview)

	r.Get("/bulk", h.PendingBulk)
	r.Post("/bulk", h.RequestBulk)
	r.Post("/bulk/{cid}/confirm", h.ConfirmBulk)
	r.Delete("/bulk/{cid}", h.DismissBulk)

	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/expand", h.ToggleExpanded)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=200"`
}

type bulkRequest struct {
	Status string `json:"status" validate:"required,oneof=PREPARING CANCELLED"`
}

type orderResponse struct {
	ID                 string              `json:"id"`
	CustomerName       string              `json:"customer_name"`
	TotalAmount        string              `json:"total_amount"`
	Status             string              `json:"status"`
	NextStatuses       []string            `json:"next_statuses"`
	Items              []orderItemResponse `json:"items"`
	OrderTime          time.Time           `json:"order_time"`
	OrderTimeDisplay   string              `json:"order_time_display"`
	Elapsed            string              `json:"elapsed"`
	PickupTime         *time.Time          `json:"pickup_time"`
	ScheduledTime      *time.Time          `json:"scheduled_time"`
	CancellationReason *string             `json:"cancellation_reason"`
	PaymentMethod      string              `json:"payment_method"`
	Expanded           *bool               `json:"expanded,omitempty"`
}

type orderItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

// orderListResponse wraps a view with its name and size.
type orderListResponse struct {
	View   string          `json:"view"`
	Count  int             `json:"count"`
	Orders []orderResponse `json:"orders"`
}

type overviewResponse struct {
	Total            int            `json:"total"`
	Live             int            `json:"live"`
	Incoming         int            `json:"incoming"`
	Scheduled        int            `json:"scheduled"`
	Rejected         int            `json:"rejected"`
	ByStatus         map[string]int `json:"by_status"`
	CompletedRevenue string         `json:"completed_revenue"`
}

type bulkConfirmationResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	Count       int       `json:"count"`
	RequestedAt time.Time `json:"requested_at"`
}

type bulkResultResponse struct {
	Status        string          `json:"status"`
	AffectedCount int             `json:"affected_count"`
	Orders        []orderResponse `json:"orders"`
}

type expandResponse struct {
	ID       string `json:"id"`
	Expanded bool   `json:"expanded"`
}

// --- Handlers ---

// List handles GET /orders?view=all|live|scheduled|rejected|incoming.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = enum.ViewAll
	}

	orders, err := h.mgr.View(view)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view"})
		return
	}

	now := h.mgr.Now()
	expanded := h.mgr.Expanded()
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, now)
		e := expanded[o.ID]
		resp[i].Expanded = &e
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		View:   view,
		Count:  len(resp),
		Orders: resp,
	})
}

// Overview handles GET /orders/overview.
func (h *OrderHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov := h.mgr.Overview()

	byStatus := make(map[string]int, len(ov.ByStatus))
	for s, n := range ov.ByStatus {
		byStatus[string(s)] = n
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		Total:            ov.Total,
		Live:             ov.Live,
		Incoming:         ov.Incoming,
		Scheduled:        ov.Scheduled,
		Rejected:         ov.Rejected,
		ByStatus:         byStatus,
		CompletedRevenue: ov.CompletedRevenue.StringFixed(2),
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.mgr.Get(id)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}

	resp := toOrderResponse(order, h.mgr.Now())
	e := h.mgr.Expanded()[id]
	resp.Expanded = &e
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := validateRequest(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	target, err := service.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	updated, err := h.mgr.Transition(id, target, req.Reason)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(updated, h.mgr.Now()))
}

// ToggleExpanded handles POST /orders/{id}/expand.
func (h *OrderHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	expanded, err := h.mgr.ToggleExpanded(id)
	if err != nil {
		writeServiceError(w, "toggle expanded", err)
		return
	}

	writeJSON(w, http.StatusOK, expandResponse{ID: id, Expanded: expanded})
}

// PendingBulk handles GET /orders/bulk.
func (h *OrderHandler) PendingBulk(w http.ResponseWriter, r *http.Request) {
	c, ok := h.mgr.PendingBulk()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": service.ErrNoPendingBulk.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toBulkConfirmationResponse(c))
}

// RequestBulk handles POST /orders/bulk. It does not change any order; the
// returned confirmation must be confirmed through /orders/bulk/{cid}/confirm.
func (h *OrderHandler) RequestBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if msg := validateRequest(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	c, err := h.mgr.RequestBulk(service.Status(req.Status))
	if err != nil {
		writeServiceError(w, "request bulk", err)
		return
	}

	writeJSON(w, http.StatusCreated, toBulkConfirmationResponse(c))
}

// ConfirmBulk handles POST /orders/bulk/{cid}/confirm.
func (h *OrderHandler) ConfirmBulk(w http.ResponseWriter, r *http.Request) {
	cid, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid confirmation ID"})
		return
	}

	res, err := h.mgr.ConfirmBulk(cid)
	if err != nil {
		writeServiceError(w, "confirm bulk", err)
		return
	}

	now := h.mgr.Now()
	orders := make([]orderResponse, len(res.Orders))
	for i, o := range res.Orders {
		orders[i] = toOrderResponse(o, now)
	}

	writeJSON(w, http.StatusOK, bulkResultResponse{
		Status:        string(res.Target),
		AffectedCount: res.AffectedCount,
		Orders:        orders,
	})
}

// DismissBulk handles DELETE /orders/bulk/{cid}.
func (h *OrderHandler) DismissBulk(w http.ResponseWriter, r *http.Request) {
	cid, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid confirmation ID"})
		return
	}

	if err := h.mgr.DismissBulk(cid); err != nil {
		writeServiceError(w, "dismiss bulk", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// writeServiceError maps lifecycle errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": transitionMessage(err)})
	case errors.Is(err, service.ErrNoPendingBulk):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrBulkMismatch):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidBulkTarget), errors.Is(err, service.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func transitionMessage(err error) string {
	var te *service.TransitionError
	if errors.As(err, &te) {
		return te.Error()
	}
	return service.ErrInvalidTransition.Error()
}

func toOrderResponse(o service.Order, now time.Time) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		CustomerName:     o.CustomerName,
		TotalAmount:      o.TotalAmount.StringFixed(2),
		Status:           string(o.Status),
		OrderTime:        o.OrderTime,
		OrderTimeDisplay: o.OrderTime.Format("3:04 PM"),
		Elapsed:          service.Elapsed(o.OrderTime, now),
		PickupTime:       o.PickupTime,
		ScheduledTime:    o.ScheduledTime,
		PaymentMethod:    string(o.PaymentMethod),
	}

	if o.CancellationReason != "" {
		reason := o.CancellationReason
		resp.CancellationReason = &reason
	}

	next := service.NextStatuses(o.Status)
	resp.NextStatuses = make([]string, len(next))
	for i, s := range next {
		resp.NextStatuses[i] = string(s)
	}

	resp.Items = make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		resp.Items[i] = orderItemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Subtotal: it.Subtotal().StringFixed(2),
		}
	}
	return resp
}

func toBulkConfirmationResponse(c service.BulkConfirmation) bulkConfirmationResponse {
	return bulkConfirmationResponse{
		ID:          c.ID,
		Status:      string(c.Target),
		Count:       c.Count,
		RequestedAt: c.RequestedAt,
	}
}

// Package orders exposes order creation and lifecycle transitions over HTTP.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/models"
	orderssm "github.com/spinshop/record-store-core/pkg/orders"
	"github.com/spinshop/record-store-core/pkg/storage"
)

const defaultListLimit = 50

// StateMachine is the slice of the order state machine the handlers call.
type StateMachine interface {
	CreateOrder(ctx context.Context, actorID string, lines []orderssm.NewLine) (*models.Order, error)
	Advance(ctx context.Context, orderID string, next models.OrderStatus, actorID string) error
	Cancel(ctx context.Context, orderID, reason, actorID string) error
	Refund(ctx context.Context, orderID, reason, actorID string) error
}

// Handler holds the dependencies for order-related handlers.
type Handler struct {
	Machine StateMachine
	Store   storage.OrderReader
}

// New creates a Handler.
func New(machine StateMachine, store storage.OrderReader) *Handler {
	return &Handler{Machine: machine, Store: store}
}

// CreateOrder creates a pending order, reserving stock for every line.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.NewOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	lines := make([]orderssm.NewLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, orderssm.NewLine{VariantID: line.VariantId, Quantity: line.Quantity})
	}

	order, err := h.Machine.CreateOrder(r.Context(), req.ActorId, lines)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiOrder(order))
}

// GetOrder returns one order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Store.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiOrder(order))
}

// ListOrders returns up to limit orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	orders, err := h.Store.ListOrders(r.Context(), int32(limit))
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiOrders := make([]*api.Order, len(orders))
	for i := range orders {
		apiOrders[i] = mapping.ToApiOrder(&orders[i])
	}

	respond.JSON(w, http.StatusOK, apiOrders)
}

// AdvanceOrder applies a forward fulfillment transition.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req api.AdvanceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := h.Machine.Advance(r.Context(), orderID, models.OrderStatus(req.Status), req.ActorId); err != nil {
		respond.Error(w, err)
		return
	}

	h.respondWithOrder(w, r, orderID)
}

// CancelOrder cancels an order, releasing its reservations.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req api.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := h.Machine.Cancel(r.Context(), orderID, req.Reason, req.ActorId); err != nil {
		respond.Error(w, err)
		return
	}

	h.respondWithOrder(w, r, orderID)
}

// RefundOrder refunds an order. Inventory is untouched; restocking returned
// units is a separate inventory operation.
func (h *Handler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req api.RefundOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := h.Machine.Refund(r.Context(), orderID, req.Reason, req.ActorId); err != nil {
		respond.Error(w, err)
		return
	}

	h.respondWithOrder(w, r, orderID)
}

func (h *Handler) respondWithOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	order, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiOrder(order))
}

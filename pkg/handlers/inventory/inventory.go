// Package inventory exposes the stock ledger over HTTP.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/undo"
)

const defaultMovementLimit = 50

// Ledger is the slice of the stock ledger the handlers call.
type Ledger interface {
	ReceiveStock(ctx context.Context, variantID string, quantity int64, note, operatorID, requestID string) (*models.StockMovement, *models.InventoryRecord, error)
	Adjust(ctx context.Context, variantID string, delta int64, reason, operatorID string) (*models.StockMovement, *models.InventoryRecord, error)
	RestockReturn(ctx context.Context, variantID string, quantity int64, orderID, operatorID string) (*models.StockMovement, *models.InventoryRecord, error)
}

// TokenIssuer issues undo tokens for receipts.
type TokenIssuer interface {
	IssueToken(ctx context.Context, actionType string, payload any, actorID string, ttl time.Duration) (*models.UndoToken, error)
}

// Handler holds the dependencies for inventory-related handlers.
type Handler struct {
	Ledger Ledger
	Store  storage.InventoryReader
	Undo   TokenIssuer
}

// New creates a Handler.
func New(ledger Ledger, store storage.InventoryReader, issuer TokenIssuer) *Handler {
	return &Handler{Ledger: ledger, Store: store, Undo: issuer}
}

// ReceiveStock records incoming stock for a variant and issues an undo token
// for the receipt.
func (h *Handler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantId")

	var req api.ReceiveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	movement, record, err := h.Ledger.ReceiveStock(r.Context(), variantID, req.Quantity, req.Note, req.OperatorId, req.RequestId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := api.ReceiveStockResponse{
		Movement:  mapping.ToApiMovement(movement),
		Inventory: mapping.ToApiInventory(record),
	}

	payload := undo.StockReceiptPayload{
		VariantID:  variantID,
		Quantity:   movement.Delta,
		MovementID: movement.ID,
	}
	token, err := h.Undo.IssueToken(r.Context(), undo.ActionStockReceipt, payload, req.OperatorId, 0)
	if err != nil {
		// The receipt stands; it just has no one-shot undo.
		slog.Error("receipt recorded but undo token not issued", "movement_id", movement.ID, "error", err)
	} else {
		resp.UndoToken = mapping.ToApiUndoToken(token)
	}

	respond.JSON(w, http.StatusCreated, resp)
}

// AdjustStock applies a signed manual correction to a variant's on-hand count.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantId")

	var req api.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	movement, record, err := h.Ledger.Adjust(r.Context(), variantID, req.Delta, req.Reason, req.OperatorId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, api.MovementResponse{
		Movement:  mapping.ToApiMovement(movement),
		Inventory: mapping.ToApiInventory(record),
	})
}

// ReturnStock restocks units that came back from a refunded order.
func (h *Handler) ReturnStock(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantId")

	var req api.ReturnStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	movement, record, err := h.Ledger.RestockReturn(r.Context(), variantID, req.Quantity, req.OrderId, req.OperatorId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, api.MovementResponse{
		Movement:  mapping.ToApiMovement(movement),
		Inventory: mapping.ToApiInventory(record),
	})
}

// GetInventory returns a variant's current stock position.
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantId")

	record, err := h.Store.GetInventory(r.Context(), variantID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiInventory(record))
}

// ListMovements returns a variant's movement history, most recent first.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantId")

	limit := defaultMovementLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	movements, err := h.Store.ListMovements(r.Context(), variantID, int32(limit))
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiMovements := make([]*api.StockMovement, len(movements))
	for i := range movements {
		apiMovements[i] = mapping.ToApiMovement(&movements[i])
	}

	respond.JSON(w, http.StatusOK, apiMovements)
}

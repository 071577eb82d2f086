// Package bulkops exposes bulk order and variant operations over HTTP.
package bulkops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/bulk"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/models"
)

// Coordinator is the slice of the bulk coordinator the handlers call.
type Coordinator interface {
	ApplyBulkStatus(ctx context.Context, orderIDs []string, target models.OrderStatus, reason, actorID string) (*bulk.Result, error)
	ApplyBulkActivation(ctx context.Context, variantIDs []string, active bool, actorID string) (*bulk.Result, error)
}

// Handler holds the dependencies for bulk operation handlers.
type Handler struct {
	Coordinator Coordinator
}

// New creates a Handler.
func New(coordinator Coordinator) *Handler {
	return &Handler{Coordinator: coordinator}
}

// BulkStatus applies one status change across many orders. Per-item failures
// come back in the result body, not as an HTTP error.
func (h *Handler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req api.BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := h.Coordinator.ApplyBulkStatus(r.Context(), req.OrderIds, models.OrderStatus(req.Status), req.Reason, req.ActorId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toApiResult(result))
}

// BulkActivation sets the active flag across many variants.
func (h *Handler) BulkActivation(w http.ResponseWriter, r *http.Request) {
	var req api.BulkActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := h.Coordinator.ApplyBulkActivation(r.Context(), req.VariantIds, req.Active, req.ActorId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toApiResult(result))
}

func toApiResult(result *bulk.Result) *api.BulkResult {
	out := &api.BulkResult{
		Succeeded: result.Succeeded,
		UndoToken: mapping.ToApiUndoToken(result.UndoToken),
	}
	for _, failure := range result.Failed {
		out.Failed = append(out.Failed, api.ItemFailure{Id: failure.ID, Error: failure.Error})
	}
	return out
}

// Package variants exposes the variant catalog over HTTP.
package variants

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// EventVariantActivation is the audit event type for single-variant
// active-flag changes.
const EventVariantActivation = "variant.activation"

// Handler holds the dependencies for variant-related handlers.
type Handler struct {
	Store storage.VariantStore
}

// New creates a Handler.
func New(store storage.VariantStore) *Handler {
	return &Handler{Store: store}
}

// CreateVariant creates a variant with an empty inventory record.
func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req api.NewVariant
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.SKU == "" || req.Title == "" {
		respond.BadRequest(w, "sku and title are required")
		return
	}
	if req.PriceCents < 0 {
		respond.BadRequest(w, "price_cents must not be negative")
		return
	}

	variant := mapping.ToDomainNewVariant(&req)
	variant.ID = uuid.New().String()
	variant.Active = true
	variant.CreatedAt = time.Now()

	if _, err := h.Store.CreateVariant(r.Context(), variant, req.LowStockThreshold); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiVariant(variant))
}

// GetVariant returns one variant.
func (h *Handler) GetVariant(w http.ResponseWriter, r *http.Request) {
	variant, err := h.Store.GetVariant(r.Context(), chi.URLParam(r, "variantId"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiVariant(variant))
}

// ListVariants returns the catalog.
func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.Store.ListVariants(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiVariants := make([]*api.Variant, len(variants))
	for i := range variants {
		apiVariants[i] = mapping.ToApiVariant(&variants[i])
	}

	respond.JSON(w, http.StatusOK, apiVariants)
}

// SetActive sets a variant's active flag.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantId")

	var req api.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	actorID := req.ActorId
	if actorID == "" {
		actorID = models.SystemActor
	}
	audit := &models.AuditEntry{
		ID:          uuid.New().String(),
		ActorID:     actorID,
		EventType:   EventVariantActivation,
		SubjectType: "variant",
		SubjectID:   variantID,
		After:       fmt.Sprintf("active=%t", req.Active),
		CreatedAt:   time.Now(),
	}
	if err := h.Store.SetVariantActive(r.Context(), variantID, req.Active, audit); err != nil {
		respond.Error(w, err)
		return
	}

	variant, err := h.Store.GetVariant(r.Context(), variantID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiVariant(variant))
}

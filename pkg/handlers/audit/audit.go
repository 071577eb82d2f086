// Package audit exposes the audit log over HTTP.
package audit

import (
	"net/http"
	"strconv"

	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/storage"
)

const defaultListLimit = 100

// Handler holds the dependencies for audit log handlers.
type Handler struct {
	Store storage.AuditReader
}

// New creates a Handler.
func New(store storage.AuditReader) *Handler {
	return &Handler{Store: store}
}

// ListEntries returns the most recent audit entries, newest first.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.Store.ListAuditEntries(r.Context(), int32(limit))
	if err != nil {
		respond.Error(w, err)
		return
	}

	apiEntries := make([]*api.AuditEntry, len(entries))
	for i := range entries {
		apiEntries[i] = mapping.ToApiAuditEntry(&entries[i])
	}

	respond.JSON(w, http.StatusOK, apiEntries)
}

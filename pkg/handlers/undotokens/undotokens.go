// Package undotokens exposes undo token consumption and inspection over HTTP.
package undotokens

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/handlers/respond"
	"github.com/spinshop/record-store-core/pkg/mapping"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// Manager is the slice of the undo manager the handlers call.
type Manager interface {
	Undo(ctx context.Context, tokenID, actorID string) (string, error)
}

// Handler holds the dependencies for undo-related handlers.
type Handler struct {
	Manager Manager
	Tokens  storage.UndoTokenStore
}

// New creates a Handler.
func New(manager Manager, tokens storage.UndoTokenStore) *Handler {
	return &Handler{Manager: manager, Tokens: tokens}
}

// Undo consumes a token and applies its compensation.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "tokenId")

	var req api.UndoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	summary, err := h.Manager.Undo(r.Context(), tokenID, req.ActorId)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, api.UndoResponse{TokenId: tokenID, Summary: summary})
}

// GetToken returns a token's metadata, without its payload.
func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.Tokens.GetUndoToken(r.Context(), chi.URLParam(r, "tokenId"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiUndoToken(token))
}

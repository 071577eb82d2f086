package storage

import (
	"context"
	"time"

	"github.com/spinshop/record-store-core/pkg/models"
)

// UndoTokenStore defines the interface for persisting one-shot undo tokens.
type UndoTokenStore interface {
	// PutUndoToken persists a freshly issued token.
	PutUndoToken(ctx context.Context, token *models.UndoToken) error

	// GetUndoToken retrieves a token by its ID.
	GetUndoToken(ctx context.Context, tokenID string) (*models.UndoToken, error)

	// MarkTokenUndone consumes a token. The write is conditional on the token
	// not having been consumed before; a second consume returns ErrAlreadyUndone.
	MarkTokenUndone(ctx context.Context, tokenID string, undoneAt time.Time) error

	// PurgeExpiredUndoTokens deletes up to limit expired tokens and returns the
	// number removed. Storage hygiene only; correctness never depends on it.
	PurgeExpiredUndoTokens(ctx context.Context, now time.Time, limit int32) (int, error)
}

// Package undo issues and consumes one-shot undo tokens for reversible
// actions. A token carries everything needed to compensate the action it was
// issued for; consuming the token and applying the compensation are separate
// steps, with consumption first so a token can never pay out twice.
package undo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// Action types with a registered compensation.
const (
	ActionStockReceipt   = "stock_receipt"
	ActionBulkStatus     = "bulk_status"
	ActionBulkActivation = "bulk_activation"
)

// DefaultTTL is how long a token stays consumable after issuance.
const DefaultTTL = 30 * time.Minute

// Audit event types emitted by compensations.
const (
	EventReceiptUndone    = "undo.stock_receipt"
	EventBulkStatusUndone = "undo.bulk_status"
	EventActivationUndone = "undo.bulk_activation"
)

// StockReceiptPayload reverses a stock receipt with an opposite-signed
// adjustment. The original movement is never deleted.
type StockReceiptPayload struct {
	VariantID  string `json:"variant_id"`
	Quantity   int64  `json:"quantity"`
	MovementID string `json:"movement_id"`
}

// PriorOrderStatus is one order's status before a bulk status change.
type PriorOrderStatus struct {
	OrderID     string             `json:"order_id"`
	PriorStatus models.OrderStatus `json:"prior_status"`
}

// BulkStatusPayload restores each order to its pre-bulk status. Target is the
// status the bulk operation set; the restore pins on it so orders that moved
// again since are skipped, not clobbered.
type BulkStatusPayload struct {
	Target models.OrderStatus `json:"target"`
	Orders []PriorOrderStatus `json:"orders"`
}

// PriorVariantActive is one variant's active flag before a bulk activation change.
type PriorVariantActive struct {
	VariantID string `json:"variant_id"`
	Active    bool   `json:"active"`
}

// BulkActivationPayload restores each variant's prior active flag.
type BulkActivationPayload struct {
	Variants []PriorVariantActive `json:"variants"`
}

// StockAdjuster is the slice of the ledger used to reverse receipts.
type StockAdjuster interface {
	Adjust(ctx context.Context, variantID string, delta int64, reason, operatorID string) (*models.StockMovement, *models.InventoryRecord, error)
}

// Clock lets tests pin time. Nil means time.Now.
type Clock func() time.Time

// Manager issues tokens when a reversible action completes and consumes them
// on demand.
type Manager struct {
	Tokens   storage.UndoTokenStore
	Ledger   StockAdjuster
	Orders   storage.OrderStore
	Variants storage.VariantStore
	Clock    Clock
	TTL      time.Duration
}

// New creates a Manager with the default token TTL.
func New(tokens storage.UndoTokenStore, ledger StockAdjuster, orders storage.OrderStore, variants storage.VariantStore) *Manager {
	return &Manager{
		Tokens:   tokens,
		Ledger:   ledger,
		Orders:   orders,
		Variants: variants,
		TTL:      DefaultTTL,
	}
}

func (m *Manager) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// IssueToken persists a token for a completed action. A zero ttl uses the
// manager's default.
func (m *Manager) IssueToken(ctx context.Context, actionType string, payload any, actorID string, ttl time.Duration) (*models.UndoToken, error) {
	switch actionType {
	case ActionStockReceipt, ActionBulkStatus, ActionBulkActivation:
	default:
		return nil, fmt.Errorf("no compensation registered for action type %q: %w", actionType, storage.ErrValidation)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode undo payload: %w", err)
	}
	if ttl <= 0 {
		ttl = m.TTL
	}

	now := m.now()
	token := &models.UndoToken{
		ID:         uuid.New().String(),
		ActionType: actionType,
		Payload:    string(raw),
		ActorID:    actorID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := m.Tokens.PutUndoToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Undo consumes a token and applies its compensation, returning a summary of
// what was reversed. The token is marked undone before the compensation runs;
// if the compensation then fails partway the token stays spent, and the
// failure describes what still needs manual attention.
func (m *Manager) Undo(ctx context.Context, tokenID, actorID string) (string, error) {
	token, err := m.Tokens.GetUndoToken(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if token.UndoneAt != nil {
		return "", fmt.Errorf("token %s: %w", tokenID, storage.ErrAlreadyUndone)
	}
	if token.Expired(m.now()) {
		return "", fmt.Errorf("token %s expired at %s: %w", tokenID, token.ExpiresAt.Format(time.RFC3339), storage.ErrTokenExpired)
	}

	if err := m.Tokens.MarkTokenUndone(ctx, tokenID, m.now()); err != nil {
		return "", err
	}

	if actorID == "" {
		actorID = models.SystemActor
	}

	switch token.ActionType {
	case ActionStockReceipt:
		return m.undoStockReceipt(ctx, token, actorID)
	case ActionBulkStatus:
		return m.undoBulkStatus(ctx, token, actorID)
	case ActionBulkActivation:
		return m.undoBulkActivation(ctx, token, actorID)
	default:
		// Unreachable for tokens issued through IssueToken.
		return "", fmt.Errorf("no compensation registered for action type %q: %w", token.ActionType, storage.ErrValidation)
	}
}

func (m *Manager) undoStockReceipt(ctx context.Context, token *models.UndoToken, actorID string) (string, error) {
	var payload StockReceiptPayload
	if err := json.Unmarshal([]byte(token.Payload), &payload); err != nil {
		return "", fmt.Errorf("failed to decode undo payload for token %s: %w", token.ID, err)
	}

	reason := fmt.Sprintf("undo of receipt %s", payload.MovementID)
	if _, _, err := m.Ledger.Adjust(ctx, payload.VariantID, -payload.Quantity, reason, actorID); err != nil {
		return "", fmt.Errorf("failed to reverse receipt %s: %w", payload.MovementID, err)
	}
	return fmt.Sprintf("reversed receipt of %d units for variant %s", payload.Quantity, payload.VariantID), nil
}

func (m *Manager) undoBulkStatus(ctx context.Context, token *models.UndoToken, actorID string) (string, error) {
	var payload BulkStatusPayload
	if err := json.Unmarshal([]byte(token.Payload), &payload); err != nil {
		return "", fmt.Errorf("failed to decode undo payload for token %s: %w", token.ID, err)
	}

	restored, skipped := 0, 0
	for _, prior := range payload.Orders {
		audit := &models.AuditEntry{
			ID:          uuid.New().String(),
			ActorID:     actorID,
			EventType:   EventBulkStatusUndone,
			SubjectType: "order",
			SubjectID:   prior.OrderID,
			Before:      string(payload.Target),
			After:       string(prior.PriorStatus),
			CreatedAt:   m.now(),
		}
		// Pin on the status the bulk operation set. An order that moved on
		// since is left alone rather than dragged backwards.
		err := m.Orders.TransitionOrder(ctx, prior.OrderID, payload.Target, prior.PriorStatus, storage.OrderStatusUpdate{}, audit)
		switch {
		case err == nil:
			restored++
		case errors.Is(err, storage.ErrStatusConflict):
			skipped++
			slog.Log(ctx, slog.LevelWarn, "order moved since bulk change, skipping restore", "order_id", prior.OrderID, "prior_status", string(prior.PriorStatus))
		default:
			return "", fmt.Errorf("failed to restore order %s: %w", prior.OrderID, err)
		}
	}
	return fmt.Sprintf("restored %d orders, skipped %d that changed since", restored, skipped), nil
}

func (m *Manager) undoBulkActivation(ctx context.Context, token *models.UndoToken, actorID string) (string, error) {
	var payload BulkActivationPayload
	if err := json.Unmarshal([]byte(token.Payload), &payload); err != nil {
		return "", fmt.Errorf("failed to decode undo payload for token %s: %w", token.ID, err)
	}

	for _, prior := range payload.Variants {
		audit := &models.AuditEntry{
			ID:          uuid.New().String(),
			ActorID:     actorID,
			EventType:   EventActivationUndone,
			SubjectType: "variant",
			SubjectID:   prior.VariantID,
			After:       fmt.Sprintf("active=%t", prior.Active),
			CreatedAt:   m.now(),
		}
		if err := m.Variants.SetVariantActive(ctx, prior.VariantID, prior.Active, audit); err != nil {
			return "", fmt.Errorf("failed to restore variant %s: %w", prior.VariantID, err)
		}
	}
	return fmt.Sprintf("restored active flag on %d variants", len(payload.Variants)), nil
}

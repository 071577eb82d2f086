// Package bulk applies one operation across many items with per-item failure
// isolation. A bulk run never aborts on a bad item; it reports per-item
// outcomes and issues a single undo token covering only the items that
// succeeded.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
	"github.com/spinshop/record-store-core/pkg/undo"
)

// EventBulkActivation is the audit event type for bulk active-flag changes.
const EventBulkActivation = "variant.bulk_activation"

// ItemFailure carries the reason one item of a bulk operation failed.
type ItemFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Result is the outcome of a bulk operation. UndoToken is nil when nothing
// succeeded.
type Result struct {
	Succeeded []string          `json:"succeeded"`
	Failed    []ItemFailure     `json:"failed"`
	UndoToken *models.UndoToken `json:"undo_token,omitempty"`
}

// OrderTransitioner is the slice of the order state machine the coordinator drives.
type OrderTransitioner interface {
	Advance(ctx context.Context, orderID string, next models.OrderStatus, actorID string) error
	Cancel(ctx context.Context, orderID, reason, actorID string) error
	Refund(ctx context.Context, orderID, reason, actorID string) error
}

// TokenIssuer is the slice of the undo manager the coordinator uses.
type TokenIssuer interface {
	IssueToken(ctx context.Context, actionType string, payload any, actorID string, ttl time.Duration) (*models.UndoToken, error)
}

// Coordinator runs bulk operations over orders and variants.
type Coordinator struct {
	Orders   storage.OrderReader
	Variants storage.VariantStore
	Machine  OrderTransitioner
	Undo     TokenIssuer
}

// New creates a Coordinator.
func New(orders storage.OrderReader, variants storage.VariantStore, machine OrderTransitioner, issuer TokenIssuer) *Coordinator {
	return &Coordinator{Orders: orders, Variants: variants, Machine: machine, Undo: issuer}
}

// ApplyBulkStatus moves each order to target, recording the prior status of
// every order that succeeds so the whole batch can be undone. Cancelled and
// refunded targets require a reason; it is applied to every order in the batch.
func (c *Coordinator) ApplyBulkStatus(ctx context.Context, orderIDs []string, target models.OrderStatus, reason, actorID string) (*Result, error) {
	if len(orderIDs) == 0 {
		return nil, fmt.Errorf("bulk status change requires at least one order: %w", storage.ErrValidation)
	}
	if !models.ValidStatus(target) {
		return nil, fmt.Errorf("unknown order status %q: %w", target, storage.ErrValidation)
	}
	needsReason := target == models.OrderCancelled || target == models.OrderRefunded
	if needsReason && reason == "" {
		return nil, fmt.Errorf("bulk %s requires a reason: %w", target, storage.ErrValidation)
	}

	result := &Result{}
	priors := make([]undo.PriorOrderStatus, 0, len(orderIDs))

	for _, orderID := range orderIDs {
		order, err := c.Orders.GetOrder(ctx, orderID)
		if err != nil {
			result.Failed = append(result.Failed, ItemFailure{ID: orderID, Error: err.Error()})
			continue
		}

		switch target {
		case models.OrderCancelled:
			err = c.Machine.Cancel(ctx, orderID, reason, actorID)
		case models.OrderRefunded:
			err = c.Machine.Refund(ctx, orderID, reason, actorID)
		default:
			err = c.Machine.Advance(ctx, orderID, target, actorID)
		}
		if err != nil {
			result.Failed = append(result.Failed, ItemFailure{ID: orderID, Error: err.Error()})
			continue
		}

		result.Succeeded = append(result.Succeeded, orderID)
		priors = append(priors, undo.PriorOrderStatus{OrderID: orderID, PriorStatus: order.Status})
	}

	if len(result.Succeeded) > 0 {
		payload := undo.BulkStatusPayload{Target: target, Orders: priors}
		token, err := c.Undo.IssueToken(ctx, undo.ActionBulkStatus, payload, actorID, 0)
		if err != nil {
			// The status changes stand either way; they just can't be
			// undone in one shot.
			slog.Log(ctx, slog.LevelError, "bulk status applied but undo token not issued", "target", string(target), "error", err)
		} else {
			result.UndoToken = token
		}
	}

	return result, nil
}

// ApplyBulkActivation sets the active flag on each variant, recording prior
// flags for undo. Variants already in the requested state still count as
// succeeded; the restore puts them back where they were, which is where they are.
func (c *Coordinator) ApplyBulkActivation(ctx context.Context, variantIDs []string, active bool, actorID string) (*Result, error) {
	if len(variantIDs) == 0 {
		return nil, fmt.Errorf("bulk activation requires at least one variant: %w", storage.ErrValidation)
	}

	result := &Result{}
	priors := make([]undo.PriorVariantActive, 0, len(variantIDs))

	for _, variantID := range variantIDs {
		variant, err := c.Variants.GetVariant(ctx, variantID)
		if err != nil {
			result.Failed = append(result.Failed, ItemFailure{ID: variantID, Error: err.Error()})
			continue
		}

		audit := &models.AuditEntry{
			ID:          uuid.New().String(),
			ActorID:     actorID,
			EventType:   EventBulkActivation,
			SubjectType: "variant",
			SubjectID:   variantID,
			Before:      fmt.Sprintf("active=%t", variant.Active),
			After:       fmt.Sprintf("active=%t", active),
			CreatedAt:   time.Now(),
		}
		if err := c.Variants.SetVariantActive(ctx, variantID, active, audit); err != nil {
			result.Failed = append(result.Failed, ItemFailure{ID: variantID, Error: err.Error()})
			continue
		}

		result.Succeeded = append(result.Succeeded, variantID)
		priors = append(priors, undo.PriorVariantActive{VariantID: variantID, Active: variant.Active})
	}

	if len(result.Succeeded) > 0 {
		payload := undo.BulkActivationPayload{Variants: priors}
		token, err := c.Undo.IssueToken(ctx, undo.ActionBulkActivation, payload, actorID, 0)
		if err != nil {
			slog.Log(ctx, slog.LevelError, "bulk activation applied but undo token not issued", "error", err)
		} else {
			result.UndoToken = token
		}
	}

	return result, nil
}

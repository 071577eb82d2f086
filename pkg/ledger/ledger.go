// Package ledger owns the per-variant stock counters and the movement
// history. It is the only writer of on_hand and allocated; everything else in
// the system changes inventory by going through one of its operations.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/notify"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// Audit event types emitted by ledger operations.
const (
	EventStockReceived = "inventory.stock_received"
	EventStockReserved = "inventory.stock_reserved"
	EventStockReleased = "inventory.stock_released"
	EventSaleCommitted = "inventory.sale_committed"
	EventStockAdjusted = "inventory.stock_adjusted"
	EventStockReturned = "inventory.stock_returned"
)

// Ledger implements the inventory contract on top of the storage layer:
// validation and movement construction here, atomicity and the per-variant
// serialization in the store.
type Ledger struct {
	Store    storage.InventoryStore
	Notifier notify.Publisher
}

// New creates a Ledger. A nil notifier disables notifications.
func New(store storage.InventoryStore, notifier notify.Publisher) *Ledger {
	if notifier == nil {
		notifier = &notify.NoOpPublisher{}
	}
	return &Ledger{Store: store, Notifier: notifier}
}

// ReceiveStock appends a receipt movement and increases on_hand. A non-empty
// requestID becomes the movement ID and doubles as the idempotency key:
// a retried admin submission replays the original result instead of applying
// the receipt twice.
func (l *Ledger) ReceiveStock(ctx context.Context, variantID string, quantity int64, note, operatorID, requestID string) (*models.StockMovement, *models.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, nil, fmt.Errorf("receipt quantity %d: %w", quantity, storage.ErrInvalidQuantity)
	}

	movement := &models.StockMovement{
		ID:         requestID,
		VariantID:  variantID,
		Delta:      quantity,
		Kind:       models.MovementReceipt,
		OperatorID: operatorID,
		Note:       note,
		CreatedAt:  time.Now(),
	}
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}

	audit := l.newAudit(operatorID, EventStockReceived, variantID, fmt.Sprintf("+%d", quantity), note)
	applied, record, err := l.Store.AppendMovement(ctx, movement, audit)
	if err != nil {
		return nil, nil, err
	}

	return applied, record, nil
}

// Reserve claims quantity units of a variant for an order. The store rejects
// the claim with ErrInsufficientStock unless available stays >= 0; this is the
// sole gate preventing overselling.
func (l *Ledger) Reserve(ctx context.Context, variantID string, quantity int64, orderID string) (*models.Reservation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("reservation quantity %d: %w", quantity, storage.ErrInvalidQuantity)
	}

	now := time.Now()
	reservation := &models.Reservation{
		OrderID:   orderID,
		VariantID: variantID,
		Quantity:  quantity,
		Status:    models.ReservationHeld,
		CreatedAt: now,
		UpdatedAt: now,
	}

	audit := l.newAudit(models.SystemActor, EventStockReserved, variantID, fmt.Sprintf("allocated +%d", quantity), "order "+orderID)
	if _, err := l.Store.Reserve(ctx, reservation, audit); err != nil {
		return nil, err
	}

	return reservation, nil
}

// CommitSale converts an order's held reservation into a committed sale:
// on_hand and allocated decrease together and a sale movement is appended.
func (l *Ledger) CommitSale(ctx context.Context, variantID string, quantity int64, orderID string) (*models.StockMovement, *models.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, nil, fmt.Errorf("sale quantity %d: %w", quantity, storage.ErrInvalidQuantity)
	}

	movement := &models.StockMovement{
		ID:        uuid.New().String(),
		VariantID: variantID,
		Delta:     -quantity,
		Kind:      models.MovementSale,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}

	audit := l.newAudit(models.SystemActor, EventSaleCommitted, variantID, fmt.Sprintf("-%d", quantity), "order "+orderID)
	record, err := l.Store.CommitSale(ctx, movement, audit)
	if err != nil {
		return nil, nil, err
	}

	l.maybeNotifyLowStock(ctx, record)

	return movement, record, nil
}

// ReleaseReservation returns an order's claim on a variant to the available
// pool without touching on_hand. Safe to call on reservations that were
// already released or committed; those calls are no-ops.
func (l *Ledger) ReleaseReservation(ctx context.Context, orderID, variantID string) error {
	audit := l.newAudit(models.SystemActor, EventStockReleased, variantID, "", "order "+orderID)
	return l.Store.ReleaseReservation(ctx, orderID, variantID, audit)
}

// Reservation reports the current state of an order's claim on a variant.
func (l *Ledger) Reservation(ctx context.Context, orderID, variantID string) (*models.Reservation, error) {
	return l.Store.GetReservation(ctx, orderID, variantID)
}

// Adjust applies a manual correction to on_hand. The delta may be negative but
// the store rejects any write that would drive on_hand below allocated or
// below zero.
func (l *Ledger) Adjust(ctx context.Context, variantID string, delta int64, reason, operatorID string) (*models.StockMovement, *models.InventoryRecord, error) {
	if delta == 0 {
		return nil, nil, fmt.Errorf("adjustment delta must be non-zero: %w", storage.ErrInvalidQuantity)
	}

	movement := &models.StockMovement{
		ID:         uuid.New().String(),
		VariantID:  variantID,
		Delta:      delta,
		Kind:       models.MovementAdjustment,
		OperatorID: operatorID,
		Note:       reason,
		CreatedAt:  time.Now(),
	}

	audit := l.newAudit(operatorID, EventStockAdjusted, variantID, fmt.Sprintf("%+d", delta), reason)
	applied, record, err := l.Store.AppendMovement(ctx, movement, audit)
	if err != nil {
		return nil, nil, err
	}

	return applied, record, nil
}

// RestockReturn puts refunded or returned units back on the shelf with an
// explicit return movement. Refund never restocks implicitly; staff invoke
// this separately once the goods are actually back.
func (l *Ledger) RestockReturn(ctx context.Context, variantID string, quantity int64, orderID, operatorID string) (*models.StockMovement, *models.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, nil, fmt.Errorf("return quantity %d: %w", quantity, storage.ErrInvalidQuantity)
	}

	movement := &models.StockMovement{
		ID:         uuid.New().String(),
		VariantID:  variantID,
		Delta:      quantity,
		Kind:       models.MovementReturn,
		OrderID:    orderID,
		OperatorID: operatorID,
		CreatedAt:  time.Now(),
	}

	audit := l.newAudit(operatorID, EventStockReturned, variantID, fmt.Sprintf("+%d", quantity), "return for order "+orderID)
	applied, record, err := l.Store.AppendMovement(ctx, movement, audit)
	if err != nil {
		return nil, nil, err
	}

	return applied, record, nil
}

func (l *Ledger) maybeNotifyLowStock(ctx context.Context, record *models.InventoryRecord) {
	if record.LowStockThreshold <= 0 || record.Available() > record.LowStockThreshold {
		return
	}
	payload := notify.Payload{
		Kind:      notify.KindLowStock,
		VariantID: record.VariantID,
		Message:   fmt.Sprintf("variant %s is low on stock: %d available", record.VariantID, record.Available()),
		CreatedAt: time.Now(),
	}
	if err := l.Notifier.Publish(ctx, payload); err != nil {
		slog.Log(ctx, slog.LevelWarn, "failed to publish low-stock notification", "variant_id", record.VariantID, "error", err)
	}
}

func (l *Ledger) newAudit(actorID, eventType, variantID, after, reason string) *models.AuditEntry {
	if actorID == "" {
		actorID = models.SystemActor
	}
	return &models.AuditEntry{
		ID:          uuid.New().String(),
		ActorID:     actorID,
		EventType:   eventType,
		SubjectType: "variant",
		SubjectID:   variantID,
		After:       after,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
}

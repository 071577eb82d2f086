// Package orders drives an order through its fulfillment lifecycle. All order
// status changes in the system go through the StateMachine (directly or via
// the bulk coordinator), which enforces the transition table and writes one
// audit entry per successful transition.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/notify"
	"github.com/spinshop/record-store-core/pkg/scheduler"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// Audit event types emitted by order transitions.
const (
	EventOrderCreated     = "order.created"
	EventPaymentConfirmed = "order.payment_confirmed"
	EventOrderAdvanced    = "order.advanced"
	EventOrderCancelled   = "order.cancelled"
	EventOrderRefunded    = "order.refunded"
	EventOrderExpired     = "order.expired"
)

// AbandonedReason is the cancellation reason recorded when a pending order's
// reservation outlives the payment window.
const AbandonedReason = "abandoned"

// DefaultPendingTTL is how long a pending order may hold its reservations
// before it is expired as abandoned.
const DefaultPendingTTL = 15 * time.Minute

// NewLine is a requested order line before pricing.
type NewLine struct {
	VariantID string
	Quantity  int64
}

// InventoryLedger is the slice of the ledger the state machine consumes.
type InventoryLedger interface {
	Reserve(ctx context.Context, variantID string, quantity int64, orderID string) (*models.Reservation, error)
	CommitSale(ctx context.Context, variantID string, quantity int64, orderID string) (*models.StockMovement, *models.InventoryRecord, error)
	ReleaseReservation(ctx context.Context, orderID, variantID string) error
	Reservation(ctx context.Context, orderID, variantID string) (*models.Reservation, error)
}

// StateMachine owns order status. Transitions are double-checked: against the
// table here, and against the expected current status by the store's
// conditional write, so concurrent webhook- and staff-driven transitions on
// one order serialize cleanly.
type StateMachine struct {
	Store      storage.OrderStore
	Variants   storage.VariantStore
	Ledger     InventoryLedger
	Scheduler  scheduler.Scheduler
	Notifier   notify.Publisher
	PendingTTL time.Duration
}

// New creates a StateMachine. A nil scheduler disables expiry scheduling
// (used by the lambdas, which never create orders); a nil notifier disables
// notifications.
func New(store storage.OrderStore, variants storage.VariantStore, ledger InventoryLedger, sched scheduler.Scheduler, notifier notify.Publisher) *StateMachine {
	if notifier == nil {
		notifier = &notify.NoOpPublisher{}
	}
	return &StateMachine{
		Store:      store,
		Variants:   variants,
		Ledger:     ledger,
		Scheduler:  sched,
		Notifier:   notifier,
		PendingTTL: DefaultPendingTTL,
	}
}

// CreateOrder prices the requested lines, reserves stock for every line and
// persists the pending order. Creation is all-or-nothing: if any line cannot
// be reserved, reservations already made for earlier lines are released and
// the whole creation fails.
func (m *StateMachine) CreateOrder(ctx context.Context, actorID string, lines []NewLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("order requires at least one line: %w", storage.ErrValidation)
	}

	orderID := uuid.New().String()
	now := time.Now()

	order := &models.Order{
		ID:            orderID,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Price every line before touching inventory.
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity for variant %s must be positive: %w", line.VariantID, storage.ErrInvalidQuantity)
		}
		variant, err := m.Variants.GetVariant(ctx, line.VariantID)
		if err != nil {
			return nil, err
		}
		if !variant.Active {
			return nil, fmt.Errorf("variant %s is not active: %w", line.VariantID, storage.ErrValidation)
		}
		order.Lines = append(order.Lines, models.OrderLine{
			VariantID:      variant.ID,
			Quantity:       line.Quantity,
			UnitPriceCents: variant.PriceCents,
			LineTotalCents: variant.PriceCents * line.Quantity,
		})
		order.TotalCents += variant.PriceCents * line.Quantity
		order.Currency = variant.Currency
	}

	// Reserve line by line; unwind earlier reservations on the first failure.
	for i, line := range order.Lines {
		if _, err := m.Ledger.Reserve(ctx, line.VariantID, line.Quantity, orderID); err != nil {
			for _, held := range order.Lines[:i] {
				if relErr := m.Ledger.ReleaseReservation(ctx, orderID, held.VariantID); relErr != nil {
					slog.Log(ctx, slog.LevelError, "failed to unwind reservation", "order_id", orderID, "variant_id", held.VariantID, "error", relErr)
				}
			}
			return nil, fmt.Errorf("failed to reserve variant %s: %w", line.VariantID, err)
		}
	}

	audit := m.newAudit(actorID, EventOrderCreated, orderID, "", string(models.OrderPending), "")
	if err := m.Store.CreateOrder(ctx, order, audit); err != nil {
		for _, held := range order.Lines {
			if relErr := m.Ledger.ReleaseReservation(ctx, orderID, held.VariantID); relErr != nil {
				slog.Log(ctx, slog.LevelError, "failed to unwind reservation", "order_id", orderID, "variant_id", held.VariantID, "error", relErr)
			}
		}
		return nil, err
	}

	// The order exists either way; a lost expiry message is caught by the sweeper.
	if m.Scheduler != nil {
		if err := m.Scheduler.ScheduleExpiry(ctx, orderID, m.PendingTTL); err != nil {
			slog.Log(ctx, slog.LevelError, "order created but expiry not scheduled", "order_id", orderID, "error", err)
		}
	}

	m.publish(ctx, notify.Payload{
		Kind:      notify.KindOrderPlaced,
		OrderID:   orderID,
		Message:   fmt.Sprintf("order %s placed for %d %s", orderID, order.TotalCents, order.Currency),
		CreatedAt: time.Now(),
	})

	return order, nil
}

// ConfirmPayment commits every line's sale and moves the order from pending
// to paid. Confirming an order already paid with the same provider reference
// is a no-op, which makes duplicate provider confirmations harmless.
func (m *StateMachine) ConfirmPayment(ctx context.Context, orderID, providerRef string) error {
	order, err := m.Store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == models.OrderPaid && order.ProviderRef == providerRef {
		return nil
	}
	if order.Status != models.OrderPending {
		return storage.NewTransitionError(order.Status, models.OrderPaid)
	}

	// Commit line by line, skipping lines a previous partially-applied
	// confirmation already committed.
	for _, line := range order.Lines {
		reservation, err := m.Ledger.Reservation(ctx, orderID, line.VariantID)
		if err == nil && reservation.Status == models.ReservationCommitted {
			continue
		}
		if _, _, err := m.Ledger.CommitSale(ctx, line.VariantID, line.Quantity, orderID); err != nil {
			return fmt.Errorf("failed to commit sale for variant %s: %w", line.VariantID, err)
		}
	}

	audit := m.newAudit(models.SystemActor, EventPaymentConfirmed, orderID, string(models.OrderPending), string(models.OrderPaid), "")
	update := storage.OrderStatusUpdate{
		ProviderRef:   providerRef,
		PaymentStatus: models.PaymentPaid,
	}
	if err := m.Store.TransitionOrder(ctx, orderID, models.OrderPending, models.OrderPaid, update, audit); err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			current, getErr := m.Store.GetOrder(ctx, orderID)
			if getErr != nil {
				return getErr
			}
			if current.Status == models.OrderPaid && current.ProviderRef == providerRef {
				return nil
			}
			return storage.NewTransitionError(current.Status, models.OrderPaid)
		}
		return err
	}

	m.publish(ctx, notify.Payload{
		Kind:      notify.KindPaymentConfirmed,
		OrderID:   orderID,
		Message:   fmt.Sprintf("payment confirmed for order %s", orderID),
		CreatedAt: time.Now(),
	})

	return nil
}

// Advance applies a staff-driven forward transition
// (paid → processing → shipped → delivered). Cancellation and refund have
// their own operations because they require a reason.
func (m *StateMachine) Advance(ctx context.Context, orderID string, next models.OrderStatus, actorID string) error {
	if !models.ValidStatus(next) {
		return fmt.Errorf("unknown order status %q: %w", next, storage.ErrValidation)
	}
	switch next {
	case models.OrderCancelled, models.OrderRefunded:
		return fmt.Errorf("use cancel or refund for status %q: %w", next, storage.ErrValidation)
	case models.OrderPaid, models.OrderPending:
		return fmt.Errorf("status %q is set by payment confirmation, not staff: %w", next, storage.ErrValidation)
	}

	order, err := m.Store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !models.CanTransition(order.Status, next) {
		return storage.NewTransitionError(order.Status, next)
	}

	audit := m.newAudit(actorID, EventOrderAdvanced, orderID, string(order.Status), string(next), "")
	if err := m.Store.TransitionOrder(ctx, orderID, order.Status, next, storage.OrderStatusUpdate{}, audit); err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			current, getErr := m.Store.GetOrder(ctx, orderID)
			if getErr != nil {
				return getErr
			}
			return storage.NewTransitionError(current.Status, next)
		}
		return err
	}

	return nil
}

// Cancel moves a pending or paid order to cancelled and releases any held
// reservations. The reason is mandatory and lands in the audit entry.
// Cancelling an already-cancelled order is a no-op.
func (m *StateMachine) Cancel(ctx context.Context, orderID, reason, actorID string) error {
	if reason == "" {
		return fmt.Errorf("cancellation requires a reason: %w", storage.ErrValidation)
	}
	return m.terminate(ctx, orderID, models.OrderCancelled, EventOrderCancelled, reason, actorID)
}

// Refund moves a paid, processing or shipped order to refunded. Refund never
// touches inventory: the sale stays committed, and restocking is a separate,
// explicit return movement on the ledger.
func (m *StateMachine) Refund(ctx context.Context, orderID, reason, actorID string) error {
	if reason == "" {
		return fmt.Errorf("refund requires a reason: %w", storage.ErrValidation)
	}
	return m.terminate(ctx, orderID, models.OrderRefunded, EventOrderRefunded, reason, actorID)
}

// ExpireAbandoned cancels a pending order whose reservation outlived the
// payment window. Safe to invoke redundantly: an order that already moved on
// is left alone.
func (m *StateMachine) ExpireAbandoned(ctx context.Context, orderID string) error {
	order, err := m.Store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderPending {
		return nil
	}

	audit := m.newAudit(models.SystemActor, EventOrderExpired, orderID, string(models.OrderPending), string(models.OrderCancelled), AbandonedReason)
	update := storage.OrderStatusUpdate{CancelReason: AbandonedReason}
	if err := m.Store.TransitionOrder(ctx, orderID, models.OrderPending, models.OrderCancelled, update, audit); err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			// Payment or staff got there first.
			return nil
		}
		return err
	}

	m.releaseLines(ctx, order)
	return nil
}

// terminate is the shared cancel/refund path.
func (m *StateMachine) terminate(ctx context.Context, orderID string, target models.OrderStatus, eventType, reason, actorID string) error {
	order, err := m.Store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == target {
		return nil
	}
	if !models.CanTransition(order.Status, target) {
		return storage.NewTransitionError(order.Status, target)
	}

	update := storage.OrderStatusUpdate{CancelReason: reason}
	if target == models.OrderRefunded {
		update.PaymentStatus = models.PaymentRefunded
	}

	audit := m.newAudit(actorID, eventType, orderID, string(order.Status), string(target), reason)
	if err := m.Store.TransitionOrder(ctx, orderID, order.Status, target, update, audit); err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			current, getErr := m.Store.GetOrder(ctx, orderID)
			if getErr != nil {
				return getErr
			}
			if current.Status == target {
				return nil
			}
			return storage.NewTransitionError(current.Status, target)
		}
		return err
	}

	if target == models.OrderCancelled {
		m.releaseLines(ctx, order)
	}

	return nil
}

// releaseLines releases every line's reservation. Releases are idempotent and
// no-op on committed reservations, so this is safe after any cancellation,
// including of a paid order.
func (m *StateMachine) releaseLines(ctx context.Context, order *models.Order) {
	for _, line := range order.Lines {
		if err := m.Ledger.ReleaseReservation(ctx, order.ID, line.VariantID); err != nil {
			slog.Log(ctx, slog.LevelError, "failed to release reservation", "order_id", order.ID, "variant_id", line.VariantID, "error", err)
		}
	}
}

func (m *StateMachine) publish(ctx context.Context, payload notify.Payload) {
	if err := m.Notifier.Publish(ctx, payload); err != nil {
		slog.Log(ctx, slog.LevelWarn, "failed to publish notification", "kind", string(payload.Kind), "order_id", payload.OrderID, "error", err)
	}
}

func (m *StateMachine) newAudit(actorID, eventType, orderID, before, after, reason string) *models.AuditEntry {
	if actorID == "" {
		actorID = models.SystemActor
	}
	return &models.AuditEntry{
		ID:          uuid.New().String(),
		ActorID:     actorID,
		EventType:   eventType,
		SubjectType: "order",
		SubjectID:   orderID,
		Before:      before,
		After:       after,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
}

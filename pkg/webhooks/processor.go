// Package webhooks turns payment provider events into order transitions,
// exactly once per provider event ID.
package webhooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spinshop/record-store-core/pkg/models"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// Provider event types the processor acts on. Anything else is recorded and
// acknowledged without side effects.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventChargeRefunded    = "charge.refunded"
	EventChargeDisputed    = "charge.dispute.created"
)

// Event is the normalized form of a provider webhook, extracted by the HTTP
// handler after signature verification.
type Event struct {
	ID          string
	Type        string
	OrderID     string
	ProviderRef string
}

// OrderStateMachine is the slice of the order state machine the processor drives.
type OrderStateMachine interface {
	ConfirmPayment(ctx context.Context, orderID, providerRef string) error
	Cancel(ctx context.Context, orderID, reason, actorID string) error
	Refund(ctx context.Context, orderID, reason, actorID string) error
}

// Processor applies provider events to orders. The event record is claimed
// before any side effect runs, so a re-delivered event ID is acknowledged
// without touching the order again.
type Processor struct {
	Events storage.WebhookEventStore
	Orders OrderStateMachine
}

// New creates a Processor.
func New(events storage.WebhookEventStore, orders OrderStateMachine) *Processor {
	return &Processor{Events: events, Orders: orders}
}

// HandleEvent processes one provider event. Duplicate event IDs return nil
// immediately. A failure while applying the event is recorded against the
// event and returned wrapped in ErrWebhookProcessingFailed; the claim on the
// event ID is kept, so the provider's retry of the same delivery stays a
// no-op and recovery goes through the failed-events listing instead.
func (p *Processor) HandleEvent(ctx context.Context, event Event) error {
	record := &models.WebhookEvent{
		EventID:     event.ID,
		EventType:   event.Type,
		OrderID:     event.OrderID,
		Outcome:     models.WebhookOutcomeProcessed,
		ProcessedAt: time.Now(),
	}
	if err := p.Events.MarkEventSeen(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateEvent) {
			slog.Log(ctx, slog.LevelInfo, "duplicate webhook event ignored", "event_id", event.ID, "event_type", event.Type)
			return nil
		}
		return err
	}

	if err := p.apply(ctx, event); err != nil {
		if recErr := p.Events.RecordEventOutcome(ctx, event.ID, models.WebhookOutcomeFailed, err.Error()); recErr != nil {
			slog.Log(ctx, slog.LevelError, "failed to record webhook outcome", "event_id", event.ID, "error", recErr)
		}
		return fmt.Errorf("event %s (%s): %v: %w", event.ID, event.Type, err, storage.ErrWebhookProcessingFailed)
	}

	return nil
}

func (p *Processor) apply(ctx context.Context, event Event) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return p.Orders.ConfirmPayment(ctx, event.OrderID, event.ProviderRef)
	case EventCheckoutExpired:
		return p.Orders.Cancel(ctx, event.OrderID, "checkout session expired", models.SystemActor)
	case EventChargeRefunded:
		return p.Orders.Refund(ctx, event.OrderID, "charge refunded by provider", models.SystemActor)
	case EventChargeDisputed:
		return p.Orders.Refund(ctx, event.OrderID, "charge disputed", models.SystemActor)
	default:
		slog.Log(ctx, slog.LevelInfo, "unhandled webhook event type", "event_id", event.ID, "event_type", event.Type)
		return nil
	}
}

package notify

import (
	"context"
	"log/slog"
	"time"
)

// Kind classifies a notification payload.
type Kind string

const (
	KindOrderPlaced      Kind = "order_placed"
	KindPaymentConfirmed Kind = "payment_confirmed"
	KindLowStock         Kind = "low_stock"
)

// Payload is the human-readable notification emitted by the core for the
// notification/UI layer. Delivery (toast, sound, email) is out of scope here.
type Payload struct {
	Kind      Kind      `json:"kind"`
	OrderID   string    `json:"order_id,omitempty"`
	VariantID string    `json:"variant_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher defines the interface for handing notification payloads to the
// delivery layer.
type Publisher interface {
	Publish(ctx context.Context, payload Payload) error
}

// NoOpPublisher is a publisher that does nothing.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, payload Payload) error {
	return nil
}

// SlogPublisher writes notification payloads to the structured log, which is
// where the delivery layer picks them up in local development.
type SlogPublisher struct {
	Logger *slog.Logger
}

// Publish logs the payload.
func (p *SlogPublisher) Publish(ctx context.Context, payload Payload) error {
	p.Logger.InfoContext(ctx, "notification",
		slog.String("kind", string(payload.Kind)),
		slog.String("order_id", payload.OrderID),
		slog.String("variant_id", payload.VariantID),
		slog.String("message", payload.Message),
	)
	return nil
}

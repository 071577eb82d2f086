package storage

import (
	"context"

	"github.com/spinshop/record-store-core/pkg/models"
)

// WebhookEventStore defines the interface for the webhook idempotency record.
type WebhookEventStore interface {
	// MarkEventSeen atomically records a provider event ID as seen. A second
	// write for the same ID returns ErrDuplicateEvent; this is the check that
	// turns at-least-once delivery into effectively-once processing.
	MarkEventSeen(ctx context.Context, event *models.WebhookEvent) error

	// RecordEventOutcome updates the seen record with the processing result.
	RecordEventOutcome(ctx context.Context, eventID string, outcome models.WebhookEventOutcome, failureReason string) error

	// ListFailedWebhookEvents retrieves events whose mapped transition failed,
	// for operator reconciliation.
	ListFailedWebhookEvents(ctx context.Context, limit int32) ([]models.WebhookEvent, error)
}

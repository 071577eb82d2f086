package scheduler

import (
	"context"
	"time"
)

// ExpiryMessage is the queue payload asking for a pending order's
// reservations to be expired.
type ExpiryMessage struct {
	OrderID string `json:"order_id"`
}

// Scheduler defines the interface for a component that schedules an
// abandoned-order check for later processing.
type Scheduler interface {
	// ScheduleExpiry enqueues an expiry check for the order after delay.
	ScheduleExpiry(ctx context.Context, orderID string, delay time.Duration) error
}

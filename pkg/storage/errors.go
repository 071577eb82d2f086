package storage

import (
	"errors"
	"fmt"

	"github.com/spinshop/record-store-core/pkg/models"
)

// ErrInvalidQuantity is returned when a movement or reservation quantity is zero or negative.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrInsufficientStock is returned when a write would drive a variant's available count negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrReservationNotFound is returned when an order holds no matching allocation for a variant.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrVariantNotFound is returned when a variant or its inventory record does not exist.
var ErrVariantNotFound = errors.New("variant not found")

// ErrOrderNotFound is returned when an order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrStatusConflict is returned when a conditional status update loses to a concurrent transition.
var ErrStatusConflict = errors.New("order status changed concurrently")

// ErrTokenNotFound is returned when an undo token does not exist.
var ErrTokenNotFound = errors.New("undo token not found")

// ErrTokenExpired is returned when an undo token is consumed past its expiry.
var ErrTokenExpired = errors.New("undo token expired")

// ErrAlreadyUndone is returned when a one-shot undo token is consumed a second time.
var ErrAlreadyUndone = errors.New("undo token already consumed")

// ErrDuplicateEvent is returned when a provider event ID has already been recorded.
var ErrDuplicateEvent = errors.New("webhook event already seen")

// ErrWebhookProcessingFailed is returned when a webhook event was recorded but
// its mapped transition could not be applied; the incident is kept for manual
// reconciliation rather than retried.
var ErrWebhookProcessingFailed = errors.New("webhook event processing failed")

// ErrValidation is returned for malformed input, e.g. a missing mandatory reason.
var ErrValidation = errors.New("validation failed")

// ErrInvalidTransition is returned for a status change not in the transition
// table. Use NewTransitionError so the rejection names the disallowed pair.
var ErrInvalidTransition = errors.New("invalid order status transition")

// TransitionError carries the disallowed pair so an operator can decide the
// next action without inspecting logs.
type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// NewTransitionError builds a TransitionError for the given pair.
func NewTransitionError(from, to models.OrderStatus) *TransitionError {
	return &TransitionError{From: from, To: to}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %q to %q", e.From, e.To)
}

// Is makes errors.Is(err, ErrInvalidTransition) hold for every TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

package models

import (
	"time"
)

// MovementKind classifies a stock movement.
type MovementKind string

const (
	MovementReceipt    MovementKind = "receipt"
	MovementSale       MovementKind = "sale"
	MovementAdjustment MovementKind = "adjustment"
	MovementReturn     MovementKind = "return"
	MovementTransfer   MovementKind = "transfer"
)

// SystemActor is the ActorID recorded on audit entries for webhook- and
// expiry-driven mutations.
const SystemActor = "system"

// Variant represents a sellable unit of a release (pressing, format, condition).
// Price and identity are immutable once the variant is referenced by an order line.
type Variant struct {
	ID         string    `json:"id" dynamodbav:"id"`
	SKU        string    `json:"sku" dynamodbav:"sku"`
	Title      string    `json:"title" dynamodbav:"title"`
	Artist     string    `json:"artist" dynamodbav:"artist"`
	PriceCents int64     `json:"price_cents" dynamodbav:"price_cents"`
	Currency   string    `json:"currency" dynamodbav:"currency"`
	Active     bool      `json:"active" dynamodbav:"active"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

// InventoryRecord holds the stock counters for a single variant.
// OnHand and Allocated are the source of truth; Available is always derived.
type InventoryRecord struct {
	VariantID         string    `json:"variant_id" dynamodbav:"variant_id"`
	OnHand            int64     `json:"on_hand" dynamodbav:"on_hand"`
	Allocated         int64     `json:"allocated" dynamodbav:"allocated"`
	LowStockThreshold int64     `json:"low_stock_threshold" dynamodbav:"low_stock_threshold"`
	Version           int64     `json:"version" dynamodbav:"version"`
	UpdatedAt         time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Available returns the quantity sellable right now.
func (r *InventoryRecord) Available() int64 {
	return r.OnHand - r.Allocated
}

// StockMovement is an append-only log entry for a change to a variant's on-hand
// count. Movements are never edited or deleted, only compensated by an
// opposite-signed movement. The sum of all accepted deltas for a variant equals
// its current on-hand count.
type StockMovement struct {
	ID         string       `json:"id" dynamodbav:"id"`
	VariantID  string       `json:"variant_id" dynamodbav:"variant_id"`
	Delta      int64        `json:"delta" dynamodbav:"delta"`
	Kind       MovementKind `json:"kind" dynamodbav:"kind"`
	OrderID    string       `json:"order_id,omitempty" dynamodbav:"order_id,omitempty"`
	OperatorID string       `json:"operator_id,omitempty" dynamodbav:"operator_id,omitempty"`
	Note       string       `json:"note,omitempty" dynamodbav:"note,omitempty"`
	CreatedAt  time.Time    `json:"created_at" dynamodbav:"created_at"`
}

// ReservationStatus tracks what happened to an order's claim on a variant.
type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "held"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Reservation records an open order's allocated claim on a variant.
// It is written in the same database transaction as the counter update,
// which is what makes CommitSale and ReleaseReservation idempotent.
type Reservation struct {
	OrderID   string            `json:"order_id" dynamodbav:"order_id"`
	VariantID string            `json:"variant_id" dynamodbav:"variant_id"`
	Quantity  int64             `json:"quantity" dynamodbav:"quantity"`
	Status    ReservationStatus `json:"status" dynamodbav:"status"`
	CreatedAt time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// PaymentStatus mirrors the payment provider's view of an order.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderLine is a single line of an order, fixed at creation.
type OrderLine struct {
	VariantID      string `json:"variant_id" dynamodbav:"variant_id"`
	Quantity       int64  `json:"quantity" dynamodbav:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" dynamodbav:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents" dynamodbav:"line_total_cents"`
}

// Order is the aggregate root for a purchase.
type Order struct {
	ID               string        `json:"id" dynamodbav:"id"`
	Status           OrderStatus   `json:"status" dynamodbav:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" dynamodbav:"payment_status"`
	TotalCents       int64         `json:"total_cents" dynamodbav:"total_cents"`
	Currency         string        `json:"currency" dynamodbav:"currency"`
	PaymentSessionID string        `json:"payment_session_id,omitempty" dynamodbav:"payment_session_id,omitempty"`
	ProviderRef      string        `json:"provider_ref,omitempty" dynamodbav:"provider_ref,omitempty"`
	CancelReason     string        `json:"cancel_reason,omitempty" dynamodbav:"cancel_reason,omitempty"`
	Lines            []OrderLine   `json:"lines" dynamodbav:"lines"`
	CreatedAt        time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" dynamodbav:"updated_at"`
}

// AuditEntry is an immutable record of a state-changing action. Entries are
// written in the same database transaction as the mutation they describe.
type AuditEntry struct {
	ID          string    `json:"id" dynamodbav:"id"`
	ActorID     string    `json:"actor_id" dynamodbav:"actor_id"`
	EventType   string    `json:"event_type" dynamodbav:"event_type"`
	SubjectType string    `json:"subject_type" dynamodbav:"subject_type"`
	SubjectID   string    `json:"subject_id" dynamodbav:"subject_id"`
	Before      string    `json:"before,omitempty" dynamodbav:"before,omitempty"`
	After       string    `json:"after,omitempty" dynamodbav:"after,omitempty"`
	Reason      string    `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	GSI1PK      string    `json:"-" dynamodbav:"gsi1pk"`
}

// UndoToken references a reversible action and the payload needed to
// compensate it. One-shot: once UndoneAt is set the token is permanently inert.
type UndoToken struct {
	ID         string     `json:"id" dynamodbav:"id"`
	ActionType string     `json:"action_type" dynamodbav:"action_type"`
	Payload    string     `json:"payload" dynamodbav:"payload"`
	ActorID    string     `json:"actor_id" dynamodbav:"actor_id"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	UndoneAt   *time.Time `json:"undone_at,omitempty" dynamodbav:"undone_at,omitempty"`
	GSI1PK     string     `json:"-" dynamodbav:"gsi1pk"`
}

// Expired reports whether the token can no longer be consumed.
// Expiry is checked lazily at undo time; the periodic purge is hygiene only.
func (t *UndoToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// WebhookEventOutcome records how a provider event was handled.
type WebhookEventOutcome string

const (
	WebhookOutcomeProcessed WebhookEventOutcome = "processed"
	WebhookOutcomeFailed    WebhookEventOutcome = "failed"
)

// WebhookEvent is the processing record for a payment-provider event. The
// provider's globally unique event ID is the idempotency key: the record is
// written before side effects are considered durable, so re-delivery is a no-op.
type WebhookEvent struct {
	EventID       string              `json:"event_id" dynamodbav:"event_id"`
	EventType     string              `json:"event_type" dynamodbav:"event_type"`
	OrderID       string              `json:"order_id,omitempty" dynamodbav:"order_id,omitempty"`
	Outcome       WebhookEventOutcome `json:"outcome" dynamodbav:"outcome"`
	FailureReason string              `json:"failure_reason,omitempty" dynamodbav:"failure_reason,omitempty"`
	ProcessedAt   time.Time           `json:"processed_at" dynamodbav:"processed_at"`
	GSI1PK        string              `json:"-" dynamodbav:"gsi1pk"`
}

// Package api defines the JSON types of the HTTP surface. These are kept
// separate from the domain models so the wire contract can evolve
// independently of storage.
package api

import "time"

// Error is the uniform error response body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

// NewVariant is the request body for creating a variant.
type NewVariant struct {
	SKU               string `json:"sku"`
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	PriceCents        int64  `json:"price_cents"`
	Currency          string `json:"currency"`
	LowStockThreshold int64  `json:"low_stock_threshold,omitempty"`
}

// Variant is a sellable unit as exposed over the API.
type Variant struct {
	Id         string    `json:"id"`
	SKU        string    `json:"sku"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Inventory is the stock position of one variant.
type Inventory struct {
	VariantId string    `json:"variant_id"`
	OnHand    int64     `json:"on_hand"`
	Allocated int64     `json:"allocated"`
	Available int64     `json:"available"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockMovement is one append-only ledger entry.
type StockMovement struct {
	Id         string    `json:"id"`
	VariantId  string    `json:"variant_id"`
	Delta      int64     `json:"delta"`
	Kind       string    `json:"kind"`
	OrderId    string    `json:"order_id,omitempty"`
	OperatorId string    `json:"operator_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReceiveStockRequest records incoming stock. RequestId, when set, is the
// idempotency key for the movement.
type ReceiveStockRequest struct {
	Quantity   int64  `json:"quantity"`
	Note       string `json:"note,omitempty"`
	OperatorId string `json:"operator_id"`
	RequestId  string `json:"request_id,omitempty"`
}

// ReceiveStockResponse returns the recorded movement, the new stock position
// and a token that reverses the receipt.
type ReceiveStockResponse struct {
	Movement  *StockMovement `json:"movement"`
	Inventory *Inventory     `json:"inventory"`
	UndoToken *UndoToken     `json:"undo_token,omitempty"`
}

// AdjustStockRequest applies a signed correction to on-hand stock.
type AdjustStockRequest struct {
	Delta      int64  `json:"delta"`
	Reason     string `json:"reason"`
	OperatorId string `json:"operator_id"`
}

// ReturnStockRequest restocks units from a refunded order.
type ReturnStockRequest struct {
	Quantity   int64  `json:"quantity"`
	OrderId    string `json:"order_id"`
	OperatorId string `json:"operator_id"`
}

// MovementResponse returns a recorded movement and the new stock position.
type MovementResponse struct {
	Movement  *StockMovement `json:"movement"`
	Inventory *Inventory     `json:"inventory"`
}

// NewOrderLine is one requested line of a new order.
type NewOrderLine struct {
	VariantId string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

// NewOrder is the request body for creating an order.
type NewOrder struct {
	Lines   []NewOrderLine `json:"lines"`
	ActorId string         `json:"actor_id,omitempty"`
}

// OrderLine is a priced line of an order.
type OrderLine struct {
	VariantId      string `json:"variant_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

// Order is the API view of an order.
type Order struct {
	Id            string      `json:"id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	TotalCents    int64       `json:"total_cents"`
	Currency      string      `json:"currency"`
	ProviderRef   string      `json:"provider_ref,omitempty"`
	CancelReason  string      `json:"cancel_reason,omitempty"`
	Lines         []OrderLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// AdvanceOrderRequest moves an order to the next fulfillment status.
type AdvanceOrderRequest struct {
	Status  string `json:"status"`
	ActorId string `json:"actor_id"`
}

// CancelOrderRequest cancels an order. Reason is required.
type CancelOrderRequest struct {
	Reason  string `json:"reason"`
	ActorId string `json:"actor_id"`
}

// RefundOrderRequest refunds an order. Reason is required.
type RefundOrderRequest struct {
	Reason  string `json:"reason"`
	ActorId string `json:"actor_id"`
}

// BulkStatusRequest applies one status change to many orders.
type BulkStatusRequest struct {
	OrderIds []string `json:"order_ids"`
	Status   string   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	ActorId  string   `json:"actor_id"`
}

// BulkActivationRequest sets the active flag on many variants.
type BulkActivationRequest struct {
	VariantIds []string `json:"variant_ids"`
	Active     bool     `json:"active"`
	ActorId    string   `json:"actor_id"`
}

// ItemFailure is one failed item of a bulk operation.
type ItemFailure struct {
	Id    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports per-item outcomes of a bulk operation.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
	UndoToken *UndoToken    `json:"undo_token,omitempty"`
}

// UndoToken is the API view of an issued undo token.
type UndoToken struct {
	Id         string     `json:"id"`
	ActionType string     `json:"action_type"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UndoneAt   *time.Time `json:"undone_at,omitempty"`
}

// UndoRequest consumes an undo token.
type UndoRequest struct {
	ActorId string `json:"actor_id"`
}

// UndoResponse summarizes what an undo reversed.
type UndoResponse struct {
	TokenId string `json:"token_id"`
	Summary string `json:"summary"`
}

// SetActiveRequest sets a single variant's active flag.
type SetActiveRequest struct {
	Active  bool   `json:"active"`
	ActorId string `json:"actor_id"`
}

// AuditEntry is the API view of one audit log entry.
type AuditEntry struct {
	Id          string    `json:"id"`
	ActorId     string    `json:"actor_id"`
	EventType   string    `json:"event_type"`
	SubjectType string    `json:"subject_type"`
	SubjectId   string    `json:"subject_id"`
	Before      string    `json:"before,omitempty"`
	After       string    `json:"after,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebhookEvent is the processing record of one provider event.
type WebhookEvent struct {
	EventId       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OrderId       string    `json:"order_id,omitempty"`
	Outcome       string    `json:"outcome"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}

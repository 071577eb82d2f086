package storage

import (
	"context"

	"github.com/spinshop/record-store-core/pkg/models"
)

// InventoryReader defines the interface for reading inventory state.
type InventoryReader interface {
	// GetInventory retrieves the counters for a variant.
	GetInventory(ctx context.Context, variantID string) (*models.InventoryRecord, error)

	// GetMovement retrieves a single stock movement by its ID.
	GetMovement(ctx context.Context, movementID string) (*models.StockMovement, error)

	// ListMovements retrieves the most recent movements for a variant.
	ListMovements(ctx context.Context, variantID string, limit int32) ([]models.StockMovement, error)

	// GetReservation retrieves an order's reservation for a variant.
	GetReservation(ctx context.Context, orderID, variantID string) (*models.Reservation, error)
}

// InventoryWriter defines the privileged interface for mutating inventory
// counters. Every method applies its counter update, movement append and audit
// entry in one atomic write guarded by condition expressions, so a rejected
// invariant leaves no partial state behind.
type InventoryWriter interface {
	// AppendMovement applies a movement that changes on_hand only
	// (receipt, return, adjustment). Writes that would leave on_hand below
	// allocated or below zero are rejected with ErrInsufficientStock, never
	// clamped. The movement ID doubles as the idempotency key: re-applying
	// an ID already on file returns the stored movement without
	// double-applying. Returns the applied (or replayed) movement and the
	// updated inventory record.
	AppendMovement(ctx context.Context, movement *models.StockMovement, audit *models.AuditEntry) (*models.StockMovement, *models.InventoryRecord, error)

	// Reserve increases the variant's allocated count and writes the
	// reservation row, only if the resulting available count stays >= 0.
	// Returns ErrInsufficientStock otherwise.
	Reserve(ctx context.Context, reservation *models.Reservation, audit *models.AuditEntry) (*models.InventoryRecord, error)

	// CommitSale converts a held reservation into a sale: decreases on_hand
	// and allocated together and appends the sale movement. Returns
	// ErrReservationNotFound if the order holds no matching held allocation.
	// Callers retrying a partially applied confirmation should check
	// GetReservation first and skip lines already committed.
	CommitSale(ctx context.Context, movement *models.StockMovement, audit *models.AuditEntry) (*models.InventoryRecord, error)

	// ReleaseReservation decreases allocated without touching on_hand.
	// Releasing an already-released (or never-held) reservation is a no-op,
	// in which case no audit entry is written.
	ReleaseReservation(ctx context.Context, orderID, variantID string, audit *models.AuditEntry) error
}

// InventoryStore combines the reader and writer interfaces.
type InventoryStore interface {
	InventoryReader
	InventoryWriter
}

package storage

import (
	"context"
	"time"

	"github.com/spinshop/record-store-core/pkg/models"
)

// OrderStatusUpdate carries the optional fields written alongside a status
// transition.
type OrderStatusUpdate struct {
	ProviderRef   string
	PaymentStatus models.PaymentStatus
	CancelReason  string
}

// OrderReader defines the interface for reading order data.
type OrderReader interface {
	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// ListOrders retrieves the most recent orders.
	ListOrders(ctx context.Context, limit int32) ([]models.Order, error)

	// GetStalePendingOrders retrieves orders that have been pending for
	// longer than maxAge, i.e. reservations whose expiry message was lost.
	GetStalePendingOrders(ctx context.Context, maxAge time.Duration) ([]models.Order, error)
}

// OrderWriter defines the interface for creating orders and moving them
// through their lifecycle.
type OrderWriter interface {
	// CreateOrder persists a new pending order and its audit entry atomically.
	CreateOrder(ctx context.Context, order *models.Order, audit *models.AuditEntry) error

	// TransitionOrder flips an order's status from the expected current value
	// to the next one, writing the audit entry in the same transaction. The
	// write is conditional on the order still being in the from status;
	// losing that race returns ErrStatusConflict so the caller can re-read
	// and decide (e.g. treat a duplicate payment confirmation as a no-op).
	TransitionOrder(ctx context.Context, orderID string, from, to models.OrderStatus, update OrderStatusUpdate, audit *models.AuditEntry) error
}

// OrderStore combines the reader and writer interfaces.
type OrderStore interface {
	OrderReader
	OrderWriter
}

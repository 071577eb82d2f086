package storage

import (
	"context"

	"github.com/spinshop/record-store-core/pkg/models"
)

// VariantStore defines the interface for managing catalog variants.
type VariantStore interface {
	// CreateVariant creates a variant together with its zeroed inventory
	// record. lowStockThreshold sets the level below which low-stock
	// notifications fire; zero disables them.
	CreateVariant(ctx context.Context, variant *models.Variant, lowStockThreshold int64) (*models.Variant, error)

	// GetVariant retrieves a variant by its ID.
	GetVariant(ctx context.Context, variantID string) (*models.Variant, error)

	// ListVariants retrieves all variants.
	ListVariants(ctx context.Context) ([]models.Variant, error)

	// SetVariantActive flips a variant's active flag and records the change.
	// The audit entry is written in the same transaction.
	SetVariantActive(ctx context.Context, variantID string, active bool, audit *models.AuditEntry) error
}

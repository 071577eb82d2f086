package storage

import (
	"context"

	"github.com/spinshop/record-store-core/pkg/models"
)

// AuditReader defines the interface for reading the audit trail. Audit entries
// are only ever written transactionally alongside the mutation they describe,
// so there is no standalone append.
type AuditReader interface {
	// ListAuditEntries retrieves the most recent audit entries.
	ListAuditEntries(ctx context.Context, limit int32) ([]models.AuditEntry, error)
}

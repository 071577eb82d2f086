// Package mapping converts between domain models and API wire types.
package mapping

import (
	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/models"
)

// ToApiVariant converts a domain Variant to its API form.
func ToApiVariant(v *models.Variant) *api.Variant {
	return &api.Variant{
		Id:         v.ID,
		SKU:        v.SKU,
		Title:      v.Title,
		Artist:     v.Artist,
		PriceCents: v.PriceCents,
		Currency:   v.Currency,
		Active:     v.Active,
		CreatedAt:  v.CreatedAt,
	}
}

// ToDomainNewVariant converts a creation request to a domain Variant.
// ID, Active and CreatedAt are assigned by the handler.
func ToDomainNewVariant(nv *api.NewVariant) *models.Variant {
	return &models.Variant{
		SKU:        nv.SKU,
		Title:      nv.Title,
		Artist:     nv.Artist,
		PriceCents: nv.PriceCents,
		Currency:   nv.Currency,
	}
}

// ToApiInventory converts a domain InventoryRecord to its API form,
// computing the derived available count.
func ToApiInventory(r *models.InventoryRecord) *api.Inventory {
	return &api.Inventory{
		VariantId: r.VariantID,
		OnHand:    r.OnHand,
		Allocated: r.Allocated,
		Available: r.Available(),
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToApiMovement converts a domain StockMovement to its API form.
func ToApiMovement(m *models.StockMovement) *api.StockMovement {
	return &api.StockMovement{
		Id:         m.ID,
		VariantId:  m.VariantID,
		Delta:      m.Delta,
		Kind:       string(m.Kind),
		OrderId:    m.OrderID,
		OperatorId: m.OperatorID,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

// ToApiOrder converts a domain Order to its API form.
func ToApiOrder(o *models.Order) *api.Order {
	lines := make([]api.OrderLine, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, api.OrderLine{
			VariantId:      line.VariantID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.LineTotalCents,
		})
	}
	return &api.Order{
		Id:            o.ID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalCents:    o.TotalCents,
		Currency:      o.Currency,
		ProviderRef:   o.ProviderRef,
		CancelReason:  o.CancelReason,
		Lines:         lines,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToApiUndoToken converts a domain UndoToken to its API form. The payload is
// internal and never exposed.
func ToApiUndoToken(t *models.UndoToken) *api.UndoToken {
	if t == nil {
		return nil
	}
	return &api.UndoToken{
		Id:         t.ID,
		ActionType: t.ActionType,
		CreatedAt:  t.CreatedAt,
		ExpiresAt:  t.ExpiresAt,
		UndoneAt:   t.UndoneAt,
	}
}

// ToApiAuditEntry converts a domain AuditEntry to its API form.
func ToApiAuditEntry(e *models.AuditEntry) *api.AuditEntry {
	return &api.AuditEntry{
		Id:          e.ID,
		ActorId:     e.ActorID,
		EventType:   e.EventType,
		SubjectType: e.SubjectType,
		SubjectId:   e.SubjectID,
		Before:      e.Before,
		After:       e.After,
		Reason:      e.Reason,
		CreatedAt:   e.CreatedAt,
	}
}

// ToApiWebhookEvent converts a domain WebhookEvent to its API form.
func ToApiWebhookEvent(e *models.WebhookEvent) *api.WebhookEvent {
	return &api.WebhookEvent{
		EventId:       e.EventID,
		EventType:     e.EventType,
		OrderId:       e.OrderID,
		Outcome:       string(e.Outcome),
		FailureReason: e.FailureReason,
		ProcessedAt:   e.ProcessedAt,
	}
}

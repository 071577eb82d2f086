// Package handlers wires the per-resource HTTP handlers onto one router.
package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/spinshop/record-store-core/pkg/handlers/audit"
	"github.com/spinshop/record-store-core/pkg/handlers/bulkops"
	"github.com/spinshop/record-store-core/pkg/handlers/inventory"
	"github.com/spinshop/record-store-core/pkg/handlers/orders"
	"github.com/spinshop/record-store-core/pkg/handlers/paymentwebhook"
	"github.com/spinshop/record-store-core/pkg/handlers/undotokens"
	"github.com/spinshop/record-store-core/pkg/handlers/variants"
)

// Handlers groups the per-resource handlers mounted by Routes.
type Handlers struct {
	Variants  *variants.Handler
	Inventory *inventory.Handler
	Orders    *orders.Handler
	Bulk      *bulkops.Handler
	Undo      *undotokens.Handler
	Webhook   *paymentwebhook.Handler
	Audit     *audit.Handler
}

// Routes mounts every handler on the router.
func Routes(r chi.Router, h Handlers) {
	r.Route("/variants", func(r chi.Router) {
		r.Post("/", h.Variants.CreateVariant)
		r.Get("/", h.Variants.ListVariants)
		r.Get("/{variantId}", h.Variants.GetVariant)
		r.Put("/{variantId}/active", h.Variants.SetActive)

		r.Get("/{variantId}/inventory", h.Inventory.GetInventory)
		r.Get("/{variantId}/movements", h.Inventory.ListMovements)
		r.Post("/{variantId}/receive", h.Inventory.ReceiveStock)
		r.Post("/{variantId}/adjust", h.Inventory.AdjustStock)
		r.Post("/{variantId}/return", h.Inventory.ReturnStock)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Orders.CreateOrder)
		r.Get("/", h.Orders.ListOrders)
		r.Get("/{orderId}", h.Orders.GetOrder)
		r.Post("/{orderId}/advance", h.Orders.AdvanceOrder)
		r.Post("/{orderId}/cancel", h.Orders.CancelOrder)
		r.Post("/{orderId}/refund", h.Orders.RefundOrder)
	})

	r.Route("/bulk", func(r chi.Router) {
		r.Post("/orders/status", h.Bulk.BulkStatus)
		r.Post("/variants/activation", h.Bulk.BulkActivation)
	})

	r.Route("/undo", func(r chi.Router) {
		r.Get("/{tokenId}", h.Undo.GetToken)
		r.Post("/{tokenId}", h.Undo.Undo)
	})

	r.Post("/webhooks/payment", h.Webhook.HandleWebhook)
	r.Get("/webhooks/failed", h.Webhook.ListFailedEvents)

	r.Get("/audit", h.Audit.ListEntries)
}

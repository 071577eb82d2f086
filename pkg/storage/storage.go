package storage

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on the
// more granular interfaces (InventoryStore, OrderStore, etc.) instead of this one.
type Storage interface {
	VariantStore
	InventoryStore
	OrderStore
	AuditReader
	UndoTokenStore
	WebhookEventStore
}

// ApiStore defines the complete set of operations needed by the HTTP API.
// It is the same surface as Storage today; the alias keeps the boundary
// explicit so privileged lambda-only operations can be split out later.
type ApiStore = Storage

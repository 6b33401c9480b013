package ports

import (
	"context"

	"shopify-sync-bridge/internal/domain"
)

// ShopStore defines persistence for the tenant root.
type ShopStore interface {
	// Save inserts or updates a shop by primary key.
	Save(ctx context.Context, shop *domain.Shop) error

	// GetByDomain retrieves a shop by its unique domain. Returns (nil, nil)
	// when no record exists.
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)

	// Delete removes the shop row itself. Dependent rows must already be
	// gone; only the compliance teardown calls this.
	Delete(ctx context.Context, shopID uint) error
}

// SyncStore defines the idempotent merge operations for vendor resources.
// Each upsert is keyed by the vendor id scoped to one shop and runs inside
// its own transaction: re-processing the same resource updates in place.
type SyncStore interface {
	UpsertProduct(ctx context.Context, shopID uint, p *domain.ProductPayload) (*domain.ProductSync, error)
	UpsertOrder(ctx context.Context, shopID uint, o *domain.OrderPayload) (*domain.OrderSync, error)
	UpsertInventoryLevel(ctx context.Context, shopID uint, l *domain.InventoryLevelPayload) (*domain.InventoryLevel, error)

	// PurgeShopData deletes every synced row belonging to the shop in
	// FK-safe order and reports per-entity counts.
	PurgeShopData(ctx context.Context, shopID uint) (domain.DeletionCounts, error)
}

// WebhookLogStore defines the append-only audit trail. Status transitions
// are monotonic: processing moves to exactly one terminal state.
type WebhookLogStore interface {
	Create(ctx context.Context, log *domain.WebhookLog) error
	MarkCompleted(ctx context.Context, logID uint) error
	MarkFailed(ctx context.Context, logID uint, message string) error

	// DeleteForShop removes prior audit rows for a shop, sparing the
	// in-flight row identified by exceptID, and returns the count.
	DeleteForShop(ctx context.Context, shopID uint, exceptID uint) (int64, error)
}

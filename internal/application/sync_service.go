package application

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	"github.com/rs/zerolog"
)

// SyncService is the entity upsert engine: it merges vendor resource
// payloads into local storage, scoped to one shop, idempotently.
type SyncService struct {
	shops  ports.ShopStore
	store  ports.SyncStore
	client ports.VendorClient
	logger zerolog.Logger
}

// NewSyncService creates a new sync service.
func NewSyncService(
	shops ports.ShopStore,
	store ports.SyncStore,
	client ports.VendorClient,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		shops:  shops,
		store:  store,
		client: client,
		logger: logger,
	}
}

// SyncResult reports how many resources a batch sync merged successfully
// out of the total attempted.
type SyncResult struct {
	Synced int `json:"synced_count"`
	Total  int `json:"total"`
}

// UpsertProduct validates and merges one product payload for a shop.
func (s *SyncService) UpsertProduct(ctx context.Context, shopID uint, p *domain.ProductPayload) (*domain.ProductSync, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpsertProduct(ctx, shopID, p)
}

// UpsertOrder validates and merges one order payload for a shop.
func (s *SyncService) UpsertOrder(ctx context.Context, shopID uint, o *domain.OrderPayload) (*domain.OrderSync, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpsertOrder(ctx, shopID, o)
}

// UpsertInventoryLevel validates and merges one inventory level for a shop.
func (s *SyncService) UpsertInventoryLevel(ctx context.Context, shopID uint, l *domain.InventoryLevelPayload) (*domain.InventoryLevel, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpsertInventoryLevel(ctx, shopID, l)
}

// ProcessProductWebhook parses a product webhook body and merges it for the
// shop identified by domain.
func (s *SyncService) ProcessProductWebhook(ctx context.Context, shopDomain string, payload []byte) (*domain.ProductSync, error) {
	var p domain.ProductPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to parse product webhook payload: %w", err)
	}

	shop, err := s.resolveShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.UpsertProduct(ctx, shop.ID, &p)
}

// ProcessOrderWebhook parses an order webhook body and merges it for the
// shop identified by domain.
func (s *SyncService) ProcessOrderWebhook(ctx context.Context, shopDomain string, payload []byte) (*domain.OrderSync, error) {
	var o domain.OrderPayload
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("failed to parse order webhook payload: %w", err)
	}

	shop, err := s.resolveShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	return s.UpsertOrder(ctx, shop.ID, &o)
}

// SyncProducts fetches products from the vendor and merges them one by one.
// A vendor connectivity failure aborts the sync; a single resource failure
// is logged, skipped and counted.
func (s *SyncService) SyncProducts(ctx context.Context, shopDomain string) (*SyncResult, error) {
	shop, err := s.resolveShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	products, err := s.client.GetProducts(ctx, shop.ShopDomain, shop.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	result := &SyncResult{Total: len(products)}
	for i := range products {
		if _, err := s.UpsertProduct(ctx, shop.ID, &products[i]); err != nil {
			s.logger.Error().
				Err(err).
				Str("shop", shop.ShopDomain).
				Int64("productId", products[i].ID).
				Msg("Failed to sync product, skipping")
			continue
		}
		result.Synced++
	}

	s.logger.Info().
		Str("shop", shop.ShopDomain).
		Int("synced", result.Synced).
		Int("total", result.Total).
		Msg("Product sync finished")
	return result, nil
}

// SyncOrders fetches orders from the vendor and merges them one by one.
func (s *SyncService) SyncOrders(ctx context.Context, shopDomain string) (*SyncResult, error) {
	shop, err := s.resolveShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	orders, err := s.client.GetOrders(ctx, shop.ShopDomain, shop.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := &SyncResult{Total: len(orders)}
	for i := range orders {
		if _, err := s.UpsertOrder(ctx, shop.ID, &orders[i]); err != nil {
			s.logger.Error().
				Err(err).
				Str("shop", shop.ShopDomain).
				Int64("orderId", orders[i].ID).
				Msg("Failed to sync order, skipping")
			continue
		}
		result.Synced++
	}

	s.logger.Info().
		Str("shop", shop.ShopDomain).
		Int("synced", result.Synced).
		Int("total", result.Total).
		Msg("Order sync finished")
	return result, nil
}

// SyncInventory fetches inventory levels from the vendor and merges them.
func (s *SyncService) SyncInventory(ctx context.Context, shopDomain string) (*SyncResult, error) {
	shop, err := s.resolveShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	levels, err := s.client.GetInventoryLevels(ctx, shop.ShopDomain, shop.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory levels: %w", err)
	}

	result := &SyncResult{Total: len(levels)}
	for i := range levels {
		if _, err := s.UpsertInventoryLevel(ctx, shop.ID, &levels[i]); err != nil {
			s.logger.Error().
				Err(err).
				Str("shop", shop.ShopDomain).
				Int64("inventoryItemId", levels[i].InventoryItemID).
				Msg("Failed to sync inventory level, skipping")
			continue
		}
		result.Synced++
	}

	s.logger.Info().
		Str("shop", shop.ShopDomain).
		Int("synced", result.Synced).
		Int("total", result.Total).
		Msg("Inventory sync finished")
	return result, nil
}

func (s *SyncService) resolveShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	shop, err := s.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, domain.ErrShopNotFound
	}
	return shop, nil
}

package ports

import (
	"context"

	"shopify-sync-bridge/internal/domain"
)

// VendorClient defines the Shopify API operations the bridge needs. Each
// call is parameterized by shop domain and access token so concurrent
// requests for different shops never share session state.
type VendorClient interface {
	// AuthorizeURL builds the OAuth authorization URL for a shop.
	AuthorizeURL(shop string, state string) string

	// ExchangeToken swaps an authorization code for an access token.
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// RegisterWebhook subscribes the given callback address to a topic.
	RegisterWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error

	GetProducts(ctx context.Context, shop string, accessToken string) ([]domain.ProductPayload, error)
	GetOrders(ctx context.Context, shop string, accessToken string) ([]domain.OrderPayload, error)
	GetInventoryLevels(ctx context.Context, shop string, accessToken string) ([]domain.InventoryLevelPayload, error)
}

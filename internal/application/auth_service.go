package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	"github.com/rs/zerolog"
)

// AuthService completes the OAuth flow: exchanging the authorization code,
// persisting the shop credential, and registering the mandatory compliance
// webhooks with the vendor.
type AuthService struct {
	shops  ports.ShopStore
	client ports.VendorClient
	logger zerolog.Logger
	appURL string
}

// NewAuthService creates a new auth service. appURL is the public base URL
// webhook callbacks are registered under.
func NewAuthService(
	shops ports.ShopStore,
	client ports.VendorClient,
	logger zerolog.Logger,
	appURL string,
) *AuthService {
	return &AuthService{
		shops:  shops,
		client: client,
		logger: logger,
		appURL: appURL,
	}
}

// ValidShopDomain reports whether a shop parameter looks like a vendor
// shop domain.
func ValidShopDomain(shop string) bool {
	return strings.HasSuffix(shop, ".myshopify.com") && len(shop) > len(".myshopify.com")
}

// AuthorizeURL builds the vendor authorization URL for the OAuth redirect.
func (s *AuthService) AuthorizeURL(shop string, state string) string {
	return s.client.AuthorizeURL(shop, state)
}

// CompleteOAuth exchanges the authorization code for an access token and
// creates or updates the shop record. Webhook registration failures are
// logged but never abort the authorization.
func (s *AuthService) CompleteOAuth(ctx context.Context, shopDomain string, code string) (*domain.Shop, error) {
	token, err := s.client.ExchangeToken(ctx, shopDomain, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	shop, err := s.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		shop = &domain.Shop{ShopDomain: shopDomain, IsActive: true}
	}
	shop.AccessToken = token
	shop.IsActive = true
	shop.UpdatedAt = time.Now().UTC()

	if err := s.shops.Save(ctx, shop); err != nil {
		return nil, err
	}

	s.registerComplianceWebhooks(ctx, shop)

	s.logger.Info().
		Str("shop", shopDomain).
		Msg("OAuth completed, shop credential stored")
	return shop, nil
}

func (s *AuthService) registerComplianceWebhooks(ctx context.Context, shop *domain.Shop) {
	for _, topic := range domain.ComplianceTopics {
		address := fmt.Sprintf("%s/webhooks/%s", s.appURL, topic)
		if err := s.client.RegisterWebhook(ctx, shop.ShopDomain, shop.AccessToken, topic, address); err != nil {
			s.logger.Error().
				Err(err).
				Str("shop", shop.ShopDomain).
				Str("topic", topic).
				Msg("Failed to register compliance webhook")
			continue
		}
		s.logger.Info().
			Str("shop", shop.ShopDomain).
			Str("topic", topic).
			Msg("Registered compliance webhook")
	}
}

package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxResourcesPerRequest = 250

type client struct {
	apiKey    string
	apiSecret string
	scopes    string
	app       goshopify.App
	logger    zerolog.Logger
}

// NewClient creates a Shopify client adapter. Each call takes the shop
// domain and access token explicitly, so there is no ambient session state
// shared between shops.
func NewClient(apiKey, apiSecret, scopes, redirectURL string, logger zerolog.Logger) ports.VendorClient {
	app := goshopify.App{
		ApiKey:      apiKey,
		ApiSecret:   apiSecret,
		RedirectUrl: redirectURL,
	}
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		scopes:    scopes,
		app:       app,
		logger:    logger,
	}
}

func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	cl, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return cl, nil
}

// AuthorizeURL builds the OAuth authorization URL. Scopes are
// comma-separated with no spaces, as the vendor expects.
func (c *client) AuthorizeURL(shop string, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(c.scopes),
		url.QueryEscape(c.app.RedirectUrl),
		url.QueryEscape(state),
	)
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

func (c *client) RegisterWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) error {
	cl, err := c.createClient(shop, accessToken)
	if err != nil {
		return err
	}
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	if _, err := cl.Webhook.Create(ctx, webhook); err != nil {
		return fmt.Errorf("failed to create webhook for topic %s: %w", topic, err)
	}
	return nil
}

func (c *client) GetProducts(ctx context.Context, shop string, accessToken string) ([]domain.ProductPayload, error) {
	cl, err := c.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	products, err := cl.Product.List(ctx, goshopify.ListOptions{Limit: maxResourcesPerRequest})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	payloads := make([]domain.ProductPayload, 0, len(products))
	for i := range products {
		payloads = append(payloads, productPayload(&products[i]))
	}
	return payloads, nil
}

func (c *client) GetOrders(ctx context.Context, shop string, accessToken string) ([]domain.OrderPayload, error) {
	cl, err := c.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	orders, err := cl.Order.List(ctx, goshopify.OrderListOptions{
		ListOptions: goshopify.ListOptions{Limit: maxResourcesPerRequest},
		Status:      "any",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	payloads := make([]domain.OrderPayload, 0, len(orders))
	for i := range orders {
		payloads = append(payloads, orderPayload(&orders[i]))
	}
	return payloads, nil
}

func (c *client) GetInventoryLevels(ctx context.Context, shop string, accessToken string) ([]domain.InventoryLevelPayload, error) {
	cl, err := c.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	levels, err := cl.InventoryLevel.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory levels: %w", err)
	}

	payloads := make([]domain.InventoryLevelPayload, 0, len(levels))
	for _, l := range levels {
		payloads = append(payloads, domain.InventoryLevelPayload{
			InventoryItemID: int64(l.InventoryItemId),
			LocationID:      int64(l.LocationId),
			Available:       l.Available,
		})
	}
	return payloads, nil
}

// Conversions from the SDK types into explicit payload schemas.

func productPayload(p *goshopify.Product) domain.ProductPayload {
	payload := domain.ProductPayload{
		ID:               int64(p.Id),
		Title:            p.Title,
		Handle:           p.Handle,
		Status:           string(p.Status),
		ProductType:      p.ProductType,
		Vendor:           p.Vendor,
		Tags:             p.Tags,
		ShopifyCreatedAt: p.CreatedAt,
		ShopifyUpdatedAt: p.UpdatedAt,
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		payload.Variants = append(payload.Variants, domain.VariantPayload{
			ID:                  int64(v.Id),
			Title:               v.Title,
			Price:               dec(v.Price),
			Sku:                 v.Sku,
			Barcode:             v.Barcode,
			InventoryQuantity:   v.InventoryQuantity,
			InventoryManagement: v.InventoryManagement,
			InventoryPolicy:     string(v.InventoryPolicy),
			Weight:              dec(v.Weight),
			WeightUnit:          v.WeightUnit,
		})
	}
	return payload
}

func orderPayload(o *goshopify.Order) domain.OrderPayload {
	payload := domain.OrderPayload{
		ID:                int64(o.Id),
		OrderNumber:       json.Number(strconv.Itoa(o.OrderNumber)),
		FinancialStatus:   string(o.FinancialStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
		TotalPrice:        dec(o.TotalPrice),
		SubtotalPrice:     dec(o.SubtotalPrice),
		TotalTax:          dec(o.TotalTax),
		Currency:          o.Currency,
		Email:             o.Email,
		Phone:             o.Phone,
		ShippingAddress:   addressSnapshot(o.ShippingAddress),
		BillingAddress:    addressSnapshot(o.BillingAddress),
		ShopifyCreatedAt:  o.CreatedAt,
		ShopifyUpdatedAt:  o.UpdatedAt,
	}
	for i := range o.LineItems {
		li := &o.LineItems[i]
		payload.LineItems = append(payload.LineItems, domain.LineItemPayload{
			ID:            int64(li.Id),
			ProductID:     int64(li.ProductId),
			VariantID:     int64(li.VariantId),
			Title:         li.Title,
			VariantTitle:  li.VariantTitle,
			Quantity:      li.Quantity,
			Price:         dec(li.Price),
			TotalDiscount: dec(li.TotalDiscount),
			Sku:           li.SKU,
			Vendor:        li.Vendor,
		})
	}
	return payload
}

func addressSnapshot[T any](addr *T) json.RawMessage {
	if addr == nil {
		return nil
	}
	raw, err := json.Marshal(addr)
	if err != nil {
		return nil
	}
	return raw
}

func dec(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

package application

import (
	"context"
	"testing"

	"shopify-sync-bridge/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) complianceService() *ComplianceService {
	return NewComplianceService(e.shops, e.store, e.logs, zerolog.Nop())
}

func compliancePayload(shopDomain string) *domain.CompliancePayload {
	return &domain.CompliancePayload{ShopID: 954889, ShopDomain: shopDomain}
}

func seedShopData(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()

	product := domain.ProductPayload{
		ID: 555, Title: "Widget", Handle: "widget",
		Variants: []domain.VariantPayload{{ID: 1, Title: "Default", Price: decimal.RequireFromString("9.99")}},
	}
	_, err := env.store.UpsertProduct(ctx, env.shop.ID, &product)
	require.NoError(t, err)

	order := domain.OrderPayload{
		ID: 900, TotalPrice: decimal.RequireFromString("9.99"), Currency: "USD", FinancialStatus: "paid",
		LineItems: []domain.LineItemPayload{{ID: 10, Title: "Widget", Quantity: 1, Price: decimal.RequireFromString("9.99")}},
	}
	_, err = env.store.UpsertOrder(ctx, env.shop.ID, &order)
	require.NoError(t, err)

	_, err = env.store.UpsertInventoryLevel(ctx, env.shop.ID, &domain.InventoryLevelPayload{InventoryItemID: 1, LocationID: 2, Available: 3})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		log := &domain.WebhookLog{ShopID: &env.shop.ID, Topic: domain.TopicProductsCreate, ResourceID: int64(i)}
		require.NoError(t, env.logs.Create(ctx, log))
	}
}

func TestComplianceService_HandleShopRedact(t *testing.T) {
	ctx := context.Background()

	t.Run("full teardown with per-entity counts", func(t *testing.T) {
		env := newTestEnv(t)
		seedShopData(t, env)
		svc := env.complianceService()

		audit := &domain.WebhookLog{ShopID: &env.shop.ID, Topic: domain.TopicShopRedact, ResourceID: 954889}
		require.NoError(t, env.logs.Create(ctx, audit))

		result, err := svc.HandleShopRedact(ctx, compliancePayload(env.shop.ShopDomain), audit.ID)
		require.NoError(t, err)
		assert.True(t, result.ShopDeleted)
		assert.Equal(t, int64(1), result.Counts.Products)
		assert.Equal(t, int64(1), result.Counts.Variants)
		assert.Equal(t, int64(1), result.Counts.Orders)
		assert.Equal(t, int64(1), result.Counts.LineItems)
		assert.Equal(t, int64(1), result.Counts.InventoryLevels)
		assert.Equal(t, int64(2), result.LogsDeleted)

		shop, err := env.shops.GetByDomain(ctx, env.shop.ShopDomain)
		require.NoError(t, err)
		assert.Nil(t, shop)

		// The audit row for the redact itself survives as evidence.
		var logs []domain.WebhookLog
		require.NoError(t, env.db.Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, audit.ID, logs[0].ID)
	})

	t.Run("redelivery after teardown is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		seedShopData(t, env)
		svc := env.complianceService()

		audit := &domain.WebhookLog{Topic: domain.TopicShopRedact, ResourceID: 954889}
		require.NoError(t, env.logs.Create(ctx, audit))

		_, err := svc.HandleShopRedact(ctx, compliancePayload(env.shop.ShopDomain), audit.ID)
		require.NoError(t, err)

		result, err := svc.HandleShopRedact(ctx, compliancePayload(env.shop.ShopDomain), audit.ID)
		require.NoError(t, err)
		assert.False(t, result.ShopDeleted)
		assert.Zero(t, result.Counts.Total())
	})
}

func TestComplianceService_HandleDataRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown shop is not an error", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.complianceService()

		err := svc.HandleDataRequest(ctx, compliancePayload("ghost.myshopify.com"))
		assert.NoError(t, err)
	})

	t.Run("configured exporter is invoked", func(t *testing.T) {
		env := newTestEnv(t)
		called := false
		svc := env.complianceService().WithExporter(exporterFunc(func(ctx context.Context, shop *domain.Shop, p *domain.CompliancePayload) error {
			called = true
			assert.Equal(t, env.shop.ShopDomain, shop.ShopDomain)
			return nil
		}))

		require.NoError(t, svc.HandleDataRequest(ctx, compliancePayload(env.shop.ShopDomain)))
		assert.True(t, called)
	})
}

func TestComplianceService_HandleCustomerRedact(t *testing.T) {
	ctx := context.Background()

	t.Run("without anonymizer it only audits", func(t *testing.T) {
		env := newTestEnv(t)
		seedShopData(t, env)
		svc := env.complianceService()

		require.NoError(t, svc.HandleCustomerRedact(ctx, compliancePayload(env.shop.ShopDomain)))

		// Synced data is untouched: this operation never deletes rows itself.
		var count int64
		require.NoError(t, env.db.Model(&domain.OrderSync{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("configured anonymizer is invoked", func(t *testing.T) {
		env := newTestEnv(t)
		called := false
		svc := env.complianceService().WithAnonymizer(anonymizerFunc(func(ctx context.Context, shop *domain.Shop, p *domain.CompliancePayload) error {
			called = true
			return nil
		}))

		require.NoError(t, svc.HandleCustomerRedact(ctx, compliancePayload(env.shop.ShopDomain)))
		assert.True(t, called)
	})
}

type exporterFunc func(ctx context.Context, shop *domain.Shop, p *domain.CompliancePayload) error

func (f exporterFunc) Export(ctx context.Context, shop *domain.Shop, p *domain.CompliancePayload) error {
	return f(ctx, shop, p)
}

type anonymizerFunc func(ctx context.Context, shop *domain.Shop, p *domain.CompliancePayload) error

func (f anonymizerFunc) Anonymize(ctx context.Context, shop *domain.Shop, p *domain.CompliancePayload) error {
	return f(ctx, shop, p)
}

package repository

import (
	"context"
	"encoding/json"
	"testing"

	"shopify-sync-bridge/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSyncRepository_UpsertProduct(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSyncRepository(db)

	payload := domain.ProductPayload{
		ID:     555,
		Title:  "Classic Tee",
		Handle: "classic-tee",
		Status: "active",
		Vendor: "Acme",
		Variants: []domain.VariantPayload{
			{ID: 1001, Title: "Small", Price: decimal.RequireFromString("19.99"), Sku: "TEE-S"},
			{ID: 1002, Title: "Large", Price: decimal.RequireFromString("21.99"), Sku: "TEE-L"},
		},
	}

	first, err := repo.UpsertProduct(ctx, 1, &payload)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	t.Run("re-processing the same product updates in place", func(t *testing.T) {
		updated := payload
		updated.Title = "Classic Tee v2"
		updated.Status = "draft"

		second, err := repo.UpsertProduct(ctx, 1, &updated)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Classic Tee v2", second.Title)
		assert.Equal(t, "draft", second.Status)

		var count int64
		require.NoError(t, db.Model(&domain.ProductSync{}).Where("shop_id = ? AND product_id = ?", 1, 555).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("variants absent from a partial payload survive", func(t *testing.T) {
		partial := domain.ProductPayload{
			ID:       555,
			Title:    "Classic Tee v3",
			Handle:   "classic-tee",
			Status:   "active",
			Variants: []domain.VariantPayload{{ID: 1001, Title: "Small", Price: decimal.RequireFromString("17.99")}},
		}
		_, err := repo.UpsertProduct(ctx, 1, &partial)
		require.NoError(t, err)

		var variants []domain.ProductVariant
		require.NoError(t, db.Where("product_sync_id = ?", first.ID).Order("variant_id").Find(&variants).Error)
		require.Len(t, variants, 2)
		assert.True(t, decimal.RequireFromString("17.99").Equal(variants[0].Price))
		assert.Equal(t, "Large", variants[1].Title)
	})

	t.Run("same product id under another shop is a separate row", func(t *testing.T) {
		_, err := repo.UpsertProduct(ctx, 2, &payload)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.ProductSync{}).Where("product_id = ?", 555).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormSyncRepository_UpsertOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSyncRepository(db)

	t.Run("prices are stored exactly", func(t *testing.T) {
		order := domain.OrderPayload{
			ID:              820982911946154500,
			OrderNumber:     json.Number("1001"),
			FinancialStatus: "paid",
			TotalPrice:      decimal.RequireFromString("398.00"),
			SubtotalPrice:   decimal.RequireFromString("388.00"),
			TotalTax:        decimal.RequireFromString("10.00"),
			Currency:        "EUR",
			Email:           "jon@example.com",
			ShippingAddress: json.RawMessage(`{"city":"Ottawa","country":"Canada"}`),
			LineItems: []domain.LineItemPayload{
				{ID: 466157049, Title: "Classic Tee", Quantity: 2, Price: decimal.RequireFromString("199.00"), Sku: "TEE-S"},
			},
		}

		rec, err := repo.UpsertOrder(ctx, 1, &order)
		require.NoError(t, err)
		assert.Equal(t, "1001", rec.OrderNumber)
		assert.Equal(t, "paid", rec.Status)
		assert.True(t, decimal.RequireFromString("398.00").Equal(rec.TotalPrice))
		assert.JSONEq(t, `{"city":"Ottawa","country":"Canada"}`, rec.ShippingAddress)

		var items []domain.OrderLineItem
		require.NoError(t, db.Where("order_sync_id = ?", rec.ID).Find(&items).Error)
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
		assert.True(t, decimal.RequireFromString("199.00").Equal(items[0].Price))
	})

	t.Run("order number falls back to the order id", func(t *testing.T) {
		order := domain.OrderPayload{
			ID:              12345,
			FinancialStatus: "pending",
			TotalPrice:      decimal.RequireFromString("5.00"),
			Currency:        "USD",
		}

		rec, err := repo.UpsertOrder(ctx, 1, &order)
		require.NoError(t, err)
		assert.Equal(t, "12345", rec.OrderNumber)
	})
}

func TestGormSyncRepository_UpsertInventoryLevel(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSyncRepository(db)

	level := domain.InventoryLevelPayload{InventoryItemID: 808950810, LocationID: 905684977, Available: 6, LocationName: "Main"}

	first, err := repo.UpsertInventoryLevel(ctx, 1, &level)
	require.NoError(t, err)
	assert.Equal(t, 6, first.Available)

	level.Available = 0
	second, err := repo.UpsertInventoryLevel(ctx, 1, &level)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 0, second.Available)
}

func TestGormSyncRepository_PurgeShopData(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSyncRepository(db)

	seed := func(shopID uint) {
		product := domain.ProductPayload{
			ID: 555, Title: "Widget", Handle: "widget",
			Variants: []domain.VariantPayload{{ID: 1, Title: "Default", Price: decimal.RequireFromString("9.99")}},
		}
		_, err := repo.UpsertProduct(ctx, shopID, &product)
		require.NoError(t, err)

		order := domain.OrderPayload{
			ID: 900, TotalPrice: decimal.RequireFromString("9.99"), Currency: "USD", FinancialStatus: "paid",
			LineItems: []domain.LineItemPayload{{ID: 10, Title: "Widget", Quantity: 1, Price: decimal.RequireFromString("9.99")}},
		}
		_, err = repo.UpsertOrder(ctx, shopID, &order)
		require.NoError(t, err)

		_, err = repo.UpsertInventoryLevel(ctx, shopID, &domain.InventoryLevelPayload{InventoryItemID: 1, LocationID: 2, Available: 3})
		require.NoError(t, err)
	}

	seed(1)
	seed(2)

	counts, err := repo.PurgeShopData(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Products)
	assert.Equal(t, int64(1), counts.Variants)
	assert.Equal(t, int64(1), counts.Orders)
	assert.Equal(t, int64(1), counts.LineItems)
	assert.Equal(t, int64(1), counts.InventoryLevels)
	assert.Equal(t, int64(5), counts.Total())

	// The other shop's data is untouched.
	var productCount int64
	require.NoError(t, db.Model(&domain.ProductSync{}).Where("shop_id = ?", 2).Count(&productCount).Error)
	assert.Equal(t, int64(1), productCount)

	// Purging again is a harmless no-op.
	counts, err = repo.PurgeShopData(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

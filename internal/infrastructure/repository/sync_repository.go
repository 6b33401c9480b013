package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	"gorm.io/gorm"
)

// GormSyncRepository implements ports.SyncStore. Each upsert runs inside
// its own transaction so a failure mid-resource never leaves a parent row
// committed without its children; earlier resources in a batch stay
// committed.
type GormSyncRepository struct {
	db *gorm.DB
}

// NewGormSyncRepository creates a new GormSyncRepository.
func NewGormSyncRepository(db *gorm.DB) *GormSyncRepository {
	return &GormSyncRepository{db: db}
}

var _ ports.SyncStore = (*GormSyncRepository)(nil)

// UpsertProduct merges a product payload and its nested variants, keyed by
// (shop_id, product_id). Variants present locally but absent from the
// payload are left untouched to tolerate partial payloads.
func (r *GormSyncRepository) UpsertProduct(ctx context.Context, shopID uint, p *domain.ProductPayload) (*domain.ProductSync, error) {
	now := time.Now().UTC()
	var rec domain.ProductSync

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("shop_id = ? AND product_id = ?", shopID, p.ID).First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = domain.ProductSync{
				ShopID:    shopID,
				ProductID: p.ID,
			}
		case err != nil:
			return fmt.Errorf("failed to look up product %d: %w", p.ID, err)
		}

		rec.Title = p.Title
		rec.Handle = p.Handle
		rec.Status = p.Status
		rec.ProductType = p.ProductType
		rec.Vendor = p.Vendor
		rec.Tags = p.Tags
		rec.ShopifyCreatedAt = p.ShopifyCreatedAt
		rec.ShopifyUpdatedAt = p.ShopifyUpdatedAt
		rec.LastSynced = now

		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save product %d: %w", p.ID, err)
		}

		for i := range p.Variants {
			if err := upsertVariant(tx, rec.ID, &p.Variants[i], now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func upsertVariant(tx *gorm.DB, productSyncID uint, v *domain.VariantPayload, now time.Time) error {
	var rec domain.ProductVariant
	err := tx.Where("product_sync_id = ? AND variant_id = ?", productSyncID, v.ID).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = domain.ProductVariant{
			ProductSyncID: productSyncID,
			VariantID:     v.ID,
		}
	case err != nil:
		return fmt.Errorf("failed to look up variant %d: %w", v.ID, err)
	}

	rec.Title = v.Title
	rec.Price = v.Price
	rec.Sku = v.Sku
	rec.Barcode = v.Barcode
	rec.InventoryQuantity = v.InventoryQuantity
	rec.InventoryManagement = v.InventoryManagement
	rec.InventoryPolicy = v.InventoryPolicy
	rec.Weight = v.Weight
	rec.WeightUnit = v.WeightUnit
	rec.LastSynced = now

	if err := tx.Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save variant %d: %w", v.ID, err)
	}
	return nil
}

// UpsertOrder merges an order payload and its nested line items, keyed by
// (shop_id, order_id). Price fields stay exact decimals end to end.
func (r *GormSyncRepository) UpsertOrder(ctx context.Context, shopID uint, o *domain.OrderPayload) (*domain.OrderSync, error) {
	now := time.Now().UTC()
	var rec domain.OrderSync

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("shop_id = ? AND order_id = ?", shopID, o.ID).First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = domain.OrderSync{
				ShopID:  shopID,
				OrderID: o.ID,
			}
		case err != nil:
			return fmt.Errorf("failed to look up order %d: %w", o.ID, err)
		}

		orderNumber := o.OrderNumber.String()
		if orderNumber == "" || orderNumber == "0" {
			orderNumber = fmt.Sprintf("%d", o.ID)
		}

		rec.OrderNumber = orderNumber
		rec.Status = o.FinancialStatus
		rec.FinancialStatus = o.FinancialStatus
		rec.FulfillmentStatus = o.FulfillmentStatus
		rec.TotalPrice = o.TotalPrice
		rec.SubtotalPrice = o.SubtotalPrice
		rec.TotalTax = o.TotalTax
		rec.Currency = o.Currency
		rec.CustomerEmail = o.Email
		rec.CustomerPhone = o.Phone
		rec.ShippingAddress = string(o.ShippingAddress)
		rec.BillingAddress = string(o.BillingAddress)
		rec.ShopifyCreatedAt = o.ShopifyCreatedAt
		rec.ShopifyUpdatedAt = o.ShopifyUpdatedAt
		rec.LastSynced = now

		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save order %d: %w", o.ID, err)
		}

		for i := range o.LineItems {
			if err := upsertLineItem(tx, rec.ID, &o.LineItems[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func upsertLineItem(tx *gorm.DB, orderSyncID uint, li *domain.LineItemPayload) error {
	var rec domain.OrderLineItem
	err := tx.Where("order_sync_id = ? AND line_item_id = ?", orderSyncID, li.ID).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = domain.OrderLineItem{
			OrderSyncID: orderSyncID,
			LineItemID:  li.ID,
			ProductID:   li.ProductID,
			VariantID:   li.VariantID,
		}
	case err != nil:
		return fmt.Errorf("failed to look up line item %d: %w", li.ID, err)
	}

	rec.Title = li.Title
	rec.VariantTitle = li.VariantTitle
	rec.Quantity = li.Quantity
	rec.Price = li.Price
	rec.TotalDiscount = li.TotalDiscount
	rec.Sku = li.Sku
	rec.Vendor = li.Vendor

	if err := tx.Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save line item %d: %w", li.ID, err)
	}
	return nil
}

// UpsertInventoryLevel merges one availability count, keyed by
// (shop_id, inventory_item_id, location_id). Only the available quantity is
// updated on existing rows.
func (r *GormSyncRepository) UpsertInventoryLevel(ctx context.Context, shopID uint, l *domain.InventoryLevelPayload) (*domain.InventoryLevel, error) {
	now := time.Now().UTC()
	var rec domain.InventoryLevel

	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND inventory_item_id = ? AND location_id = ?", shopID, l.InventoryItemID, l.LocationID).
		First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = domain.InventoryLevel{
			ShopID:          shopID,
			InventoryItemID: l.InventoryItemID,
			LocationID:      l.LocationID,
			LocationName:    l.LocationName,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up inventory level: %w", err)
	}

	rec.Available = l.Available
	rec.LastSynced = now

	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to save inventory level: %w", err)
	}
	return &rec, nil
}

// PurgeShopData deletes every synced row for a shop in FK-safe order
// (children before parents) and reports per-entity counts. Deletion is
// explicit rather than relying on ORM cascade so the counts are auditable.
func (r *GormSyncRepository) PurgeShopData(ctx context.Context, shopID uint) (domain.DeletionCounts, error) {
	var counts domain.DeletionCounts

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Model(&domain.OrderSync{}).Select("id").Where("shop_id = ?", shopID)
		res := tx.Where("order_sync_id IN (?)", orderIDs).Delete(&domain.OrderLineItem{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete line items: %w", res.Error)
		}
		counts.LineItems = res.RowsAffected

		res = tx.Where("shop_id = ?", shopID).Delete(&domain.OrderSync{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete orders: %w", res.Error)
		}
		counts.Orders = res.RowsAffected

		productIDs := tx.Model(&domain.ProductSync{}).Select("id").Where("shop_id = ?", shopID)
		res = tx.Where("product_sync_id IN (?)", productIDs).Delete(&domain.ProductVariant{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete variants: %w", res.Error)
		}
		counts.Variants = res.RowsAffected

		res = tx.Where("shop_id = ?", shopID).Delete(&domain.ProductSync{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete products: %w", res.Error)
		}
		counts.Products = res.RowsAffected

		res = tx.Where("shop_id = ?", shopID).Delete(&domain.InventoryLevel{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete inventory levels: %w", res.Error)
		}
		counts.InventoryLevels = res.RowsAffected

		return nil
	})
	if err != nil {
		return domain.DeletionCounts{}, err
	}
	return counts, nil
}

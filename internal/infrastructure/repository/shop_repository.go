package repository

import (
	"context"
	"errors"
	"fmt"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	"gorm.io/gorm"
)

// GormShopRepository implements ports.ShopStore using GORM.
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository.
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

var _ ports.ShopStore = (*GormShopRepository)(nil)

// Save inserts or updates a shop by primary key.
func (r *GormShopRepository) Save(ctx context.Context, shop *domain.Shop) error {
	if err := r.db.WithContext(ctx).Save(shop).Error; err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}
	return nil
}

// GetByDomain retrieves a shop by its unique domain, (nil, nil) when absent.
func (r *GormShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

// Delete removes the shop row. Dependent rows must already be gone.
func (r *GormShopRepository) Delete(ctx context.Context, shopID uint) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Shop{}, shopID).Error; err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	return nil
}

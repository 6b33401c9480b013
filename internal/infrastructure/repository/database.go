package repository

import (
	"fmt"

	"shopify-sync-bridge/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the backing store and ensures the schema is in place.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables for every entity.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Shop{},
		&domain.ProductSync{},
		&domain.ProductVariant{},
		&domain.OrderSync{},
		&domain.OrderLineItem{},
		&domain.InventoryLevel{},
		&domain.WebhookLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WebhookLog status values. The status is monotonic: a row starts at
// processing and moves to exactly one of completed or failed.
const (
	WebhookStatusProcessing = "processing"
	WebhookStatusCompleted  = "completed"
	WebhookStatusFailed     = "failed"
)

// Shop is the tenant root. Every synced record belongs to exactly one shop,
// and deleting a shop (compliance teardown) removes every dependent row.
type Shop struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShopDomain  string    `gorm:"size:255;uniqueIndex;not null" json:"shop_domain"`
	AccessToken string    `gorm:"type:text;not null" json:"-"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductSync mirrors a vendor product, keyed by (shop, vendor product id).
type ProductSync struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ShopID           uint       `gorm:"not null;index;uniqueIndex:idx_shop_product" json:"shop_id"`
	ProductID        int64      `gorm:"not null;index;uniqueIndex:idx_shop_product" json:"product_id"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Handle           string     `gorm:"size:255;not null;index" json:"handle"`
	Status           string     `gorm:"size:50;not null;default:'active'" json:"status"`
	ProductType      string     `gorm:"size:100" json:"product_type"`
	Vendor           string     `gorm:"size:100" json:"vendor"`
	Tags             string     `gorm:"type:text" json:"tags"`
	ShopifyCreatedAt *time.Time `json:"shopify_created_at"`
	ShopifyUpdatedAt *time.Time `json:"shopify_updated_at"`
	CreatedAt        time.Time  `json:"created_at"`
	LastSynced       time.Time  `json:"last_synced"`
}

func (ProductSync) TableName() string { return "product_sync" }

// ProductVariant is owned by a ProductSync row, keyed by
// (product_sync_id, vendor variant id).
type ProductVariant struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	ProductSyncID       uint            `gorm:"not null;index;uniqueIndex:idx_product_variant" json:"product_sync_id"`
	VariantID           int64           `gorm:"not null;index;uniqueIndex:idx_product_variant" json:"variant_id"`
	Title               string          `gorm:"size:255;not null" json:"title"`
	Price               decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Sku                 string          `gorm:"size:100;index" json:"sku"`
	Barcode             string          `gorm:"size:100" json:"barcode"`
	InventoryQuantity   int             `gorm:"default:0" json:"inventory_quantity"`
	InventoryManagement string          `gorm:"size:50" json:"inventory_management"`
	InventoryPolicy     string          `gorm:"size:50" json:"inventory_policy"`
	Weight              decimal.Decimal `gorm:"type:numeric(8,2)" json:"weight"`
	WeightUnit          string          `gorm:"size:10" json:"weight_unit"`
	CreatedAt           time.Time       `json:"created_at"`
	LastSynced          time.Time       `json:"last_synced"`
}

func (ProductVariant) TableName() string { return "product_variants" }

// OrderSync mirrors a vendor order, keyed by (shop, vendor order id).
// Address snapshots are kept as opaque JSON text, not normalized.
type OrderSync struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ShopID            uint            `gorm:"not null;index;uniqueIndex:idx_shop_order" json:"shop_id"`
	OrderID           int64           `gorm:"not null;index;uniqueIndex:idx_shop_order" json:"order_id"`
	OrderNumber       string          `gorm:"size:50;not null;index" json:"order_number"`
	Status            string          `gorm:"size:50;not null" json:"status"`
	FinancialStatus   string          `gorm:"size:50" json:"financial_status"`
	FulfillmentStatus string          `gorm:"size:50" json:"fulfillment_status"`
	TotalPrice        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	SubtotalPrice     decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal_price"`
	TotalTax          decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_tax"`
	Currency          string          `gorm:"size:10;not null" json:"currency"`
	CustomerEmail     string          `gorm:"size:255" json:"customer_email"`
	CustomerPhone     string          `gorm:"size:50" json:"customer_phone"`
	ShippingAddress   string          `gorm:"type:text" json:"shipping_address"`
	BillingAddress    string          `gorm:"type:text" json:"billing_address"`
	ShopifyCreatedAt  *time.Time      `json:"shopify_created_at"`
	ShopifyUpdatedAt  *time.Time      `json:"shopify_updated_at"`
	CreatedAt         time.Time       `json:"created_at"`
	LastSynced        time.Time       `json:"last_synced"`
}

func (OrderSync) TableName() string { return "order_sync" }

// OrderLineItem is owned by an OrderSync row, keyed by
// (order_sync_id, vendor line-item id).
type OrderLineItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderSyncID   uint            `gorm:"not null;index;uniqueIndex:idx_order_line_item" json:"order_sync_id"`
	LineItemID    int64           `gorm:"not null;index;uniqueIndex:idx_order_line_item" json:"line_item_id"`
	ProductID     int64           `gorm:"index" json:"product_id"`
	VariantID     int64           `gorm:"index" json:"variant_id"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	VariantTitle  string          `gorm:"size:255" json:"variant_title"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	TotalDiscount decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_discount"`
	Sku           string          `gorm:"size:100" json:"sku"`
	Vendor        string          `gorm:"size:100" json:"vendor"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }

// InventoryLevel mirrors availability for one (inventory item, location)
// pair, keyed by (shop, inventory item id, location id).
type InventoryLevel struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ShopID          uint      `gorm:"not null;index;uniqueIndex:idx_shop_inventory" json:"shop_id"`
	InventoryItemID int64     `gorm:"not null;index;uniqueIndex:idx_shop_inventory" json:"inventory_item_id"`
	LocationID      int64     `gorm:"not null;index;uniqueIndex:idx_shop_inventory" json:"location_id"`
	Available       int       `gorm:"not null" json:"available"`
	LocationName    string    `gorm:"size:255" json:"location_name"`
	CreatedAt       time.Time `json:"created_at"`
	LastSynced      time.Time `json:"last_synced"`
}

func (InventoryLevel) TableName() string { return "inventory_levels" }

// WebhookLog is the append-only audit record for one inbound webhook.
// ShopID stays nil until the shop domain resolves to a local record.
type WebhookLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ShopID       *uint      `gorm:"index" json:"shop_id"`
	Topic        string     `gorm:"size:50;not null" json:"topic"`
	ResourceID   int64      `gorm:"not null" json:"resource_id"`
	Status       string     `gorm:"size:20;not null" json:"status"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
	Payload      string     `gorm:"type:text" json:"payload"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
}

func (WebhookLog) TableName() string { return "webhook_logs" }

// DeletionCounts records how many rows of each entity type a shop redact
// removed, for compliance evidence.
type DeletionCounts struct {
	LineItems       int64 `json:"line_items"`
	Orders          int64 `json:"orders"`
	Variants        int64 `json:"variants"`
	Products        int64 `json:"products"`
	InventoryLevels int64 `json:"inventory_levels"`
}

// Total returns the number of deleted rows across all entity types.
func (c DeletionCounts) Total() int64 {
	return c.LineItems + c.Orders + c.Variants + c.Products + c.InventoryLevels
}

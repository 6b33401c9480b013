package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Webhook payloads are parsed into explicit schemas instead of being walked
// as untyped maps. Required fields are checked up front with a typed
// validation error so a bad payload fails fast, not at attribute lookup.

// ProductPayload is the vendor representation of a product.
type ProductPayload struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Handle           string           `json:"handle"`
	Status           string           `json:"status"`
	ProductType      string           `json:"product_type"`
	Vendor           string           `json:"vendor"`
	Tags             string           `json:"tags"`
	ShopifyCreatedAt *time.Time       `json:"created_at"`
	ShopifyUpdatedAt *time.Time       `json:"updated_at"`
	Variants         []VariantPayload `json:"variants"`
}

// Validate checks required fields and applies vendor defaults.
func (p *ProductPayload) Validate() error {
	switch {
	case p.ID == 0:
		return &ValidationError{Resource: "product", Field: "id"}
	case p.Title == "":
		return &ValidationError{Resource: "product", Field: "title"}
	case p.Handle == "":
		return &ValidationError{Resource: "product", Field: "handle"}
	}
	if p.Status == "" {
		p.Status = "active"
	}
	for i := range p.Variants {
		if err := p.Variants[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// VariantPayload is one variant nested inside a product payload.
type VariantPayload struct {
	ID                  int64           `json:"id"`
	Title               string          `json:"title"`
	Price               decimal.Decimal `json:"price"`
	Sku                 string          `json:"sku"`
	Barcode             string          `json:"barcode"`
	InventoryQuantity   int             `json:"inventory_quantity"`
	InventoryManagement string          `json:"inventory_management"`
	InventoryPolicy     string          `json:"inventory_policy"`
	Weight              decimal.Decimal `json:"weight"`
	WeightUnit          string          `json:"weight_unit"`
}

func (v *VariantPayload) Validate() error {
	switch {
	case v.ID == 0:
		return &ValidationError{Resource: "variant", Field: "id"}
	case v.Title == "":
		return &ValidationError{Resource: "variant", Field: "title"}
	}
	return nil
}

// OrderPayload is the vendor representation of an order. Address snapshots
// stay opaque; price fields are exact decimals.
type OrderPayload struct {
	ID                int64             `json:"id"`
	OrderNumber       json.Number       `json:"order_number"`
	FinancialStatus   string            `json:"financial_status"`
	FulfillmentStatus string            `json:"fulfillment_status"`
	TotalPrice        decimal.Decimal   `json:"total_price"`
	SubtotalPrice     decimal.Decimal   `json:"subtotal_price"`
	TotalTax          decimal.Decimal   `json:"total_tax"`
	Currency          string            `json:"currency"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	ShippingAddress   json.RawMessage   `json:"shipping_address"`
	BillingAddress    json.RawMessage   `json:"billing_address"`
	ShopifyCreatedAt  *time.Time        `json:"created_at"`
	ShopifyUpdatedAt  *time.Time        `json:"updated_at"`
	LineItems         []LineItemPayload `json:"line_items"`
}

func (o *OrderPayload) Validate() error {
	if o.ID == 0 {
		return &ValidationError{Resource: "order", Field: "id"}
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.FinancialStatus == "" {
		o.FinancialStatus = "pending"
	}
	for i := range o.LineItems {
		if err := o.LineItems[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LineItemPayload is one line item nested inside an order payload.
type LineItemPayload struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	VariantID     int64           `json:"variant_id"`
	Title         string          `json:"title"`
	VariantTitle  string          `json:"variant_title"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	Sku           string          `json:"sku"`
	Vendor        string          `json:"vendor"`
}

func (l *LineItemPayload) Validate() error {
	switch {
	case l.ID == 0:
		return &ValidationError{Resource: "line_item", Field: "id"}
	case l.Title == "":
		return &ValidationError{Resource: "line_item", Field: "title"}
	case l.Quantity <= 0:
		return &ValidationError{Resource: "line_item", Field: "quantity"}
	}
	return nil
}

// InventoryLevelPayload is the vendor representation of one
// (inventory item, location) availability count.
type InventoryLevelPayload struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       int    `json:"available"`
	LocationName    string `json:"location_name"`
}

func (i *InventoryLevelPayload) Validate() error {
	switch {
	case i.InventoryItemID == 0:
		return &ValidationError{Resource: "inventory_level", Field: "inventory_item_id"}
	case i.LocationID == 0:
		return &ValidationError{Resource: "inventory_level", Field: "location_id"}
	}
	return nil
}

// CompliancePayload covers the three mandatory compliance webhooks. The
// vendor sends shop_domain on all of them; the customer and data-request
// blocks are present only on the customer-facing topics.
type CompliancePayload struct {
	ShopID          int64                  `json:"shop_id"`
	ShopDomain      string                 `json:"shop_domain"`
	Customer        *ComplianceCustomer    `json:"customer,omitempty"`
	DataRequest     *ComplianceDataRequest `json:"data_request,omitempty"`
	OrdersRequested []int64                `json:"orders_requested,omitempty"`
}

// ComplianceCustomer identifies the data subject of a customer-facing
// compliance webhook.
type ComplianceCustomer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// ComplianceDataRequest carries the vendor's id for a data request, quoted
// back when fulfilling it.
type ComplianceDataRequest struct {
	ID int64 `json:"id"`
}

func (c *CompliancePayload) Validate() error {
	if c.ShopDomain == "" {
		return &ValidationError{Resource: "compliance", Field: "shop_domain"}
	}
	return nil
}

// ResourceID returns the identifier recorded in the audit log for a
// compliance payload: the customer id when present, otherwise the shop id.
func (c *CompliancePayload) ResourceID() int64 {
	if c.Customer != nil {
		return c.Customer.ID
	}
	return c.ShopID
}

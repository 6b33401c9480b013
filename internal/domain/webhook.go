package domain

// Webhook topics handled by the bridge, as the vendor names them.
const (
	TopicProductsCreate       = "products/create"
	TopicOrdersCreate         = "orders/create"
	TopicCustomersDataRequest = "customers/data_request"
	TopicCustomersRedact      = "customers/redact"
	TopicShopRedact           = "shop/redact"
)

// ComplianceTopics are the mandatory topics registered with the vendor
// after a successful authorization.
var ComplianceTopics = []string{
	TopicCustomersDataRequest,
	TopicCustomersRedact,
	TopicShopRedact,
}

// Sync resource kinds accepted by the sync trigger endpoints.
const (
	SyncProducts  = "products"
	SyncOrders    = "orders"
	SyncInventory = "inventory"
)

package queue

import (
	"encoding/json"
	"fmt"

	"shopify-sync-bridge/internal/domain"
)

// Task type names. Webhook tasks carry the raw verified payload; sync tasks
// carry only the shop domain and re-fetch from the vendor.
const (
	TypeWebhookProduct           = "webhook:product"
	TypeWebhookOrder             = "webhook:order"
	TypeComplianceDataRequest    = "compliance:data_request"
	TypeComplianceCustomerRedact = "compliance:customer_redact"
	TypeComplianceShopRedact     = "compliance:shop_redact"
	TypeSyncProducts             = "sync:products"
	TypeSyncOrders               = "sync:orders"
	TypeSyncInventory            = "sync:inventory"
)

// WebhookTask is the queue envelope for one verified webhook delivery.
type WebhookTask struct {
	Topic      string          `json:"topic"`
	ShopDomain string          `json:"shop_domain"`
	Payload    json.RawMessage `json:"payload"`
}

// SyncTask is the queue envelope for a full resync trigger.
type SyncTask struct {
	Resource   string `json:"resource"`
	ShopDomain string `json:"shop_domain"`
}

// taskTypeForTopic maps a webhook topic to its queue task type.
func taskTypeForTopic(topic string) (string, error) {
	switch topic {
	case domain.TopicProductsCreate:
		return TypeWebhookProduct, nil
	case domain.TopicOrdersCreate:
		return TypeWebhookOrder, nil
	case domain.TopicCustomersDataRequest:
		return TypeComplianceDataRequest, nil
	case domain.TopicCustomersRedact:
		return TypeComplianceCustomerRedact, nil
	case domain.TopicShopRedact:
		return TypeComplianceShopRedact, nil
	default:
		return "", fmt.Errorf("no task type for webhook topic %q", topic)
	}
}

// taskTypeForResource maps a sync resource kind to its queue task type.
func taskTypeForResource(resource string) (string, error) {
	switch resource {
	case domain.SyncProducts:
		return TypeSyncProducts, nil
	case domain.SyncOrders:
		return TypeSyncOrders, nil
	case domain.SyncInventory:
		return TypeSyncInventory, nil
	default:
		return "", fmt.Errorf("no task type for sync resource %q", resource)
	}
}

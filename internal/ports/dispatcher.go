package ports

import "context"

// TaskDispatcher hands verified payloads to the asynchronous worker pool.
// Delivery is at-least-once; handlers are idempotent, which is the
// correctness mechanism rather than queue-level exactly-once guarantees.
type TaskDispatcher interface {
	// EnqueueWebhook queues a verified webhook payload for processing and
	// returns the task id.
	EnqueueWebhook(ctx context.Context, topic string, shopDomain string, payload []byte) (string, error)

	// EnqueueSync queues a full resync of one resource kind for a shop.
	EnqueueSync(ctx context.Context, resource string, shopDomain string) (string, error)
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopify-sync-bridge/internal/ports"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Task time limits: a hard outer limit and a soft inner margin that lets a
// task clean up before forced termination.
const (
	TaskHardTimeout = 30 * time.Minute
	TaskSoftMargin  = 5 * time.Minute
	maxTaskRetries  = 3
)

// Dispatcher implements ports.TaskDispatcher on top of a durable Redis
// queue. Enqueue returns as soon as the task is persisted, so the
// HTTP-facing caller can acknowledge receipt before processing starts.
type Dispatcher struct {
	client *asynq.Client
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher around the queue connection.
func NewDispatcher(redisOpt asynq.RedisClientOpt, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client: asynq.NewClient(redisOpt),
		logger: logger,
	}
}

var _ ports.TaskDispatcher = (*Dispatcher)(nil)

// Close releases the queue connection.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}

// EnqueueWebhook queues one verified webhook payload for asynchronous
// processing and returns the task id.
func (d *Dispatcher) EnqueueWebhook(ctx context.Context, topic string, shopDomain string, payload []byte) (string, error) {
	taskType, err := taskTypeForTopic(topic)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(WebhookTask{
		Topic:      topic,
		ShopDomain: shopDomain,
		Payload:    payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal webhook task: %w", err)
	}

	return d.enqueue(ctx, asynq.NewTask(taskType, body))
}

// EnqueueSync queues a full resync of one resource kind for a shop.
func (d *Dispatcher) EnqueueSync(ctx context.Context, resource string, shopDomain string) (string, error) {
	taskType, err := taskTypeForResource(resource)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(SyncTask{
		Resource:   resource,
		ShopDomain: shopDomain,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sync task: %w", err)
	}

	return d.enqueue(ctx, asynq.NewTask(taskType, body))
}

func (d *Dispatcher) enqueue(ctx context.Context, task *asynq.Task) (string, error) {
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(maxTaskRetries),
		asynq.Timeout(TaskHardTimeout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task %s: %w", task.Type(), err)
	}

	d.logger.Debug().
		Str("type", task.Type()).
		Str("taskId", info.ID).
		Str("queue", info.Queue).
		Msg("Task enqueued")
	return info.ID, nil
}

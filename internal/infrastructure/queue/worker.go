package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopify-sync-bridge/internal/application"
	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/infrastructure/metrics"
	"shopify-sync-bridge/internal/ports"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker hosts the asynq task handlers. Webhook tasks write an audit row
// before processing and terminally mark it completed or failed; sync tasks
// run the batch resync engine directly.
type Worker struct {
	sync       *application.SyncService
	compliance *application.ComplianceService
	shops      ports.ShopStore
	logs       ports.WebhookLogStore
	logger     zerolog.Logger
}

// NewWorker creates a worker around the application services.
func NewWorker(
	sync *application.SyncService,
	compliance *application.ComplianceService,
	shops ports.ShopStore,
	logs ports.WebhookLogStore,
	logger zerolog.Logger,
) *Worker {
	return &Worker{
		sync:       sync,
		compliance: compliance,
		shops:      shops,
		logs:       logs,
		logger:     logger,
	}
}

// Register attaches every task handler to the mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeWebhookProduct, w.HandleProductWebhook)
	mux.HandleFunc(TypeWebhookOrder, w.HandleOrderWebhook)
	mux.HandleFunc(TypeComplianceDataRequest, w.HandleDataRequest)
	mux.HandleFunc(TypeComplianceCustomerRedact, w.HandleCustomerRedact)
	mux.HandleFunc(TypeComplianceShopRedact, w.HandleShopRedact)
	mux.HandleFunc(TypeSyncProducts, w.HandleSyncProducts)
	mux.HandleFunc(TypeSyncOrders, w.HandleSyncOrders)
	mux.HandleFunc(TypeSyncInventory, w.HandleSyncInventory)
}

// softDeadline derives a working context that leaves TaskSoftMargin of the
// hard task timeout for terminal bookkeeping (audit-row updates).
func softDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	soft := deadline.Add(-TaskSoftMargin)
	if soft.Before(time.Now()) {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, soft)
}

// HandleProductWebhook merges one product webhook delivery.
func (w *Worker) HandleProductWebhook(ctx context.Context, t *asynq.Task) error {
	return w.handleResourceWebhook(ctx, t, TypeWebhookProduct, func(ctx context.Context, env *WebhookTask) error {
		_, err := w.sync.ProcessProductWebhook(ctx, env.ShopDomain, env.Payload)
		return err
	})
}

// HandleOrderWebhook merges one order webhook delivery.
func (w *Worker) HandleOrderWebhook(ctx context.Context, t *asynq.Task) error {
	return w.handleResourceWebhook(ctx, t, TypeWebhookOrder, func(ctx context.Context, env *WebhookTask) error {
		_, err := w.sync.ProcessOrderWebhook(ctx, env.ShopDomain, env.Payload)
		return err
	})
}

// handleResourceWebhook is the shared webhook pipeline: unwrap the envelope,
// open the audit row, run the processor, then mark the row terminally.
// Validation failures and unknown shops are permanent: the row is marked
// failed and the task is not retried. Anything else returns the error so
// asynq retries up to maxTaskRetries.
func (w *Worker) handleResourceWebhook(ctx context.Context, t *asynq.Task, taskType string, process func(context.Context, *WebhookTask) error) error {
	var env WebhookTask
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		w.logger.Error().Err(err).Str("type", taskType).Msg("Malformed task envelope, dropping")
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		return fmt.Errorf("failed to decode task envelope: %v: %w", err, asynq.SkipRetry)
	}

	log, err := w.openAuditLog(ctx, &env)
	if err != nil {
		return err
	}

	workCtx, cancel := softDeadline(ctx)
	defer cancel()

	if err := process(workCtx, &env); err != nil {
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		if markErr := w.logs.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			w.logger.Error().Err(markErr).Uint("log_id", log.ID).Msg("Failed to mark webhook log failed")
		}
		if domain.IsValidation(err) || errors.Is(err, domain.ErrShopNotFound) {
			w.logger.Warn().Err(err).
				Str("type", taskType).
				Str("shop", env.ShopDomain).
				Msg("Webhook task failed permanently")
			return nil
		}
		return err
	}

	if err := w.logs.MarkCompleted(ctx, log.ID); err != nil {
		w.logger.Error().Err(err).Uint("log_id", log.ID).Msg("Failed to mark webhook log completed")
	}
	metrics.TasksProcessed.WithLabelValues(taskType, "completed").Inc()
	w.logger.Info().
		Str("type", taskType).
		Str("shop", env.ShopDomain).
		Uint("log_id", log.ID).
		Msg("Webhook task completed")
	return nil
}

// HandleDataRequest processes a customer data request. Compliance failures
// are recorded on the audit row and never retried automatically.
func (w *Worker) HandleDataRequest(ctx context.Context, t *asynq.Task) error {
	return w.handleComplianceWebhook(ctx, t, TypeComplianceDataRequest, func(ctx context.Context, p *domain.CompliancePayload, _ uint) error {
		return w.compliance.HandleDataRequest(ctx, p)
	})
}

// HandleCustomerRedact processes a customer redaction request.
func (w *Worker) HandleCustomerRedact(ctx context.Context, t *asynq.Task) error {
	return w.handleComplianceWebhook(ctx, t, TypeComplianceCustomerRedact, func(ctx context.Context, p *domain.CompliancePayload, _ uint) error {
		return w.compliance.HandleCustomerRedact(ctx, p)
	})
}

// HandleShopRedact tears down all data for the shop. The in-flight audit
// row survives the purge as evidence.
func (w *Worker) HandleShopRedact(ctx context.Context, t *asynq.Task) error {
	return w.handleComplianceWebhook(ctx, t, TypeComplianceShopRedact, func(ctx context.Context, p *domain.CompliancePayload, logID uint) error {
		result, err := w.compliance.HandleShopRedact(ctx, p, logID)
		if err != nil {
			return err
		}
		w.logger.Info().
			Str("shop", p.ShopDomain).
			Bool("shop_deleted", result.ShopDeleted).
			Int64("rows_deleted", result.Counts.Total()).
			Int64("logs_deleted", result.LogsDeleted).
			Msg("Shop redact finished")
		return nil
	})
}

func (w *Worker) handleComplianceWebhook(ctx context.Context, t *asynq.Task, taskType string, process func(context.Context, *domain.CompliancePayload, uint) error) error {
	var env WebhookTask
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		w.logger.Error().Err(err).Str("type", taskType).Msg("Malformed task envelope, dropping")
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		return fmt.Errorf("failed to decode task envelope: %v: %w", err, asynq.SkipRetry)
	}

	log, err := w.openAuditLog(ctx, &env)
	if err != nil {
		return err
	}

	var payload domain.CompliancePayload
	err = json.Unmarshal(env.Payload, &payload)
	if err == nil {
		err = payload.Validate()
	}
	if err != nil {
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		if markErr := w.logs.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			w.logger.Error().Err(markErr).Uint("log_id", log.ID).Msg("Failed to mark webhook log failed")
		}
		return nil
	}
	if payload.ShopDomain == "" {
		payload.ShopDomain = env.ShopDomain
	}

	workCtx, cancel := softDeadline(ctx)
	defer cancel()

	if err := process(workCtx, &payload, log.ID); err != nil {
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		if markErr := w.logs.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			w.logger.Error().Err(markErr).Uint("log_id", log.ID).Msg("Failed to mark webhook log failed")
		}
		w.logger.Error().Err(err).
			Str("type", taskType).
			Str("shop", env.ShopDomain).
			Msg("Compliance task failed, not retrying")
		return nil
	}

	if err := w.logs.MarkCompleted(ctx, log.ID); err != nil {
		w.logger.Error().Err(err).Uint("log_id", log.ID).Msg("Failed to mark webhook log completed")
	}
	metrics.TasksProcessed.WithLabelValues(taskType, "completed").Inc()
	return nil
}

// openAuditLog records the delivery in its initial processing state. The
// shop reference stays nil when the domain does not resolve locally.
func (w *Worker) openAuditLog(ctx context.Context, env *WebhookTask) (*domain.WebhookLog, error) {
	log := &domain.WebhookLog{
		Topic:      env.Topic,
		ResourceID: resourceID(env),
		Status:     domain.WebhookStatusProcessing,
		Payload:    string(env.Payload),
	}
	shop, err := w.shops.GetByDomain(ctx, env.ShopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shop %s: %w", env.ShopDomain, err)
	}
	if shop != nil {
		log.ShopID = &shop.ID
	}
	if err := w.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create webhook log: %w", err)
	}
	return log, nil
}

// resourceID extracts the vendor resource id for the audit row. Compliance
// payloads carry it under customer.id or shop_id; resource webhooks under
// the top-level id.
func resourceID(env *WebhookTask) int64 {
	switch env.Topic {
	case domain.TopicCustomersDataRequest, domain.TopicCustomersRedact, domain.TopicShopRedact:
		var p domain.CompliancePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return 0
		}
		return p.ResourceID()
	default:
		var p struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return 0
		}
		return p.ID
	}
}

// HandleSyncProducts runs a full product resync for one shop.
func (w *Worker) HandleSyncProducts(ctx context.Context, t *asynq.Task) error {
	return w.handleSync(ctx, t, TypeSyncProducts, w.sync.SyncProducts)
}

// HandleSyncOrders runs a full order resync for one shop.
func (w *Worker) HandleSyncOrders(ctx context.Context, t *asynq.Task) error {
	return w.handleSync(ctx, t, TypeSyncOrders, w.sync.SyncOrders)
}

// HandleSyncInventory runs a full inventory resync for one shop.
func (w *Worker) HandleSyncInventory(ctx context.Context, t *asynq.Task) error {
	return w.handleSync(ctx, t, TypeSyncInventory, w.sync.SyncInventory)
}

func (w *Worker) handleSync(ctx context.Context, t *asynq.Task, taskType string, run func(context.Context, string) (*application.SyncResult, error)) error {
	var task SyncTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error().Err(err).Str("type", taskType).Msg("Malformed task envelope, dropping")
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		return fmt.Errorf("failed to decode task envelope: %v: %w", err, asynq.SkipRetry)
	}

	workCtx, cancel := softDeadline(ctx)
	defer cancel()

	result, err := run(workCtx, task.ShopDomain)
	if err != nil {
		metrics.TasksProcessed.WithLabelValues(taskType, "failed").Inc()
		if errors.Is(err, domain.ErrShopNotFound) {
			w.logger.Warn().Str("shop", task.ShopDomain).Str("type", taskType).Msg("Sync task dropped, shop not found")
			return nil
		}
		return err
	}

	metrics.TasksProcessed.WithLabelValues(taskType, "completed").Inc()
	w.logger.Info().
		Str("type", taskType).
		Str("shop", task.ShopDomain).
		Int("synced", result.Synced).
		Int("total", result.Total).
		Msg("Sync task completed")
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	"gorm.io/gorm"
)

// GormWebhookLogRepository implements ports.WebhookLogStore. Terminal
// updates are guarded on the current status so a completed or failed row
// can never revert.
type GormWebhookLogRepository struct {
	db *gorm.DB
}

// NewGormWebhookLogRepository creates a new GormWebhookLogRepository.
func NewGormWebhookLogRepository(db *gorm.DB) *GormWebhookLogRepository {
	return &GormWebhookLogRepository{db: db}
}

var _ ports.WebhookLogStore = (*GormWebhookLogRepository)(nil)

// Create appends a new audit row. Status defaults to processing.
func (r *GormWebhookLogRepository) Create(ctx context.Context, log *domain.WebhookLog) error {
	if log.Status == "" {
		log.Status = domain.WebhookStatusProcessing
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create webhook log: %w", err)
	}
	return nil
}

// MarkCompleted transitions a processing row to completed.
func (r *GormWebhookLogRepository) MarkCompleted(ctx context.Context, logID uint) error {
	return r.terminate(ctx, logID, domain.WebhookStatusCompleted, "")
}

// MarkFailed transitions a processing row to failed with an error message.
func (r *GormWebhookLogRepository) MarkFailed(ctx context.Context, logID uint, message string) error {
	return r.terminate(ctx, logID, domain.WebhookStatusFailed, message)
}

func (r *GormWebhookLogRepository) terminate(ctx context.Context, logID uint, status string, message string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": &now,
	}
	if message != "" {
		updates["error_message"] = message
	}

	res := r.db.WithContext(ctx).
		Model(&domain.WebhookLog{}).
		Where("id = ? AND status = ?", logID, domain.WebhookStatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update webhook log %d: %w", logID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("webhook log %d is not in processing state", logID)
	}
	return nil
}

// DeleteForShop removes prior audit rows for a shop, sparing the in-flight
// row for the operation issuing the delete.
func (r *GormWebhookLogRepository) DeleteForShop(ctx context.Context, shopID uint, exceptID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("shop_id = ? AND id <> ?", shopID, exceptID).
		Delete(&domain.WebhookLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete webhook logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

package application

import (
	"context"

	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/ports"

	"github.com/rs/zerolog"
)

// DataExporter collects a customer's data for a data-subject request. The
// concrete export mechanism is an extension point; the bridge only tracks
// the request in the audit log against the 30-day SLA.
type DataExporter interface {
	Export(ctx context.Context, shop *domain.Shop, payload *domain.CompliancePayload) error
}

// CustomerAnonymizer deletes or anonymizes a customer's data. As with
// DataExporter, the mechanism is pluggable; the contract is only that the
// data must eventually be deleted or anonymized.
type CustomerAnonymizer interface {
	Anonymize(ctx context.Context, shop *domain.Shop, payload *domain.CompliancePayload) error
}

// ComplianceService handles the vendor's mandatory data-subject and
// deletion notifications. Every operation tolerates repeated delivery.
type ComplianceService struct {
	shops      ports.ShopStore
	store      ports.SyncStore
	logs       ports.WebhookLogStore
	exporter   DataExporter       // optional
	anonymizer CustomerAnonymizer // optional
	logger     zerolog.Logger
}

// NewComplianceService creates a new compliance service. Exporter and
// anonymizer may be nil, in which case the corresponding requests are
// audit-logged for manual follow-up only.
func NewComplianceService(
	shops ports.ShopStore,
	store ports.SyncStore,
	logs ports.WebhookLogStore,
	logger zerolog.Logger,
) *ComplianceService {
	return &ComplianceService{
		shops:  shops,
		store:  store,
		logs:   logs,
		logger: logger,
	}
}

// WithExporter plugs in a data-request exporter.
func (s *ComplianceService) WithExporter(e DataExporter) *ComplianceService {
	s.exporter = e
	return s
}

// WithAnonymizer plugs in a customer-redact anonymizer.
func (s *ComplianceService) WithAnonymizer(a CustomerAnonymizer) *ComplianceService {
	s.anonymizer = a
	return s
}

// ShopRedactResult records what a shop redact removed, for compliance
// evidence.
type ShopRedactResult struct {
	ShopDeleted bool                  `json:"shop_deleted"`
	Counts      domain.DeletionCounts `json:"counts"`
	LogsDeleted int64                 `json:"logs_deleted"`
}

// HandleDataRequest processes a customer data request. The data collection
// itself is delegated to the exporter when one is configured; otherwise the
// request is recorded for manual handling within the external SLA.
func (s *ComplianceService) HandleDataRequest(ctx context.Context, payload *domain.CompliancePayload) error {
	shop, err := s.shops.GetByDomain(ctx, payload.ShopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		s.logger.Warn().
			Str("shop", payload.ShopDomain).
			Msg("Data request for unknown shop, nothing to collect")
		return nil
	}

	if s.exporter != nil {
		return s.exporter.Export(ctx, shop, payload)
	}

	s.logger.Info().
		Str("shop", shop.ShopDomain).
		Int64("customerId", payload.ResourceID()).
		Msg("Customer data request recorded, export pending manual follow-up")
	return nil
}

// HandleCustomerRedact processes a customer redaction request. The
// anonymization itself is delegated to the anonymizer when configured.
func (s *ComplianceService) HandleCustomerRedact(ctx context.Context, payload *domain.CompliancePayload) error {
	shop, err := s.shops.GetByDomain(ctx, payload.ShopDomain)
	if err != nil {
		return err
	}
	if shop == nil {
		s.logger.Warn().
			Str("shop", payload.ShopDomain).
			Msg("Customer redact for unknown shop, nothing to redact")
		return nil
	}

	if s.anonymizer != nil {
		return s.anonymizer.Anonymize(ctx, shop, payload)
	}

	s.logger.Info().
		Str("shop", shop.ShopDomain).
		Int64("customerId", payload.ResourceID()).
		Msg("Customer redact recorded, anonymization pending manual follow-up")
	return nil
}

// HandleShopRedact tears down everything stored for a shop: synced rows in
// FK-safe order with per-entity counts, then prior audit rows (sparing the
// in-flight row for this operation), then the shop itself. Redacting a shop
// that no longer exists is a no-op with zero counts, so repeated delivery
// is safe.
func (s *ComplianceService) HandleShopRedact(ctx context.Context, payload *domain.CompliancePayload, auditLogID uint) (*ShopRedactResult, error) {
	shop, err := s.shops.GetByDomain(ctx, payload.ShopDomain)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		s.logger.Info().
			Str("shop", payload.ShopDomain).
			Msg("Shop redact for unknown shop, nothing to delete")
		return &ShopRedactResult{}, nil
	}

	counts, err := s.store.PurgeShopData(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	logsDeleted, err := s.logs.DeleteForShop(ctx, shop.ID, auditLogID)
	if err != nil {
		return nil, err
	}

	if err := s.shops.Delete(ctx, shop.ID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("shop", shop.ShopDomain).
		Int64("rowsDeleted", counts.Total()).
		Int64("logsDeleted", logsDeleted).
		Int64("orders", counts.Orders).
		Int64("lineItems", counts.LineItems).
		Int64("products", counts.Products).
		Int64("variants", counts.Variants).
		Int64("inventoryLevels", counts.InventoryLevels).
		Msg("Shop redact completed")

	return &ShopRedactResult{
		ShopDeleted: true,
		Counts:      counts,
		LogsDeleted: logsDeleted,
	}, nil
}

package main

import (
	"os"

	"shopify-sync-bridge/internal/application"
	"shopify-sync-bridge/internal/infrastructure/config"
	"shopify-sync-bridge/internal/infrastructure/queue"
	"shopify-sync-bridge/internal/infrastructure/repository"
	shopifyinfra "shopify-sync-bridge/internal/infrastructure/shopify"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "worker").Logger()
	cfg := config.Load(logger)

	db, err := repository.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	shopRepo := repository.NewGormShopRepository(db)
	syncRepo := repository.NewGormSyncRepository(db)
	logRepo := repository.NewGormWebhookLogRepository(db)

	vendorClient := shopifyinfra.NewClient(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.ShopifyScopes,
		cfg.AppURL+"/auth/callback",
		logger,
	)

	syncService := application.NewSyncService(shopRepo, syncRepo, vendorClient, logger)
	complianceService := application.NewComplianceService(shopRepo, syncRepo, logRepo, logger)

	worker := queue.NewWorker(syncService, complianceService, shopRepo, logRepo, logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.QueueDB},
		asynq.Config{Concurrency: 10},
	)
	mux := asynq.NewServeMux()
	worker.Register(mux)

	logger.Info().Str("redis", cfg.RedisAddr).Msg("Starting worker")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("Worker stopped")
	}
}

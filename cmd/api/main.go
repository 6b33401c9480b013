package main

import (
	"net/http"
	"os"

	"shopify-sync-bridge/internal/application"
	"shopify-sync-bridge/internal/domain"
	"shopify-sync-bridge/internal/infrastructure/config"
	"shopify-sync-bridge/internal/infrastructure/queue"
	"shopify-sync-bridge/internal/infrastructure/repository"
	"shopify-sync-bridge/internal/infrastructure/sessions"
	shopifyinfra "shopify-sync-bridge/internal/infrastructure/shopify"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load(logger)

	db, err := repository.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Repositories
	shopRepo := repository.NewGormShopRepository(db)

	// Infrastructure
	verifier := shopifyinfra.NewVerifier(cfg.WebhookSecret)
	vendorClient := shopifyinfra.NewClient(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.ShopifyScopes,
		cfg.AppURL+"/auth/callback",
		logger,
	)
	dispatcher := queue.NewDispatcher(asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
		DB:   cfg.QueueDB,
	}, logger)
	sessionStore := sessions.NewStore(cfg.RedisAddr, cfg.SessionDB, logger)
	defer sessionStore.Close()

	// Application services
	authService := application.NewAuthService(shopRepo, vendorClient, logger, cfg.AppURL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Webhook ingestion
	r.Post("/webhooks/products/create", webhookHandler(domain.TopicProductsCreate, verifier, dispatcher, logger))
	r.Post("/webhooks/orders/create", webhookHandler(domain.TopicOrdersCreate, verifier, dispatcher, logger))
	r.Post("/webhooks/customers/data_request", webhookHandler(domain.TopicCustomersDataRequest, verifier, dispatcher, logger))
	r.Post("/webhooks/customers/redact", webhookHandler(domain.TopicCustomersRedact, verifier, dispatcher, logger))
	r.Post("/webhooks/shop/redact", webhookHandler(domain.TopicShopRedact, verifier, dispatcher, logger))

	// Sync triggers
	r.Post("/api/sync/products", syncTriggerHandler(domain.SyncProducts, shopRepo, dispatcher, logger))
	r.Post("/api/sync/orders", syncTriggerHandler(domain.SyncOrders, shopRepo, dispatcher, logger))
	r.Post("/api/sync/inventory", syncTriggerHandler(domain.SyncInventory, shopRepo, dispatcher, logger))

	// Live passthrough reads
	r.Get("/api/products", listHandler("products", shopRepo, vendorClient.GetProducts, logger))
	r.Get("/api/orders", listHandler("orders", shopRepo, vendorClient.GetOrders, logger))
	r.Get("/api/inventory", listHandler("inventory_levels", shopRepo, vendorClient.GetInventoryLevels, logger))

	// OAuth
	r.Get("/auth", authInitHandler(authService, sessionStore, logger))
	r.Get("/auth/callback", authCallbackHandler(authService, sessionStore, logger))

	// Operational endpoints
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	if !verifier.Enabled() {
		logger.Warn().Msg("Webhook signature verification is disabled")
	}

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

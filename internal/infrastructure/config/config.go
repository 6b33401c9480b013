package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds environment-level settings for both the API and the worker
// process.
type Config struct {
	Port        string
	AppURL      string
	DatabaseDSN string

	// RedisAddr backs both the task queue and the OAuth session store,
	// on logically separate databases: QueueDB for the queue/result
	// backend, SessionDB for sessions. The split is a hard requirement,
	// not an optimization.
	RedisAddr string
	QueueDB   int
	SessionDB int

	ShopifyAPIKey    string
	ShopifyAPISecret string
	ShopifyScopes    string
	WebhookSecret    string
}

const (
	defaultPort   = "8080"
	defaultAppURL = "http://localhost:8080"
	defaultRedis  = "localhost:6379"
	defaultDSN    = "host=localhost user=postgres dbname=shopify_sync sslmode=disable"
	defaultScopes = "read_products,write_products,read_orders,write_orders,read_inventory,write_inventory"
)

// Load reads configuration from the environment, falling back to
// development defaults. A missing .env file is not an error.
func Load(logger zerolog.Logger) Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg(".env file not found, using environment")
	}

	cfg := Config{
		Port:             getenv("PORT", defaultPort),
		AppURL:           getenv("APP_URL", defaultAppURL),
		DatabaseDSN:      getenv("DATABASE_URL", defaultDSN),
		RedisAddr:        getenv("REDIS_ADDR", defaultRedis),
		QueueDB:          0,
		SessionDB:        1,
		ShopifyAPIKey:    os.Getenv("SHOPIFY_API_KEY"),
		ShopifyAPISecret: os.Getenv("SHOPIFY_API_SECRET"),
		ShopifyScopes:    getenv("SHOPIFY_SCOPES", defaultScopes),
		WebhookSecret:    os.Getenv("WEBHOOK_SECRET"),
	}

	if cfg.WebhookSecret == "" {
		logger.Warn().Msg("WEBHOOK_SECRET not set: webhook signature verification is DISABLED (development only)")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the full process configuration. It is built once at startup
// and passed by reference into each component; nothing reads the environment
// after Load returns.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	// Shopify Admin API access
	ShopDomain string
	AdminToken string
	APIVersion string

	// Webhook signature verification. Empty disables verification
	// (development only).
	WebhookSecret string

	// Redis-backed webhook deduplication. Empty falls back to the
	// in-process store.
	RedisAddr string
	DedupTTL  time.Duration
}

// Load builds the configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "bundle-sync"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8084"),

		ShopDomain: getEnv("SHOPIFY_SHOP_DOMAIN", ""),
		AdminToken: getEnv("SHOPIFY_ADMIN_TOKEN", ""),
		APIVersion: getEnv("SHOPIFY_API_VERSION", "2024-01"),

		WebhookSecret: getEnv("SHOPIFY_WEBHOOK_SECRET", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		DedupTTL:  time.Duration(getEnvInt("WEBHOOK_DEDUP_TTL_HOURS", 48)) * time.Hour,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/cloverlane/inventory-sync/internal/config"
	"github.com/cloverlane/inventory-sync/internal/dedup"
	"github.com/cloverlane/inventory-sync/internal/shopify"
	"github.com/cloverlane/inventory-sync/internal/webhook"
	"github.com/cloverlane/inventory-sync/pkg/logger"
	"github.com/cloverlane/inventory-sync/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	isDevelopment := cfg.Environment == "development"
	logger.Init(cfg.ServiceName, isDevelopment)
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting bundle inventory sync service")

	// Initialize tracing
	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	if cfg.ShopDomain == "" || cfg.AdminToken == "" {
		logger.Logger.Fatal().Msg("SHOPIFY_SHOP_DOMAIN and SHOPIFY_ADMIN_TOKEN are required")
	}

	// Webhook deduplication store: Redis when configured, in-process otherwise
	dedupStore, redisClient := newDedupStore(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Shopify Admin API client
	client := shopify.NewClient(cfg.ShopDomain, cfg.AdminToken, cfg.APIVersion)

	// Initialize handler with Wire DI
	handler, err := webhook.InitializeHandler(cfg, client, dedupStore)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize webhook handler")
	}

	logger.Logger.Info().Msg("Webhook handler initialized")

	// Start HTTP server
	go startHTTPServer(handler, redisClient, cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down service...")
}

func newDedupStore(cfg *config.Config) (dedup.Store, *redis.Client) {
	if cfg.RedisAddr == "" {
		logger.Logger.Warn().Msg("REDIS_ADDR not set, using in-process webhook deduplication")
		return dedup.NewMemoryStore(cfg.DedupTTL), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis deduplication store initialized")
	return dedup.NewRedisStore(client, cfg.DedupTTL), client
}

func startHTTPServer(handler *webhook.Handler, redisClient *redis.Client, port string) {
	// Setup router
	router := mux.NewRouter()

	// Register webhook routes
	handler.RegisterRoutes(router)

	// Health check endpoint
	router.HandleFunc("/health", healthHandler(redisClient)).Methods(http.MethodGet)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func healthHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				status["redis"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

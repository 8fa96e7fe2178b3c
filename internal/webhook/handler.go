// Package webhook is the ingress for order lifecycle events. Deliveries are
// authenticated, deduplicated, acknowledged immediately, and only then handed
// to the reconciler in a detached goroutine: the platform's delivery timeout
// must never wait on the multi-call reconciliation, so processing failures
// are observable only through logs and metrics.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cloverlane/inventory-sync/internal/config"
	"github.com/cloverlane/inventory-sync/internal/dedup"
	"github.com/cloverlane/inventory-sync/internal/shopify"
	"github.com/cloverlane/inventory-sync/pkg/logger"
)

const (
	headerHmac       = "X-Shopify-Hmac-Sha256"
	headerDeliveryID = "X-Shopify-Webhook-Id"
)

// Processor consumes decoded lifecycle events, one method per topic
type Processor interface {
	OrderCreated(ctx context.Context, order *shopify.Order)
	OrderFulfilled(ctx context.Context, order *shopify.Order)
	OrderCancelled(ctx context.Context, order *shopify.Order)
	OrderEdited(ctx context.Context, order *shopify.Order)
	RefundCreated(ctx context.Context, refund *shopify.Refund)
}

// Handler terminates webhook deliveries
type Handler struct {
	processor Processor
	dedup     dedup.Store
	secret    string
}

// NewHandler creates a webhook handler
func NewHandler(cfg *config.Config, processor Processor, dedupStore dedup.Store) *Handler {
	if cfg.WebhookSecret == "" {
		logger.Logger.Warn().Msg("Webhook secret not configured, signature verification disabled")
	}
	return &Handler{
		processor: processor,
		dedup:     dedupStore,
		secret:    cfg.WebhookSecret,
	}
}

type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RegisterRoutes registers one POST route per webhook topic
func (h *Handler) RegisterRoutes(router *mux.Router) {
	sub := router.PathPrefix("/webhooks").Subrouter()

	sub.Handle("/orders/create", h.endpoint("orders/create", h.orderHandler("orders/create", h.processor.OrderCreated))).Methods(http.MethodPost)
	sub.Handle("/orders/fulfilled", h.endpoint("orders/fulfilled", h.orderHandler("orders/fulfilled", h.processor.OrderFulfilled))).Methods(http.MethodPost)
	sub.Handle("/orders/cancelled", h.endpoint("orders/cancelled", h.orderHandler("orders/cancelled", h.processor.OrderCancelled))).Methods(http.MethodPost)
	sub.Handle("/orders/edited", h.endpoint("orders/edited", h.orderHandler("orders/edited", h.processor.OrderEdited))).Methods(http.MethodPost)
	sub.Handle("/refunds/create", h.endpoint("refunds/create", h.refundHandler("refunds/create"))).Methods(http.MethodPost)
}

// endpoint wraps a topic handler with tracing and the shared
// verify/dedup/ack pipeline. process receives the raw body only after the
// delivery has been acknowledged.
func (h *Handler) endpoint(topic string, process func(ctx context.Context, body []byte)) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		webhooksReceived.WithLabelValues(topic).Inc()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			webhooksDropped.WithLabelValues(topic, "read").Inc()
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "could not read body"})
			return
		}

		if h.secret != "" && !VerifySignature(h.secret, body, r.Header.Get(headerHmac)) {
			logger.Warn(r.Context()).
				Str("topic", topic).
				Str("remote_addr", r.RemoteAddr).
				Msg("Rejected webhook with invalid signature")
			webhooksDropped.WithLabelValues(topic, "signature").Inc()
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "invalid signature"})
			return
		}

		deliveryID := r.Header.Get(headerDeliveryID)
		if deliveryID == "" {
			deliveryID = uuid.NewString()
		}

		seen, err := h.dedup.Seen(r.Context(), deliveryID)
		if err != nil {
			// Dedup is best-effort: an unreachable store must not block
			// deliveries
			logger.Error(r.Context()).
				Err(err).
				Str("topic", topic).
				Str("delivery_id", deliveryID).
				Msg("Deduplication check failed, processing anyway")
		} else if seen {
			logger.Info(r.Context()).
				Str("topic", topic).
				Str("delivery_id", deliveryID).
				Msg("Dropping duplicate webhook delivery")
			webhooksDropped.WithLabelValues(topic, "duplicate").Inc()
			respondJSON(w, http.StatusOK, Response{Success: true})
			return
		}

		// Acknowledge before processing. The detached context keeps the
		// trace link but outlives the request.
		respondJSON(w, http.StatusOK, Response{Success: true})

		ctx := context.WithoutCancel(r.Context())
		go process(ctx, body)
	}

	return otelhttp.NewHandler(http.HandlerFunc(fn), "webhook "+topic)
}

func (h *Handler) orderHandler(topic string, process func(ctx context.Context, order *shopify.Order)) func(ctx context.Context, body []byte) {
	return func(ctx context.Context, body []byte) {
		var order shopify.Order
		if err := json.Unmarshal(body, &order); err != nil {
			logger.Error(ctx).Err(err).Str("topic", topic).Msg("Dropping undecodable order payload")
			webhooksDropped.WithLabelValues(topic, "decode").Inc()
			return
		}
		process(ctx, &order)
	}
}

func (h *Handler) refundHandler(topic string) func(ctx context.Context, body []byte) {
	return func(ctx context.Context, body []byte) {
		var refund shopify.Refund
		if err := json.Unmarshal(body, &refund); err != nil {
			logger.Error(ctx).Err(err).Str("topic", topic).Msg("Dropping undecodable refund payload")
			webhooksDropped.WithLabelValues(topic, "decode").Inc()
			return
		}
		h.processor.RefundCreated(ctx, &refund)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

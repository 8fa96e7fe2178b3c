package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/cloverlane/inventory-sync/internal/config"
	"github.com/cloverlane/inventory-sync/internal/dedup"
	"github.com/cloverlane/inventory-sync/internal/shopify"
	"github.com/cloverlane/inventory-sync/pkg/logger"
)

func init() {
	logger.Init("webhook-test", false)
}

// recordingProcessor signals every event through a channel so tests can wait
// on the detached processing goroutine
type recordingProcessor struct {
	created   chan *shopify.Order
	cancelled chan *shopify.Order
	refunded  chan *shopify.Refund
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{
		created:   make(chan *shopify.Order, 10),
		cancelled: make(chan *shopify.Order, 10),
		refunded:  make(chan *shopify.Refund, 10),
	}
}

func (p *recordingProcessor) OrderCreated(_ context.Context, o *shopify.Order) { p.created <- o }
func (p *recordingProcessor) OrderFulfilled(_ context.Context, o *shopify.Order) {
}
func (p *recordingProcessor) OrderCancelled(_ context.Context, o *shopify.Order) { p.cancelled <- o }
func (p *recordingProcessor) OrderEdited(_ context.Context, o *shopify.Order)    {}
func (p *recordingProcessor) RefundCreated(_ context.Context, r *shopify.Refund) { p.refunded <- r }

const testSecret = "shpss_test_secret"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestHandler(secret string) (*recordingProcessor, *mux.Router) {
	processor := newRecordingProcessor()
	cfg := &config.Config{WebhookSecret: secret}
	handler := NewHandler(cfg, processor, dedup.NewMemoryStore(time.Hour))

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return processor, router
}

func post(router *mux.Router, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func waitForOrder(t *testing.T, ch chan *shopify.Order) *shopify.Order {
	t.Helper()
	select {
	case order := <-ch:
		return order
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event processing")
		return nil
	}
}

func TestHandler_ValidSignatureProcessed(t *testing.T) {
	processor, router := newTestHandler(testSecret)
	body := []byte(`{"id":1,"name":"#1001","line_items":[]}`)

	rec := post(router, "/webhooks/orders/create", body, map[string]string{
		headerHmac:       sign(testSecret, body),
		headerDeliveryID: "wh-1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	order := waitForOrder(t, processor.created)
	if order.ID != 1 || order.Name != "#1001" {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestHandler_InvalidSignatureRejected(t *testing.T) {
	processor, router := newTestHandler(testSecret)
	body := []byte(`{"id":1}`)

	rec := post(router, "/webhooks/orders/create", body, map[string]string{
		headerHmac:       sign("wrong-secret", body),
		headerDeliveryID: "wh-2",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	select {
	case order := <-processor.created:
		t.Errorf("rejected delivery must not be processed, got %+v", order)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandler_DuplicateDeliveryDropped(t *testing.T) {
	processor, router := newTestHandler(testSecret)
	body := []byte(`{"id":1,"name":"#1001"}`)
	headers := map[string]string{
		headerHmac:       sign(testSecret, body),
		headerDeliveryID: "wh-3",
	}

	first := post(router, "/webhooks/orders/create", body, headers)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 on first delivery, got %d", first.Code)
	}
	waitForOrder(t, processor.created)

	// Same delivery id again: acknowledged but not reprocessed
	second := post(router, "/webhooks/orders/create", body, headers)
	if second.Code != http.StatusOK {
		t.Fatalf("duplicate must still be acknowledged, got %d", second.Code)
	}

	select {
	case order := <-processor.created:
		t.Errorf("duplicate delivery must not be processed, got %+v", order)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandler_MalformedPayloadAcknowledged(t *testing.T) {
	processor, router := newTestHandler(testSecret)
	body := []byte(`{"id":`)

	// The source must not retry, so even an undecodable payload gets a 200
	rec := post(router, "/webhooks/orders/create", body, map[string]string{
		headerHmac:       sign(testSecret, body),
		headerDeliveryID: "wh-4",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for malformed payload, got %d", rec.Code)
	}

	select {
	case order := <-processor.created:
		t.Errorf("malformed payload must not be processed, got %+v", order)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandler_VerificationDisabledWithoutSecret(t *testing.T) {
	processor, router := newTestHandler("")
	body := []byte(`{"id":2,"name":"#1002"}`)

	rec := post(router, "/webhooks/orders/cancelled", body, map[string]string{
		headerDeliveryID: "wh-5",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	order := waitForOrder(t, processor.cancelled)
	if order.ID != 2 {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestHandler_RefundRoute(t *testing.T) {
	processor, router := newTestHandler(testSecret)
	body := []byte(`{"id":9,"order_id":1,"refund_line_items":[{"line_item_id":100,"quantity":2,"restock_type":"return"}]}`)

	rec := post(router, "/webhooks/refunds/create", body, map[string]string{
		headerHmac:       sign(testSecret, body),
		headerDeliveryID: "wh-6",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	select {
	case refund := <-processor.refunded:
		if refund.OrderID != 1 || len(refund.RefundLineItems) != 1 {
			t.Errorf("unexpected refund: %+v", refund)
		}
		if refund.RefundLineItems[0].RestockType != "return" {
			t.Errorf("unexpected restock type: %+v", refund.RefundLineItems[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refund processing")
	}
}

func TestHandler_MissingDeliveryIDStillProcessed(t *testing.T) {
	processor, router := newTestHandler(testSecret)
	body := []byte(`{"id":3,"name":"#1003"}`)
	headers := map[string]string{headerHmac: sign(testSecret, body)}

	// Without a delivery id a random one is assigned, so repeated posts are
	// each processed
	post(router, "/webhooks/orders/create", body, headers)
	waitForOrder(t, processor.created)

	post(router, "/webhooks/orders/create", body, headers)
	waitForOrder(t, processor.created)
}

package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cloverlane/inventory-sync/pkg/logger"
)

// Client talks to the Shopify Admin REST API. It performs no retries; every
// failure propagates to the caller, which decides whether to skip.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an Admin API client for the given shop. shopDomain may be
// a bare domain (myshop.myshopify.com) or a full URL, which test servers use.
func NewClient(shopDomain, token, apiVersion string) *Client {
	base := strings.TrimRight(shopDomain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	client := &Client{
		baseURL: fmt.Sprintf("%s/admin/api/%s", base, apiVersion),
		token:   token,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	logger.Logger.Info().
		Str("base_url", client.baseURL).
		Msg("Shopify client initialized")

	return client
}

// ResolveInventoryItem returns the inventory item id backing a variant
func (c *Client) ResolveInventoryItem(ctx context.Context, variantID int64) (int64, error) {
	var resp struct {
		Variant struct {
			ID              int64 `json:"id"`
			InventoryItemID int64 `json:"inventory_item_id"`
		} `json:"variant"`
	}

	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/variants/%d.json", variantID), nil, &resp)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
			return 0, fmt.Errorf("variant %d: %w", variantID, ErrVariantNotFound)
		}
		return 0, err
	}

	return resp.Variant.InventoryItemID, nil
}

// ReadLevel returns the current available quantity and location for an
// inventory item. When the item is stocked at several locations the first
// entry wins; apportioning across locations is out of scope.
func (c *Client) ReadLevel(ctx context.Context, inventoryItemID int64) (Level, error) {
	var resp struct {
		InventoryLevels []Level `json:"inventory_levels"`
	}

	path := fmt.Sprintf("/inventory_levels.json?inventory_item_ids=%d", inventoryItemID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Level{}, err
	}

	if len(resp.InventoryLevels) == 0 {
		return Level{}, fmt.Errorf("inventory item %d: %w", inventoryItemID, ErrNoLocation)
	}

	return resp.InventoryLevels[0], nil
}

// WriteLevel overwrites the available quantity for an inventory item at a
// location. The Admin API offers set, not an atomic adjust, so concurrent
// writers to the same item can lose updates; the adjustment engine serializes
// per variant within this process to narrow that window.
func (c *Client) WriteLevel(ctx context.Context, inventoryItemID, locationID int64, available int) error {
	body := map[string]interface{}{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         available,
	}

	return c.doRequest(ctx, http.MethodPost, "/inventory_levels/set.json", body, nil)
}

// GetOrder fetches an order by id. Used only for refund reconciliation,
// where the webhook payload lacks line-item detail.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}

	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d.json", orderID), nil, &resp); err != nil {
		return nil, err
	}

	return &resp.Order, nil
}

// doRequest executes one API call and decodes the response into out when
// out is non-nil
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Shopify-Access-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("shopify: reading response for %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("shopify: decoding response for %s %s: %w", method, path, err)
		}
	}

	return nil
}

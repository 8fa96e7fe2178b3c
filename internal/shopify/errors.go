package shopify

import (
	"errors"
	"fmt"
)

var (
	// ErrVariantNotFound means the variant does not exist upstream
	ErrVariantNotFound = errors.New("shopify: variant not found")

	// ErrNoLocation means the inventory item has no location entry. Callers
	// treat this as a skip, not a failure.
	ErrNoLocation = errors.New("shopify: no inventory location for item")
)

// UpstreamError is a non-2xx response from the Admin API
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("shopify: upstream returned %d: %s", e.StatusCode, e.Body)
}

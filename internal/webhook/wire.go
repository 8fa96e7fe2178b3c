//go:build wireinject
// +build wireinject

package webhook

import (
	"github.com/google/wire"

	"github.com/cloverlane/inventory-sync/internal/config"
	"github.com/cloverlane/inventory-sync/internal/dedup"
	"github.com/cloverlane/inventory-sync/internal/shopify"
)

// InitializeHandler initializes the webhook handler with all dependencies
func InitializeHandler(cfg *config.Config, client *shopify.Client, dedupStore dedup.Store) (*Handler, error) {
	wire.Build(
		ReconcilerSet,
		NewHandler,
	)
	return nil, nil
}

package webhook

import (
	"github.com/google/wire"

	"github.com/cloverlane/inventory-sync/internal/inventory"
	"github.com/cloverlane/inventory-sync/internal/reconciler"
	"github.com/cloverlane/inventory-sync/internal/shopify"
)

// ProvideAdjuster provides the adjustment engine backed by the Admin API
func ProvideAdjuster(client *shopify.Client) *inventory.Adjuster {
	return inventory.New(client)
}

// ProvideReconciler provides the lifecycle reconciler
func ProvideReconciler(client *shopify.Client, adjuster *inventory.Adjuster) *reconciler.Reconciler {
	return reconciler.New(adjuster, client)
}

// ProvideProcessor binds the reconciler as the webhook processor
func ProvideProcessor(rec *reconciler.Reconciler) Processor {
	return rec
}

// Wire sets
var ReconcilerSet = wire.NewSet(
	ProvideAdjuster,
	ProvideReconciler,
	ProvideProcessor,
)

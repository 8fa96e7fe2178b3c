// Package inventory applies signed stock adjustments against the external
// inventory store through a read-modify-write cycle.
package inventory

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cloverlane/inventory-sync/internal/shopify"
	"github.com/cloverlane/inventory-sync/pkg/logger"
)

var tracer = otel.Tracer("inventory-adjuster")

// Store is the slice of the upstream API the adjuster needs
type Store interface {
	ResolveInventoryItem(ctx context.Context, variantID int64) (int64, error)
	ReadLevel(ctx context.Context, inventoryItemID int64) (shopify.Level, error)
	WriteLevel(ctx context.Context, inventoryItemID, locationID int64, available int) error
}

// Adjuster computes and writes new available quantities. Every adjustment is
// best-effort: failures are logged and counted, never returned, so one broken
// component cannot block its siblings in the same order.
type Adjuster struct {
	store Store
	locks *variantLocks
}

// New creates an adjuster backed by the given store
func New(store Store) *Adjuster {
	return &Adjuster{
		store: store,
		locks: newVariantLocks(),
	}
}

// AddStock returns qty units of a variant to available stock
func (a *Adjuster) AddStock(ctx context.Context, variantID int64, qty int, reason string) {
	a.adjust(ctx, variantID, qty, reason)
}

// RemoveStock commits qty units of a variant out of available stock
func (a *Adjuster) RemoveStock(ctx context.Context, variantID int64, qty int, reason string) {
	a.adjust(ctx, variantID, -qty, reason)
}

func (a *Adjuster) adjust(ctx context.Context, variantID int64, delta int, reason string) {
	ctx, span := tracer.Start(ctx, "inventory.adjust")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("variant.id", variantID),
		attribute.Int("adjustment.delta", delta),
		attribute.String("adjustment.reason", reason),
	)

	// Serialize the whole read-modify-write cycle per variant. Without this,
	// two concurrent adjustments to the same variant read the same level and
	// the later write discards the earlier delta. The upstream API is
	// set-only, so cross-process writers can still race.
	lock := a.locks.get(variantID)
	lock.Lock()
	defer lock.Unlock()

	itemID, err := a.store.ResolveInventoryItem(ctx, variantID)
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Int64("variant_id", variantID).
			Str("reason", reason).
			Msg("Skipping adjustment: could not resolve inventory item")
		adjustmentsSkipped.WithLabelValues("resolve").Inc()
		return
	}

	level, err := a.store.ReadLevel(ctx, itemID)
	if err != nil {
		event := logger.Error(ctx)
		if errors.Is(err, shopify.ErrNoLocation) {
			// No location entry means there is nothing to adjust
			event = logger.Warn(ctx)
		}
		event.
			Err(err).
			Int64("variant_id", variantID).
			Int64("inventory_item_id", itemID).
			Str("reason", reason).
			Msg("Skipping adjustment: could not read inventory level")
		adjustmentsSkipped.WithLabelValues("read").Inc()
		return
	}

	// Floor at zero. Over-restocking a depleted variant silently loses the
	// excess rather than erroring; repeated deliveries of the same event are
	// therefore not conservative.
	newAvailable := level.Available + delta
	if newAvailable < 0 {
		newAvailable = 0
	}

	if err := a.store.WriteLevel(ctx, itemID, level.LocationID, newAvailable); err != nil {
		logger.Error(ctx).
			Err(err).
			Int64("variant_id", variantID).
			Int64("inventory_item_id", itemID).
			Int64("location_id", level.LocationID).
			Int("available", newAvailable).
			Str("reason", reason).
			Msg("Skipping adjustment: could not write inventory level")
		adjustmentsSkipped.WithLabelValues("write").Inc()
		return
	}

	direction := "add"
	if delta < 0 {
		direction = "remove"
	}
	adjustmentsApplied.WithLabelValues(direction).Inc()

	logger.Info(ctx).
		Int64("variant_id", variantID).
		Int64("inventory_item_id", itemID).
		Int64("location_id", level.LocationID).
		Int("delta", delta).
		Int("previous", level.Available).
		Int("available", newAvailable).
		Str("reason", reason).
		Msg("Inventory adjusted")
}

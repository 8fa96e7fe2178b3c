// Package reconciler maps order lifecycle events onto per-component stock
// adjustments. It keeps no state between events; the external store is the
// sole source of truth.
package reconciler

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloverlane/inventory-sync/internal/bundle"
	"github.com/cloverlane/inventory-sync/internal/shopify"
	"github.com/cloverlane/inventory-sync/pkg/logger"
)

var tracer = otel.Tracer("lifecycle-reconciler")

// StockAdjuster applies best-effort signed adjustments per variant
type StockAdjuster interface {
	AddStock(ctx context.Context, variantID int64, qty int, reason string)
	RemoveStock(ctx context.Context, variantID int64, qty int, reason string)
}

// OrderFetcher recovers full order detail for refund events
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID int64) (*shopify.Order, error)
}

// Reconciler processes one lifecycle event per call. Processing is
// best-effort throughout: the ingress has already acknowledged the delivery,
// so failures surface only in logs and metrics.
type Reconciler struct {
	adjuster StockAdjuster
	orders   OrderFetcher
}

// New creates a reconciler
func New(adjuster StockAdjuster, orders OrderFetcher) *Reconciler {
	return &Reconciler{adjuster: adjuster, orders: orders}
}

// OrderCreated commits component stock for every bundle line item. Processing
// the same creation twice re-subtracts; deduplication happens at the ingress.
func (r *Reconciler) OrderCreated(ctx context.Context, order *shopify.Order) {
	ctx, span := r.startSpan(ctx, "reconcile.order_created", order.ID)
	defer span.End()

	reason := fmt.Sprintf("from order %s", order.Name)
	r.eachComponent(ctx, order, func(variantID int64, qty int) {
		r.adjuster.RemoveStock(ctx, variantID, qty, reason)
	})
}

// OrderFulfilled is a no-op: stock was committed when the order was created
func (r *Reconciler) OrderFulfilled(ctx context.Context, order *shopify.Order) {
	_, span := r.startSpan(ctx, "reconcile.order_fulfilled", order.ID)
	defer span.End()

	logger.Info(ctx).
		Int64("order_id", order.ID).
		Str("order_name", order.Name).
		Msg("Order fulfilled, stock already committed at creation")
}

// OrderCancelled releases component stock for every bundle line item
func (r *Reconciler) OrderCancelled(ctx context.Context, order *shopify.Order) {
	ctx, span := r.startSpan(ctx, "reconcile.order_cancelled", order.ID)
	defer span.End()

	reason := fmt.Sprintf("cancelled from order %s", order.Name)
	r.eachComponent(ctx, order, func(variantID int64, qty int) {
		r.adjuster.AddStock(ctx, variantID, qty, reason)
	})
}

// OrderEdited is a no-op: line items removed through an edit surface as a
// subsequent refund event, which is handled there
func (r *Reconciler) OrderEdited(ctx context.Context, order *shopify.Order) {
	_, span := r.startSpan(ctx, "reconcile.order_edited", order.ID)
	defer span.End()

	logger.Info(ctx).
		Int64("order_id", order.ID).
		Str("order_name", order.Name).
		Msg("Order edited, awaiting refund event for any removed items")
}

// RefundCreated restocks refunded bundle components. The refund payload only
// references line items by id, so the parent order is fetched to recover
// quantities and bundle annotations. Lines flagged no_restock stay with the
// customer and produce no adjustment.
func (r *Reconciler) RefundCreated(ctx context.Context, refund *shopify.Refund) {
	ctx, span := tracer.Start(ctx, "reconcile.refund_created")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("refund.id", refund.ID),
		attribute.Int64("order.id", refund.OrderID),
	)

	order, err := r.orders.GetOrder(ctx, refund.OrderID)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Int64("refund_id", refund.ID).
			Int64("order_id", refund.OrderID).
			Msg("Skipping refund: could not fetch parent order")
		return
	}

	reason := fmt.Sprintf("refunded from order %s", order.Name)

	for _, refundLine := range refund.RefundLineItems {
		if refundLine.RestockType == shopify.RestockTypeNone || refundLine.Quantity <= 0 {
			logger.Debug(ctx).
				Int64("line_item_id", refundLine.LineItemID).
				Str("restock_type", refundLine.RestockType).
				Int("quantity", refundLine.Quantity).
				Msg("Refund line not restocked")
			continue
		}

		item, ok := findLineItem(order, refundLine.LineItemID)
		if !ok {
			logger.Warn(ctx).
				Int64("line_item_id", refundLine.LineItemID).
				Int64("order_id", order.ID).
				Msg("Refund references unknown line item, skipping")
			continue
		}

		desc := r.parseDescriptor(ctx, item, order)
		if desc == nil {
			continue
		}

		for _, component := range desc.Components() {
			r.adjuster.AddStock(ctx, component.VariantID, component.Qty*refundLine.Quantity, reason)
		}
	}
}

// eachComponent walks every bundle line item of an order and invokes fn with
// the component variant and its scaled quantity (per-unit multiplier times
// the line item quantity)
func (r *Reconciler) eachComponent(ctx context.Context, order *shopify.Order, fn func(variantID int64, qty int)) {
	for _, item := range order.LineItems {
		desc := r.parseDescriptor(ctx, item, order)
		if desc == nil {
			continue
		}

		for _, component := range desc.Components() {
			fn(component.VariantID, component.Qty*item.Quantity)
		}
	}
}

// parseDescriptor downgrades malformed annotations to skip-and-log. A nil
// return means the line item contributes no adjustments.
func (r *Reconciler) parseDescriptor(ctx context.Context, item shopify.LineItem, order *shopify.Order) *bundle.Descriptor {
	desc, err := bundle.Parse(item, order)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Int64("order_id", order.ID).
			Int64("line_item_id", item.ID).
			Msg("Skipping line item with malformed bundle descriptor")
		return nil
	}
	return desc
}

func findLineItem(order *shopify.Order, lineItemID int64) (shopify.LineItem, bool) {
	for _, item := range order.LineItems {
		if item.ID == lineItemID {
			return item, true
		}
	}
	return shopify.LineItem{}, false
}

func (r *Reconciler) startSpan(ctx context.Context, name string, orderID int64) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.Int64("order.id", orderID))
	return ctx, span
}

// Package bundle parses the component annotation that marks a line item as a
// bundle. Bundles are assembled from independently stocked variants: one
// cable and any number of weighted cotton-ball variants.
package bundle

import (
	"encoding/json"
	"fmt"

	"github.com/cloverlane/inventory-sync/internal/shopify"
)

// PropertyName is the line-item property (or order note attribute) carrying
// the JSON-encoded bundle composition
const PropertyName = "_clv_components"

// Descriptor is the validated composition of one bundle line item
type Descriptor struct {
	CableVariantID int64    `json:"cable_variant_id"`
	Cotton         []Cotton `json:"cotton"`
}

// Cotton is one cotton-ball component. Qty is the multiplier per single unit
// of the bundle, not an absolute quantity.
type Cotton struct {
	VariantID int64  `json:"variant_id"`
	Qty       int    `json:"qty"`
	Title     string `json:"title"`
}

// Component is one stock-tracked member of a bundle with its per-unit
// multiplier
type Component struct {
	VariantID int64
	Qty       int
}

// Components flattens the descriptor into adjustable components. The cable,
// when present, counts once per bundle unit.
func (d *Descriptor) Components() []Component {
	components := make([]Component, 0, len(d.Cotton)+1)
	if d.CableVariantID != 0 {
		components = append(components, Component{VariantID: d.CableVariantID, Qty: 1})
	}
	for _, c := range d.Cotton {
		components = append(components, Component{VariantID: c.VariantID, Qty: c.Qty})
	}
	return components
}

// MalformedDescriptorError means the annotation was present but unusable.
// Callers downgrade it to skip-and-log; one broken line item must not block
// its siblings.
type MalformedDescriptorError struct {
	LineItemID int64
	Reason     string
	Err        error
}

func (e *MalformedDescriptorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bundle: malformed descriptor on line item %d: %s: %v", e.LineItemID, e.Reason, e.Err)
	}
	return fmt.Sprintf("bundle: malformed descriptor on line item %d: %s", e.LineItemID, e.Reason)
}

func (e *MalformedDescriptorError) Unwrap() error { return e.Err }

// Parse extracts the bundle descriptor for a line item. The line item's own
// properties win; order note attributes are a fallback kept for orders placed
// before the property moved onto line items. A nil, nil return means the line
// item is not a bundle.
func Parse(item shopify.LineItem, order *shopify.Order) (*Descriptor, error) {
	raw, ok := findProperty(item.Properties)
	if !ok && order != nil {
		raw, ok = findProperty(order.NoteAttributes)
	}
	if !ok {
		return nil, nil
	}

	var desc Descriptor
	if err := json.Unmarshal([]byte(raw), &desc); err != nil {
		return nil, &MalformedDescriptorError{LineItemID: item.ID, Reason: "invalid JSON", Err: err}
	}

	if desc.CableVariantID == 0 && len(desc.Cotton) == 0 {
		return nil, &MalformedDescriptorError{LineItemID: item.ID, Reason: "no components"}
	}

	for _, c := range desc.Cotton {
		if c.VariantID <= 0 {
			return nil, &MalformedDescriptorError{LineItemID: item.ID, Reason: "cotton entry missing variant_id"}
		}
		if c.Qty <= 0 {
			return nil, &MalformedDescriptorError{
				LineItemID: item.ID,
				Reason:     fmt.Sprintf("cotton variant %d has non-positive qty %d", c.VariantID, c.Qty),
			}
		}
	}

	return &desc, nil
}

func findProperty(props []shopify.Property) (string, bool) {
	for _, p := range props {
		if p.Name == PropertyName && p.Value != "" {
			return p.Value, true
		}
	}
	return "", false
}

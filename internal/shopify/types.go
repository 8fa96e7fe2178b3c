package shopify

// Restock types carried on refund line items. Anything other than
// RestockTypeNone puts the returned units back into available stock.
const (
	RestockTypeNone   = "no_restock"
	RestockTypeReturn = "return"
	RestockTypeCancel = "cancel"
)

// Order is the subset of the Admin API order resource this service reads
type Order struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	LineItems         []LineItem `json:"line_items"`
	NoteAttributes    []Property `json:"note_attributes"`
}

// LineItem is one purchased line of an order
type LineItem struct {
	ID         int64      `json:"id"`
	VariantID  int64      `json:"variant_id"`
	Title      string     `json:"title"`
	Quantity   int        `json:"quantity"`
	Properties []Property `json:"properties"`
}

// Property is a name/value annotation on a line item or an order
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Refund is the subset of the refund webhook payload this service reads.
// Line-item detail lives on the parent order and requires a secondary fetch.
type Refund struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"order_id"`
	RefundLineItems []RefundLineItem `json:"refund_line_items"`
}

// RefundLineItem references an original order line and how many units of it
// were refunded
type RefundLineItem struct {
	LineItemID  int64  `json:"line_item_id"`
	Quantity    int    `json:"quantity"`
	RestockType string `json:"restock_type"`
}

// Level is the available quantity of an inventory item at one location
type Level struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}

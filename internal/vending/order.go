package vending

// OrderItem is one requested purchase line. The cost is captured at request
// time and is what gets debited, even if the catalog price moves later.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	CostCents int    `json:"cost_cents"`
}

// OrderDetailedItem is a fulfilled line: the request plus the resolved
// product. It only exists once the line was debited and decremented.
type OrderDetailedItem struct {
	OrderItem
	Product *Product `json:"product"`
}

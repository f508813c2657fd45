package dto

// ProductAvailability is the warehouse-side view for one (product, variant)
// key. Available is what can still be allocated (the warehouse row),
// Allocated the sum already moved to branches, Total their sum.
type ProductAvailability struct {
	ProductID int  `json:"productId"`
	VariantID *int `json:"variantId,omitempty"`
	Available int  `json:"available"`
	Allocated int  `json:"allocated"`
	Total     int  `json:"total"`
}

// BranchStock is one (product, variant) quantity held at a branch.
type BranchStock struct {
	ProductID  int  `json:"productId"`
	VariantID  *int `json:"variantId,omitempty"`
	LocationID int  `json:"locationId"`
	Quantity   int  `json:"quantity"`
}

// AdjustStockRequest applies a direct quantity delta, e.g. a warehouse
// receipt. A negative delta that would take the record below zero is refused.
type AdjustStockRequest struct {
	ProductID  int  `json:"productId"`
	VariantID  *int `json:"variantId,omitempty"`
	LocationID int  `json:"locationId"`
	Delta      int  `json:"delta"`
}

// StockRecordDTO is the record state returned after an adjustment.
type StockRecordDTO struct {
	TraceID    string `json:"traceId"`
	ProductID  int    `json:"productId"`
	VariantID  *int   `json:"variantId,omitempty"`
	LocationID int    `json:"locationId"`
	Quantity   int    `json:"quantity"`
}

// HistoryFilter narrows the allocation-history listing. Nil fields match
// everything; Limit is capped by the repository.
type HistoryFilter struct {
	ProductID             *int
	DestinationLocationID *int
	Limit                 int
}

package dto

type AllocateRequest struct {
	ProductID             int    `json:"productId"`
	VariantID             *int   `json:"variantId,omitempty"`
	SourceLocationID      int    `json:"sourceLocationId"`
	DestinationLocationID int    `json:"destinationLocationId"`
	Quantity              int    `json:"quantity"`
	Notes                 string `json:"notes,omitempty"`
}

type AllocateBatchRequest struct {
	SourceLocationID      int                 `json:"sourceLocationId"`
	DestinationLocationID int                 `json:"destinationLocationId"`
	Items                 []AllocateBatchItem `json:"items"`
	Notes                 string              `json:"notes,omitempty"`
}

type AllocateBatchItem struct {
	ProductID int  `json:"productId"`
	VariantID *int `json:"variantId,omitempty"`
	Quantity  int  `json:"quantity"`
}

package dto

import "time"

type AllocateResponse struct {
	TraceID   string              `json:"traceId"`
	Success   bool                `json:"success"`
	Results   []AllocationItemDTO `json:"results"`
	Timestamp time.Time           `json:"timestamp"`
}

type AllocationItemDTO struct {
	ItemIndex           int              `json:"itemIndex"`
	ProductID           int              `json:"productId"`
	VariantID           *int             `json:"variantId,omitempty"`
	Quantity            int              `json:"quantity"`
	Success             bool             `json:"success"`
	Error               *AllocationError `json:"error,omitempty"`
	SourceQuantity      *int             `json:"sourceQuantity,omitempty"`
	DestinationQuantity *int             `json:"destinationQuantity,omitempty"`
	AllocationID        string           `json:"allocationId,omitempty"`
}

type AllocationError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
}

type ErrorResponse struct {
	TraceID   string                `json:"traceId"`
	Status    int                   `json:"status"`
	Code      string                `json:"code"`
	Message   string                `json:"message"`
	Details   []ValidationDetailDTO `json:"details,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

type ValidationDetailDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type HistoryEntryDTO struct {
	ID                    string    `json:"id"`
	ProductID             int       `json:"productId"`
	VariantID             *int      `json:"variantId,omitempty"`
	SourceLocationID      int       `json:"sourceLocationId"`
	DestinationLocationID int       `json:"destinationLocationId"`
	Quantity              int       `json:"quantity"`
	Notes                 *string   `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

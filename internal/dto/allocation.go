package dto

import "stockroom/internal/domain"

// AllocationRequest moves one quantity of a product (or a specific variant)
// from the central warehouse into a branch.
type AllocationRequest struct {
	ProductID             int
	VariantID             *int
	SourceLocationID      int
	DestinationLocationID int
	Quantity              int
	Notes                 string
}

// BulkAllocationItem is one line of a bulk request. Source, destination and
// notes are shared across the batch.
type BulkAllocationItem struct {
	ProductID int
	VariantID *int
	Quantity  int
}

// BulkAllocationRequest allocates a product and a subset of its variants
// together, all-or-nothing, to a single destination.
type BulkAllocationRequest struct {
	SourceLocationID      int
	DestinationLocationID int
	Items                 []BulkAllocationItem
	Notes                 string
}

// AllocationResult is the outcome for one requested item. For a batch the
// results are index-aligned with the request items; when any item fails
// validation nothing is applied and the offending item's result carries the
// typed error while its siblings are simply marked unsuccessful.
type AllocationResult struct {
	ItemIndex   int
	ProductID   int
	VariantID   *int
	Quantity    int
	Success     bool
	Error       error
	Source      *domain.StockRecord
	Destination *domain.StockRecord
	Entry       *domain.AllocationEntry
}

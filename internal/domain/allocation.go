package domain

import "time"

// AllocationEntry is one row of the append-only allocation history. Entries
// are written inside the same transaction as the stock movement they record
// and are never updated afterwards.
type AllocationEntry struct {
	ID                    string
	ProductID             int
	VariantID             *int
	SourceLocationID      int
	DestinationLocationID int
	Quantity              int
	Notes                 *string
	CreatedAt             time.Time
}

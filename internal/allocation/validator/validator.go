// Package validator holds the pure precondition checks for stock allocation.
// Nothing here touches the database: callers resolve reference data and
// availability first (the engine does so under row locks) and pass it in.
package validator

import (
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

// Item is one requested move.
type Item struct {
	ProductID int
	VariantID *int
	Quantity  int
}

// RefData is everything needed to judge one item: the resolved locations, the
// catalog entry, and the availability for the item's key at validation time.
// Source and Destination may be nil when the id resolved to nothing.
type RefData struct {
	Source      *domain.Location
	Destination *domain.Location
	Product     *domain.Product
	Available   int
}

// Validate runs the checks in contract order and returns the first failure:
// positive quantity, warehouse source and distinct active branch destination,
// variant/product consistency, then availability. A nil return means the item
// may be applied.
func Validate(item Item, ref RefData) error {
	if item.Quantity <= 0 {
		return errors.NewInvalidQuantityError(item.Quantity)
	}

	if err := validateLocations(ref.Source, ref.Destination); err != nil {
		return err
	}

	if err := validateVariantConsistency(item, ref.Product); err != nil {
		return err
	}

	if item.Quantity > ref.Available {
		return errors.NewInsufficientStockError(item.ProductID, item.VariantID, item.Quantity, ref.Available)
	}

	return nil
}

func validateLocations(source, destination *domain.Location) error {
	if source == nil {
		return errors.NewInvalidLocationError("source location does not exist")
	}
	if !source.IsWarehouse() {
		return errors.NewInvalidLocationError(
			fmt.Sprintf("source location %d is not the central warehouse", source.ID))
	}
	if destination == nil {
		return errors.NewInvalidLocationError("destination location does not exist")
	}
	if destination.ID == source.ID {
		return errors.NewInvalidLocationError("destination location must differ from the source")
	}
	if !destination.IsBranch() {
		return errors.NewInvalidLocationError(
			fmt.Sprintf("destination location %d is not a branch", destination.ID))
	}
	if !destination.IsActive {
		return errors.NewInvalidLocationError(
			fmt.Sprintf("destination location %d is not active", destination.ID))
	}
	return nil
}

func validateVariantConsistency(item Item, product *domain.Product) error {
	if product == nil {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", item.ProductID))
	}
	if product.HasVariants && item.VariantID == nil {
		return errors.NewVariantMismatchError(
			fmt.Sprintf("product %d is variant-tracked, a variant id is required", product.ID))
	}
	if !product.HasVariants && item.VariantID != nil {
		return errors.NewVariantMismatchError(
			fmt.Sprintf("product %d has no variants, variant id must be omitted", product.ID))
	}
	return nil
}

// ValidateBatch checks every item cumulatively: duplicate (product, variant)
// keys are rejected outright, and each item consumes availability so later
// items in the batch see what the earlier ones left behind. Returns the index
// of the first failing item and its error, or (-1, nil) when the whole batch
// may be applied. refs must be index-aligned with items.
func ValidateBatch(items []Item, refs []RefData) (int, error) {
	if len(items) == 0 {
		return -1, errors.NewValidationError("batch contains no items")
	}

	seen := make(map[domain.StockKey]bool, len(items))
	for i, item := range items {
		key := domain.KeyOf(item.ProductID, item.VariantID)
		if seen[key] {
			return i, errors.NewValidationError(
				fmt.Sprintf("duplicate item for product %d in batch", item.ProductID))
		}
		seen[key] = true
	}

	remaining := make(map[domain.StockKey]int, len(items))
	for i, item := range items {
		key := domain.KeyOf(item.ProductID, item.VariantID)
		if _, ok := remaining[key]; !ok {
			remaining[key] = refs[i].Available
		}

		ref := refs[i]
		ref.Available = remaining[key]
		if err := Validate(item, ref); err != nil {
			return i, err
		}

		remaining[key] -= item.Quantity
	}

	return -1, nil
}

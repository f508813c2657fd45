package domain

import "time"

// StockRecord is the quantity-on-hand for one (product, variant, location)
// combination. A nil VariantID means the record tracks the base product.
// Records are never deleted; a zero quantity is meaningful.
type StockRecord struct {
	ID         int64
	ProductID  int
	VariantID  *int
	LocationID int
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StockKey identifies the (product, variant) pair a record tracks. VariantID 0
// stands for "no variant"; real variant ids start at 1.
type StockKey struct {
	ProductID int
	VariantID int
}

func KeyOf(productID int, variantID *int) StockKey {
	key := StockKey{ProductID: productID}
	if variantID != nil {
		key.VariantID = *variantID
	}
	return key
}

// Less orders keys by (product, variant) ascending. Locking rows in this order
// keeps concurrent batches from deadlocking each other.
func (k StockKey) Less(other StockKey) bool {
	if k.ProductID != other.ProductID {
		return k.ProductID < other.ProductID
	}
	return k.VariantID < other.VariantID
}

package domain

import "time"

type Product struct {
	ID          int
	Name        string
	SKU         string
	HasVariants bool
	IsActive    bool
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant is one sellable configuration of a product (a size/color
// combination, say). Display attributes live in Name/SKU; the allocation core
// only reasons about the identifier.
type Variant struct {
	ID        int
	ProductID int
	Name      string
	SKU       string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

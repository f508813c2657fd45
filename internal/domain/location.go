package domain

import "time"

type Location struct {
	ID        int
	Name      string
	Kind      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	LocationKindWarehouse = "WAREHOUSE"
	LocationKindBranch    = "BRANCH"
)

func (l Location) IsWarehouse() bool {
	return l.Kind == LocationKindWarehouse
}

func (l Location) IsBranch() bool {
	return l.Kind == LocationKindBranch
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationKind(t *testing.T) {
	warehouse := Location{ID: 1, Kind: LocationKindWarehouse}
	branch := Location{ID: 2, Kind: LocationKindBranch}

	assert.True(t, warehouse.IsWarehouse())
	assert.False(t, warehouse.IsBranch())
	assert.True(t, branch.IsBranch())
	assert.False(t, branch.IsWarehouse())
}

func TestLocationKind_UnknownKindIsNeither(t *testing.T) {
	l := Location{Kind: "SUPPLIER"}
	assert.False(t, l.IsWarehouse())
	assert.False(t, l.IsBranch())
}

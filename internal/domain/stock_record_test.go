package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int {
	return &i
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, StockKey{ProductID: 10, VariantID: 0}, KeyOf(10, nil))
	assert.Equal(t, StockKey{ProductID: 10, VariantID: 7}, KeyOf(10, intPtr(7)))
}

func TestKeyOf_BaseAndVariantAreDistinct(t *testing.T) {
	assert.NotEqual(t, KeyOf(10, nil), KeyOf(10, intPtr(1)))
}

func TestStockKeyLess(t *testing.T) {
	keys := []StockKey{
		{ProductID: 11, VariantID: 2},
		{ProductID: 10, VariantID: 7},
		{ProductID: 10, VariantID: 0},
		{ProductID: 11, VariantID: 0},
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	assert.Equal(t, []StockKey{
		{ProductID: 10, VariantID: 0},
		{ProductID: 10, VariantID: 7},
		{ProductID: 11, VariantID: 0},
		{ProductID: 11, VariantID: 2},
	}, keys)
}

func TestStockKeyLess_IsStrict(t *testing.T) {
	k := StockKey{ProductID: 10, VariantID: 7}
	assert.False(t, k.Less(k))
}

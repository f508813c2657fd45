package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	apperrors "stockroom/internal/errors"
	"stockroom/internal/testutil"
)

func intPtr(i int) *int {
	return &i
}

func TestVariantColumnRoundTrip(t *testing.T) {
	assert.Equal(t, 0, variantColumn(nil))
	assert.Equal(t, 7, variantColumn(intPtr(7)))

	assert.Nil(t, variantPointer(0))
	require.NotNil(t, variantPointer(7))
	assert.Equal(t, 7, *variantPointer(7))
}

func TestStockRepository_GetAndAdjust(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	warehouseID := testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse)
	productID := testutil.SeedProduct(t, db, "Wool Beanie", false)

	repo := NewMySQLStockRepository(db)
	ctx := context.Background()

	// No record yet.
	rec, err := repo.Get(ctx, db, productID, nil, warehouseID)
	require.NoError(t, err)
	assert.Nil(t, rec)

	// A positive delta on a missing key creates the record.
	rec, err = repo.AdjustQuantity(ctx, db, productID, nil, warehouseID, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Quantity)
	assert.Nil(t, rec.VariantID)

	// Further deltas update it in place.
	rec, err = repo.AdjustQuantity(ctx, db, productID, nil, warehouseID, -30)
	require.NoError(t, err)
	assert.Equal(t, 70, rec.Quantity)

	rec, err = repo.Get(ctx, db, productID, nil, warehouseID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 70, rec.Quantity)
}

func TestStockRepository_AdjustRefusesNegativeResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	warehouseID := testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse)
	productID := testutil.SeedProduct(t, db, "Wool Beanie", false)

	repo := NewMySQLStockRepository(db)
	ctx := context.Background()

	_, err := repo.AdjustQuantity(ctx, db, productID, nil, warehouseID, 10)
	require.NoError(t, err)

	_, err = repo.AdjustQuantity(ctx, db, productID, nil, warehouseID, -11)
	nse, ok := apperrors.IsNegativeStockError(err)
	require.True(t, ok)
	assert.Equal(t, -11, nse.Delta)

	// Quantity untouched.
	rec, err := repo.Get(ctx, db, productID, nil, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
}

func TestStockRepository_AdjustRefusesNegativeCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	warehouseID := testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse)
	productID := testutil.SeedProduct(t, db, "Wool Beanie", false)

	repo := NewMySQLStockRepository(db)

	_, err := repo.AdjustQuantity(context.Background(), db, productID, nil, warehouseID, -1)
	_, ok := apperrors.IsNegativeStockError(err)
	assert.True(t, ok)
}

func TestStockRepository_VariantRowsAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	warehouseID := testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse)
	productID := testutil.SeedProduct(t, db, "Trail Shoe", true)
	variantID := testutil.SeedVariant(t, db, productID, "Size 42")

	repo := NewMySQLStockRepository(db)
	ctx := context.Background()

	_, err := repo.AdjustQuantity(ctx, db, productID, nil, warehouseID, 100)
	require.NoError(t, err)
	_, err = repo.AdjustQuantity(ctx, db, productID, intPtr(variantID), warehouseID, 5)
	require.NoError(t, err)

	base, err := repo.Get(ctx, db, productID, nil, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 100, base.Quantity)

	variant, err := repo.Get(ctx, db, productID, intPtr(variantID), warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 5, variant.Quantity)
	require.NotNil(t, variant.VariantID)
	assert.Equal(t, variantID, *variant.VariantID)
}

func TestStockRepository_SumAllocated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	warehouseID := testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse)
	branchA := testutil.SeedLocation(t, db, "Branch A", domain.LocationKindBranch)
	branchB := testutil.SeedLocation(t, db, "Branch B", domain.LocationKindBranch)
	productID := testutil.SeedProduct(t, db, "Wool Beanie", false)

	testutil.SeedStock(t, db, productID, 0, warehouseID, 70)
	testutil.SeedStock(t, db, productID, 0, branchA, 20)
	testutil.SeedStock(t, db, productID, 0, branchB, 10)

	repo := NewMySQLStockRepository(db)

	allocated, err := repo.SumAllocated(context.Background(), db, productID, nil, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 30, allocated)
}

func TestStockRepository_ListByProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	warehouseID := testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse)
	branchID := testutil.SeedLocation(t, db, "Branch A", domain.LocationKindBranch)
	productID := testutil.SeedProduct(t, db, "Wool Beanie", false)
	otherID := testutil.SeedProduct(t, db, "Trail Shoe", false)

	testutil.SeedStock(t, db, productID, 0, warehouseID, 70)
	testutil.SeedStock(t, db, productID, 0, branchID, 30)
	testutil.SeedStock(t, db, otherID, 0, warehouseID, 9)

	repo := NewMySQLStockRepository(db)

	records, err := repo.ListByProduct(context.Background(), db, productID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, productID, rec.ProductID)
	}
}

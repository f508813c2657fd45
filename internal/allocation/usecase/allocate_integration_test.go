package usecase

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	historyrepo "stockroom/internal/allocation/repository"
	"stockroom/internal/allocation/service"
	catalogrepo "stockroom/internal/catalog/repository"
	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
	"stockroom/internal/infrastructure/mysql"
	ledgerrepo "stockroom/internal/ledger/repository"
	locationrepo "stockroom/internal/location/repository"
	"stockroom/internal/testutil"
)

type fixture struct {
	db          *sql.DB
	useCase     *AllocateUseCase
	stockRepo   *ledgerrepo.MySQLStockRepository
	warehouseID int
	branchID    int
}

func setupFixture(t *testing.T) *fixture {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	testutil.SetupTestTables(t, db)

	logger := zap.NewNop()
	stockRepo := ledgerrepo.NewMySQLStockRepository(db)
	engine := service.NewAllocationService(
		mysql.NewTxManager(db),
		stockRepo,
		historyrepo.NewMySQLHistoryRepository(db),
		logger,
		5*time.Second,
	)
	useCase := NewAllocateUseCase(
		engine,
		catalogrepo.NewMySQLProductRepository(db),
		locationrepo.NewMySQLLocationRepository(db),
		&mockInvalidator{},
		logger,
		3,
	)

	return &fixture{
		db:          db,
		useCase:     useCase,
		stockRepo:   stockRepo,
		warehouseID: testutil.SeedLocation(t, db, "Central Warehouse", domain.LocationKindWarehouse),
		branchID:    testutil.SeedLocation(t, db, "Branch A", domain.LocationKindBranch),
	}
}

func (f *fixture) quantity(t *testing.T, productID int, variantID *int, locationID int) int {
	t.Helper()
	rec, err := f.stockRepo.Get(context.Background(), f.db, productID, variantID, locationID)
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.Quantity
}

func TestIntegration_AllocateMovesStock(t *testing.T) {
	f := setupFixture(t)
	productID := testutil.SeedProduct(t, f.db, "Wool Beanie", false)
	testutil.SeedStock(t, f.db, productID, 0, f.warehouseID, 100)

	result, err := f.useCase.Allocate(context.Background(), dto.AllocationRequest{
		ProductID:             productID,
		SourceLocationID:      f.warehouseID,
		DestinationLocationID: f.branchID,
		Quantity:              30,
	})

	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 70, f.quantity(t, productID, nil, f.warehouseID))
	assert.Equal(t, 30, f.quantity(t, productID, nil, f.branchID))
	require.NotNil(t, result.Entry)
	assert.NotEmpty(t, result.Entry.ID)

	// Second allocation against the remaining availability.
	result, err = f.useCase.Allocate(context.Background(), dto.AllocationRequest{
		ProductID:             productID,
		SourceLocationID:      f.warehouseID,
		DestinationLocationID: f.branchID,
		Quantity:              71,
	})

	require.NoError(t, err)
	require.False(t, result.Success)
	ise, ok := apperrors.IsInsufficientStockError(result.Error)
	require.True(t, ok)
	assert.Equal(t, 70, ise.Available)
	assert.Equal(t, 70, f.quantity(t, productID, nil, f.warehouseID))
}

func TestIntegration_BatchAllOrNothing(t *testing.T) {
	f := setupFixture(t)
	productID := testutil.SeedProduct(t, f.db, "Trail Shoe", true)
	sizeS := testutil.SeedVariant(t, f.db, productID, "S")
	sizeM := testutil.SeedVariant(t, f.db, productID, "M")
	testutil.SeedStock(t, f.db, productID, sizeS, f.warehouseID, 10)
	testutil.SeedStock(t, f.db, productID, sizeM, f.warehouseID, 5)

	results, err := f.useCase.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      f.warehouseID,
		DestinationLocationID: f.branchID,
		Items: []dto.BulkAllocationItem{
			{ProductID: productID, VariantID: &sizeS, Quantity: 4},
			{ProductID: productID, VariantID: &sizeM, Quantity: 6},
		},
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	_, ok := apperrors.IsInsufficientStockError(results[1].Error)
	assert.True(t, ok)

	// Neither variant moved.
	assert.Equal(t, 10, f.quantity(t, productID, &sizeS, f.warehouseID))
	assert.Equal(t, 5, f.quantity(t, productID, &sizeM, f.warehouseID))
	assert.Equal(t, 0, f.quantity(t, productID, &sizeS, f.branchID))
}

func TestIntegration_ConcurrentAllocationsNeverOversell(t *testing.T) {
	f := setupFixture(t)
	productID := testutil.SeedProduct(t, f.db, "Wool Beanie", false)
	testutil.SeedStock(t, f.db, productID, 0, f.warehouseID, 30)

	const workers = 2
	outcomes := make([]*dto.AllocationResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = f.useCase.Allocate(context.Background(), dto.AllocationRequest{
				ProductID:             productID,
				SourceLocationID:      f.warehouseID,
				DestinationLocationID: f.branchID,
				Quantity:              20,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if outcomes[i].Success {
			succeeded++
		} else {
			_, ok := apperrors.IsInsufficientStockError(outcomes[i].Error)
			assert.True(t, ok)
		}
	}
	assert.Equal(t, 1, succeeded)

	warehouse := f.quantity(t, productID, nil, f.warehouseID)
	branch := f.quantity(t, productID, nil, f.branchID)
	assert.Equal(t, 10, warehouse)
	assert.Equal(t, 20, branch)
	assert.GreaterOrEqual(t, warehouse, 0)
}

package usecase

import (
	"context"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockroom/internal/allocation/service"
	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
)

func intPtr(i int) *int {
	return &i
}

// Mock implementations

type mockExecutor struct {
	ExecuteFunc func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error)

	calls int
	items [][]service.ResolvedItem
}

func (m *mockExecutor) Execute(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
	m.calls++
	m.items = append(m.items, items)
	return m.ExecuteFunc(ctx, source, destination, items, notes)
}

type mockCatalogRepository struct {
	FindByIDFunc        func(ctx context.Context, id int) (*domain.Product, error)
	FindVariantByIDFunc func(ctx context.Context, id int) (*domain.Variant, error)
}

func (m *mockCatalogRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockCatalogRepository) FindVariantByID(ctx context.Context, id int) (*domain.Variant, error) {
	return m.FindVariantByIDFunc(ctx, id)
}

type mockLocationRepository struct {
	FindByIDFunc func(ctx context.Context, id int) (*domain.Location, error)
}

func (m *mockLocationRepository) FindByID(ctx context.Context, id int) (*domain.Location, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockInvalidator struct {
	products  []int
	locations []int
}

func (m *mockInvalidator) InvalidateProduct(ctx context.Context, productID int) error {
	m.products = append(m.products, productID)
	return nil
}

func (m *mockInvalidator) InvalidateLocation(ctx context.Context, locationID int) error {
	m.locations = append(m.locations, locationID)
	return nil
}

// Helpers

func locations() *mockLocationRepository {
	return &mockLocationRepository{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Location, error) {
			switch id {
			case 1:
				return &domain.Location{ID: 1, Kind: domain.LocationKindWarehouse, IsActive: true}, nil
			case 2, 3:
				return &domain.Location{ID: id, Kind: domain.LocationKindBranch, IsActive: true}, nil
			default:
				return nil, apperrors.NewNotFoundError("location not found")
			}
		},
	}
}

func catalog() *mockCatalogRepository {
	return &mockCatalogRepository{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			switch id {
			case 10:
				return &domain.Product{ID: 10, HasVariants: false, IsActive: true}, nil
			case 11:
				return &domain.Product{ID: 11, HasVariants: true, IsActive: true}, nil
			default:
				return nil, apperrors.NewNotFoundError("product not found")
			}
		},
		FindVariantByIDFunc: func(ctx context.Context, id int) (*domain.Variant, error) {
			if id == 7 {
				return &domain.Variant{ID: 7, ProductID: 11}, nil
			}
			return nil, apperrors.NewNotFoundError("variant not found")
		},
	}
}

func successResults(items []service.ResolvedItem) []dto.AllocationResult {
	results := make([]dto.AllocationResult, len(items))
	for i, item := range items {
		results[i] = dto.AllocationResult{
			ItemIndex: item.Index,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Success:   true,
			Entry:     &domain.AllocationEntry{ID: "entry"},
		}
	}
	return results
}

func newTestUseCase(executor *mockExecutor, invalidator *mockInvalidator) *AllocateUseCase {
	return NewAllocateUseCase(executor, catalog(), locations(), invalidator, zap.NewNop(), 3)
}

func deadlockErr() error {
	return &driver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

// Tests

func TestAllocate_Success(t *testing.T) {
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			return successResults(items), nil
		},
	}
	invalidator := &mockInvalidator{}
	uc := newTestUseCase(executor, invalidator)

	result, err := uc.Allocate(context.Background(), dto.AllocationRequest{
		ProductID:             10,
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Quantity:              30,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, executor.calls)
}

func TestAllocate_UnknownProduct(t *testing.T) {
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			t.Fatal("executor must not run for unknown products")
			return nil, nil
		},
	}
	uc := newTestUseCase(executor, &mockInvalidator{})

	_, err := uc.Allocate(context.Background(), dto.AllocationRequest{
		ProductID:             99,
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Quantity:              5,
	})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Zero(t, executor.calls)
}

func TestAllocate_VariantFromAnotherProduct(t *testing.T) {
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			t.Fatal("executor must not run for mismatched variants")
			return nil, nil
		},
	}
	uc := newTestUseCase(executor, &mockInvalidator{})

	// Variant 7 belongs to product 11, not 10.
	_, err := uc.Allocate(context.Background(), dto.AllocationRequest{
		ProductID:             10,
		VariantID:             intPtr(7),
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Quantity:              5,
	})

	_, ok := apperrors.IsVariantMismatchError(err)
	assert.True(t, ok)
}

func TestAllocate_UnknownLocationStillReachesValidator(t *testing.T) {
	// An unknown destination resolves to nil and the engine's validator
	// reports InvalidLocationError; the use case must not short-circuit.
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			assert.Nil(t, destination)
			return []dto.AllocationResult{{
				ItemIndex: 0,
				ProductID: items[0].ProductID,
				Quantity:  items[0].Quantity,
				Success:   false,
				Error:     apperrors.NewInvalidLocationError("destination location does not exist"),
			}}, nil
		},
	}
	uc := newTestUseCase(executor, &mockInvalidator{})

	result, err := uc.Allocate(context.Background(), dto.AllocationRequest{
		ProductID:             10,
		SourceLocationID:      1,
		DestinationLocationID: 99,
		Quantity:              5,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	_, ok := apperrors.IsInvalidLocationError(result.Error)
	assert.True(t, ok)
}

func TestAllocateBatch_EmptyRejected(t *testing.T) {
	uc := newTestUseCase(&mockExecutor{}, &mockInvalidator{})

	_, err := uc.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      1,
		DestinationLocationID: 2,
	})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestAllocateBatch_RetriesOnDeadlockThenSucceeds(t *testing.T) {
	attempts := 0
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			attempts++
			if attempts < 3 {
				return nil, deadlockErr()
			}
			return successResults(items), nil
		},
	}
	invalidator := &mockInvalidator{}
	uc := newTestUseCase(executor, invalidator)

	results, err := uc.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Items:                 []dto.BulkAllocationItem{{ProductID: 10, Quantity: 5}},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, results[0].Success)
}

func TestAllocateBatch_RetriesExhausted(t *testing.T) {
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			return nil, deadlockErr()
		},
	}
	uc := newTestUseCase(executor, &mockInvalidator{})

	_, err := uc.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Items:                 []dto.BulkAllocationItem{{ProductID: 10, Quantity: 5}},
	})

	_, ok := apperrors.IsConcurrentModificationError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, executor.calls)
}

func TestAllocateBatch_NonRetryableErrorSurfacesImmediately(t *testing.T) {
	boom := &driver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			return nil, boom
		},
	}
	uc := newTestUseCase(executor, &mockInvalidator{})

	_, err := uc.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Items:                 []dto.BulkAllocationItem{{ProductID: 10, Quantity: 5}},
	})

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, executor.calls)
}

func TestAllocateBatch_SuccessInvalidatesProjections(t *testing.T) {
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			return successResults(items), nil
		},
	}
	invalidator := &mockInvalidator{}
	uc := newTestUseCase(executor, invalidator)

	_, err := uc.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Items: []dto.BulkAllocationItem{
			{ProductID: 10, Quantity: 5},
			{ProductID: 11, VariantID: intPtr(7), Quantity: 3},
		},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []int{10, 11}, invalidator.products)
	assert.ElementsMatch(t, []int{1, 2}, invalidator.locations)
}

func TestAllocateBatch_ValidationFailureSkipsInvalidation(t *testing.T) {
	executor := &mockExecutor{
		ExecuteFunc: func(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error) {
			return []dto.AllocationResult{{
				ItemIndex: 0,
				ProductID: items[0].ProductID,
				Quantity:  items[0].Quantity,
				Success:   false,
				Error:     apperrors.NewInsufficientStockError(10, nil, 71, 70),
			}}, nil
		},
	}
	invalidator := &mockInvalidator{}
	uc := newTestUseCase(executor, invalidator)

	results, err := uc.AllocateBatch(context.Background(), dto.BulkAllocationRequest{
		SourceLocationID:      1,
		DestinationLocationID: 2,
		Items:                 []dto.BulkAllocationItem{{ProductID: 10, Quantity: 71}},
	})

	require.NoError(t, err)
	assert.False(t, results[0].Success)
	assert.Empty(t, invalidator.products)
	assert.Empty(t, invalidator.locations)
}

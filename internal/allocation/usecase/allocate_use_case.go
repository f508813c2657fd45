package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"stockroom/internal/allocation/service"
	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
)

type AllocationExecutor interface {
	Execute(ctx context.Context, source, destination *domain.Location, items []service.ResolvedItem, notes string) ([]dto.AllocationResult, error)
}

type CatalogRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	FindVariantByID(ctx context.Context, id int) (*domain.Variant, error)
}

type LocationRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Location, error)
}

// CacheInvalidator drops read-side projections after a commit so callers
// never see availability the ledger has already moved past.
type CacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID int) error
	InvalidateLocation(ctx context.Context, locationID int) error
}

// AllocateUseCase is the entry point the HTTP layer (and any embedding
// caller) uses. It resolves reference data outside the transaction, hands the
// batch to the engine, and retries bounded times when MySQL reports lock
// contention, re-validating inside each attempt.
type AllocateUseCase struct {
	executor         AllocationExecutor
	catalogRepo      CatalogRepository
	locationRepo     LocationRepository
	invalidator      CacheInvalidator
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewAllocateUseCase(
	executor AllocationExecutor,
	catalogRepo CatalogRepository,
	locationRepo LocationRepository,
	invalidator CacheInvalidator,
	logger *zap.Logger,
	maxRetryAttempts int,
) *AllocateUseCase {
	return &AllocateUseCase{
		executor:         executor,
		catalogRepo:      catalogRepo,
		locationRepo:     locationRepo,
		invalidator:      invalidator,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// Allocate moves one quantity from the warehouse to a branch.
func (uc *AllocateUseCase) Allocate(ctx context.Context, req dto.AllocationRequest) (*dto.AllocationResult, error) {
	bulk := dto.BulkAllocationRequest{
		SourceLocationID:      req.SourceLocationID,
		DestinationLocationID: req.DestinationLocationID,
		Items: []dto.BulkAllocationItem{{
			ProductID: req.ProductID,
			VariantID: req.VariantID,
			Quantity:  req.Quantity,
		}},
		Notes: req.Notes,
	}

	results, err := uc.AllocateBatch(ctx, bulk)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// AllocateBatch processes the items as one atomic group: either every item is
// applied and recorded, or none is and the offending item's result carries
// the first validation failure.
func (uc *AllocateUseCase) AllocateBatch(ctx context.Context, req dto.BulkAllocationRequest) ([]dto.AllocationResult, error) {
	uc.logger.Info("allocation started",
		zap.Int("sourceLocationId", req.SourceLocationID),
		zap.Int("destinationLocationId", req.DestinationLocationID),
		zap.Int("itemCount", len(req.Items)),
	)

	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("allocation request contains no items")
	}

	source, destination, err := uc.resolveLocations(ctx, req.SourceLocationID, req.DestinationLocationID)
	if err != nil {
		return nil, err
	}

	items, err := uc.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	results, err := uc.executeWithRetry(ctx, source, destination, items, req.Notes)
	if err != nil {
		return nil, err
	}

	uc.invalidateProjections(ctx, req, source, results)

	return results, nil
}

// resolveLocations looks both ids up in the directory. Unknown ids resolve to
// nil so the validator reports them as InvalidLocationError instead of a bare
// not-found.
func (uc *AllocateUseCase) resolveLocations(ctx context.Context, sourceID, destinationID int) (*domain.Location, *domain.Location, error) {
	source, err := uc.locationRepo.FindByID(ctx, sourceID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, nil, err
		}
		source = nil
	}

	destination, err := uc.locationRepo.FindByID(ctx, destinationID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, nil, err
		}
		destination = nil
	}

	return source, destination, nil
}

func (uc *AllocateUseCase) resolveItems(ctx context.Context, reqItems []dto.BulkAllocationItem) ([]service.ResolvedItem, error) {
	items := make([]service.ResolvedItem, len(reqItems))
	for i, reqItem := range reqItems {
		product, err := uc.catalogRepo.FindByID(ctx, reqItem.ProductID)
		if err != nil {
			return nil, err
		}

		if reqItem.VariantID != nil {
			variant, err := uc.catalogRepo.FindVariantByID(ctx, *reqItem.VariantID)
			if err != nil {
				return nil, err
			}
			if variant.ProductID != reqItem.ProductID {
				return nil, apperrors.NewVariantMismatchError(
					"variant does not belong to the requested product")
			}
		}

		items[i] = service.ResolvedItem{
			Index:     i,
			Product:   product,
			ProductID: reqItem.ProductID,
			VariantID: reqItem.VariantID,
			Quantity:  reqItem.Quantity,
		}
	}

	return items, nil
}

func (uc *AllocateUseCase) executeWithRetry(
	ctx context.Context,
	source, destination *domain.Location,
	items []service.ResolvedItem,
	notes string,
) ([]dto.AllocationResult, error) {
	maxAttempts := uc.maxRetryAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	// Backoff base per attempt: 0ms, 100ms, 200ms, ...
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		results, err := uc.executor.Execute(ctx, source, destination, items, notes)
		if err == nil {
			return results, nil
		}

		if isLockContentionError(err) {
			if attempt < maxAttempts {
				base := backoffs[len(backoffs)-1]
				if attempt-1 < len(backoffs) {
					base = backoffs[attempt-1]
				}
				// ±20% jitter so retrying writers do not stampede.
				jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
				time.Sleep(jitter)
				uc.logger.Warn("lock contention, retrying allocation",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
				)
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewConcurrentModificationError("allocation retries exhausted due to concurrent modification")
}

// invalidateProjections drops the cached read views for everything a
// successful allocation touched, synchronously, before the caller gets its
// response. Failures are logged but do not fail the allocation: the ledger is
// already committed and the cache entries expire on their own TTL.
func (uc *AllocateUseCase) invalidateProjections(ctx context.Context, req dto.BulkAllocationRequest, source *domain.Location, results []dto.AllocationResult) {
	committed := false
	for _, res := range results {
		if res.Success {
			committed = true
			break
		}
	}
	if !committed {
		return
	}

	seen := make(map[int]bool)
	for _, res := range results {
		if !res.Success || seen[res.ProductID] {
			continue
		}
		seen[res.ProductID] = true
		if err := uc.invalidator.InvalidateProduct(ctx, res.ProductID); err != nil {
			uc.logger.Error("failed to invalidate product projection",
				zap.Int("productId", res.ProductID), zap.Error(err))
		}
	}

	if err := uc.invalidator.InvalidateLocation(ctx, req.DestinationLocationID); err != nil {
		uc.logger.Error("failed to invalidate destination projection",
			zap.Int("locationId", req.DestinationLocationID), zap.Error(err))
	}
	if source != nil {
		if err := uc.invalidator.InvalidateLocation(ctx, source.ID); err != nil {
			uc.logger.Error("failed to invalidate source projection",
				zap.Int("locationId", source.ID), zap.Error(err))
		}
	}
}

func isLockContentionError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1213: deadlock victim, 1205: lock wait timeout.
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

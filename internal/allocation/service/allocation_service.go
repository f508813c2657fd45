package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockroom/internal/allocation/validator"
	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
	"stockroom/internal/infrastructure/mysql"
)

type StockRepository interface {
	GetForUpdate(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID int) (*domain.StockRecord, error)
	AdjustQuantity(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID, delta int) (*domain.StockRecord, error)
}

type HistoryRepository interface {
	Insert(ctx context.Context, q mysql.Querier, entry domain.AllocationEntry) error
}

// ResolvedItem is one allocation item with its catalog entry already looked
// up by the use case. Index preserves the item's position in the caller's
// request so results stay aligned.
type ResolvedItem struct {
	Index     int
	Product   *domain.Product
	ProductID int
	VariantID *int
	Quantity  int
}

// AllocationService executes one allocation batch as a single transaction:
// lock the warehouse rows in key order, validate against the locked state,
// move stock, record history, commit. Any validation failure rolls the whole
// batch back untouched.
type AllocationService struct {
	txMgr       mysql.TxManager
	stockRepo   StockRepository
	historyRepo HistoryRepository
	logger      *zap.Logger
	txTimeout   time.Duration
}

func NewAllocationService(
	txMgr mysql.TxManager,
	stockRepo StockRepository,
	historyRepo HistoryRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *AllocationService {
	return &AllocationService{
		txMgr:       txMgr,
		stockRepo:   stockRepo,
		historyRepo: historyRepo,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

// Execute processes the items all-or-nothing. Domain failures come back
// inside the results with a nil error; the error return is reserved for
// infrastructure problems (including deadlocks the use case retries).
func (s *AllocationService) Execute(
	ctx context.Context,
	source *domain.Location,
	destination *domain.Location,
	items []ResolvedItem,
	notes string,
) ([]dto.AllocationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.txMgr.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback on every exit path; MySQL ignores it after a commit.
	defer tx.Rollback()

	available, err := s.lockWarehouseRows(txCtx, tx, source, items)
	if err != nil {
		return nil, err
	}

	valItems := make([]validator.Item, len(items))
	refs := make([]validator.RefData, len(items))
	for i, item := range items {
		valItems[i] = validator.Item{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
		refs[i] = validator.RefData{
			Source:      source,
			Destination: destination,
			Product:     item.Product,
			Available:   available[domain.KeyOf(item.ProductID, item.VariantID)],
		}
	}

	if failedIdx, valErr := validator.ValidateBatch(valItems, refs); valErr != nil {
		s.logger.Warn("allocation batch rejected",
			zap.Int("failedItemIndex", failedIdx),
			zap.String("reason", valErr.Error()),
		)
		return s.failedResults(items, failedIdx, valErr), nil
	}

	results := make([]dto.AllocationResult, len(items))
	for i, item := range items {
		srcRec, err := s.stockRepo.AdjustQuantity(txCtx, tx, item.ProductID, item.VariantID, source.ID, -item.Quantity)
		if err != nil {
			if nse, ok := apperrors.IsNegativeStockError(err); ok {
				// Validation passed but the row moved underneath us; treat
				// as fatal for the whole batch, nothing is committed.
				s.logger.Error("negative stock guard tripped after validation",
					zap.Int("productId", item.ProductID),
					zap.Intp("variantId", item.VariantID),
					zap.Int("delta", nse.Delta),
				)
				return s.failedResults(items, i, err), nil
			}
			return nil, err
		}

		dstRec, err := s.stockRepo.AdjustQuantity(txCtx, tx, item.ProductID, item.VariantID, destination.ID, item.Quantity)
		if err != nil {
			return nil, err
		}

		entry := domain.AllocationEntry{
			ID:                    uuid.New().String(),
			ProductID:             item.ProductID,
			VariantID:             item.VariantID,
			SourceLocationID:      source.ID,
			DestinationLocationID: destination.ID,
			Quantity:              item.Quantity,
			CreatedAt:             time.Now().UTC(),
		}
		if notes != "" {
			n := notes
			entry.Notes = &n
		}
		if err := s.historyRepo.Insert(txCtx, tx, entry); err != nil {
			return nil, err
		}

		results[i] = dto.AllocationResult{
			ItemIndex:   item.Index,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Quantity:    item.Quantity,
			Success:     true,
			Source:      srcRec,
			Destination: dstRec,
			Entry:       &entry,
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit allocation transaction", zap.Error(err))
		return nil, err
	}

	for _, res := range results {
		s.logger.Info("stock allocated",
			zap.Int("productId", res.ProductID),
			zap.Intp("variantId", res.VariantID),
			zap.Int("quantity", res.Quantity),
			zap.Int("sourceLocationId", source.ID),
			zap.Int("destinationLocationId", destination.ID),
			zap.String("allocationId", res.Entry.ID),
		)
	}

	return results, nil
}

// lockWarehouseRows takes row locks on the source records in ascending key
// order so two batches touching overlapping keys cannot deadlock, and returns
// the locked availability per key. A missing row or source means zero.
func (s *AllocationService) lockWarehouseRows(
	ctx context.Context,
	tx mysql.Tx,
	source *domain.Location,
	items []ResolvedItem,
) (map[domain.StockKey]int, error) {
	available := make(map[domain.StockKey]int, len(items))
	if source == nil || !source.IsWarehouse() {
		// Validation rejects the batch; nothing sensible to lock.
		return available, nil
	}

	type keyedItem struct {
		key       domain.StockKey
		productID int
		variantID *int
	}
	unique := make(map[domain.StockKey]keyedItem, len(items))
	for _, item := range items {
		key := domain.KeyOf(item.ProductID, item.VariantID)
		unique[key] = keyedItem{key: key, productID: item.ProductID, variantID: item.VariantID}
	}

	ordered := make([]keyedItem, 0, len(unique))
	for _, ki := range unique {
		ordered = append(ordered, ki)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key.Less(ordered[j].key) })

	for _, ki := range ordered {
		rec, err := s.stockRepo.GetForUpdate(ctx, tx, ki.productID, ki.variantID, source.ID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			available[ki.key] = rec.Quantity
		}
	}

	return available, nil
}

func (s *AllocationService) failedResults(items []ResolvedItem, failedIdx int, failure error) []dto.AllocationResult {
	results := make([]dto.AllocationResult, len(items))
	for i, item := range items {
		results[i] = dto.AllocationResult{
			ItemIndex: item.Index,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Success:   false,
		}
		if i == failedIdx {
			results[i].Error = failure
		}
	}
	return results
}

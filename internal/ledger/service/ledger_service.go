package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/infrastructure/mysql"
)

// StockRepository is the ledger's view of stock_records persistence.
type StockRepository interface {
	Get(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID int) (*domain.StockRecord, error)
	AdjustQuantity(ctx context.Context, q mysql.Querier, productID int, variantID *int, locationID, delta int) (*domain.StockRecord, error)
	SumAllocated(ctx context.Context, q mysql.Querier, productID int, variantID *int, warehouseLocationID int) (int, error)
}

// LedgerService is the authoritative quantity-on-hand API. Every read and
// write of stock quantities in the system goes through it or through the same
// repository inside an allocation transaction.
type LedgerService struct {
	db                  mysql.Querier
	stockRepo           StockRepository
	warehouseLocationID int
	logger              *zap.Logger
}

func NewLedgerService(db *sql.DB, stockRepo StockRepository, warehouseLocationID int, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		db:                  db,
		stockRepo:           stockRepo,
		warehouseLocationID: warehouseLocationID,
		logger:              logger,
	}
}

// GetQuantity returns the recorded quantity for the key, 0 when no record
// exists. It never fails on a missing record.
func (s *LedgerService) GetQuantity(ctx context.Context, productID int, variantID *int, locationID int) (int, error) {
	rec, err := s.stockRepo.Get(ctx, s.db, productID, variantID, locationID)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Quantity, nil
}

// GetAvailable returns how much of the key can still be allocated. The
// warehouse row holds unallocated stock, so availability is its quantity;
// equivalently, grand total minus the sum already moved to branches.
func (s *LedgerService) GetAvailable(ctx context.Context, productID int, variantID *int) (int, error) {
	return s.GetQuantity(ctx, productID, variantID, s.warehouseLocationID)
}

// GetAllocated returns the total quantity already moved out to branches.
func (s *LedgerService) GetAllocated(ctx context.Context, productID int, variantID *int) (int, error) {
	return s.stockRepo.SumAllocated(ctx, s.db, productID, variantID, s.warehouseLocationID)
}

// AdjustQuantity applies delta to the key's record outside any allocation
// transaction, e.g. for initial stock receipts into the warehouse. Negative
// results are refused with NegativeStockError.
func (s *LedgerService) AdjustQuantity(ctx context.Context, productID int, variantID *int, locationID, delta int) (*domain.StockRecord, error) {
	rec, err := s.stockRepo.AdjustQuantity(ctx, s.db, productID, variantID, locationID, delta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock quantity adjusted",
		zap.Int("productId", productID),
		zap.Intp("variantId", variantID),
		zap.Int("locationId", locationID),
		zap.Int("delta", delta),
		zap.Int("quantity", rec.Quantity),
	)
	return rec, nil
}

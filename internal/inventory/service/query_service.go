package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	"stockroom/internal/infrastructure/cache"
	"stockroom/internal/infrastructure/mysql"
)

type StockReader interface {
	ListByProduct(ctx context.Context, q mysql.Querier, productID int) ([]domain.StockRecord, error)
	ListByLocation(ctx context.Context, q mysql.Querier, locationID int) ([]domain.StockRecord, error)
}

// QueryService serves the read-side projections callers render: per-variant
// availability for a product and the stock held at a branch. Responses are
// cached in redis; every successful allocation invalidates the touched keys
// synchronously through the CacheInvalidator methods below, so the cache can
// never answer with availability the ledger has already spent.
type QueryService struct {
	db                  mysql.Querier
	stockRepo           StockReader
	cache               cache.Client
	cacheTTL            time.Duration
	warehouseLocationID int
	logger              *zap.Logger
}

func NewQueryService(
	db *sql.DB,
	stockRepo StockReader,
	cacheClient cache.Client,
	cacheTTL time.Duration,
	warehouseLocationID int,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		db:                  db,
		stockRepo:           stockRepo,
		cache:               cacheClient,
		cacheTTL:            cacheTTL,
		warehouseLocationID: warehouseLocationID,
		logger:              logger,
	}
}

func productKey(productID int) string {
	return fmt.Sprintf("stockroom:availability:product:%d", productID)
}

func locationKey(locationID int) string {
	return fmt.Sprintf("stockroom:stock:location:%d", locationID)
}

// ListAvailableByProduct returns one row per (variant) key the ledger has
// records for: available (warehouse on-hand), allocated (sum across
// branches), and their total.
func (s *QueryService) ListAvailableByProduct(ctx context.Context, productID int) ([]dto.ProductAvailability, error) {
	key := productKey(productID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var views []dto.ProductAvailability
		if err := json.Unmarshal([]byte(cached), &views); err == nil {
			return views, nil
		}
		// Unreadable payload; fall through to recompute and overwrite.
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("availability cache read failed", zap.Error(err))
	}

	records, err := s.stockRepo.ListByProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	type tally struct {
		variantID *int
		available int
		allocated int
	}
	tallies := make(map[domain.StockKey]*tally)
	order := []domain.StockKey{}
	for _, rec := range records {
		k := domain.KeyOf(rec.ProductID, rec.VariantID)
		t, ok := tallies[k]
		if !ok {
			t = &tally{variantID: rec.VariantID}
			tallies[k] = t
			order = append(order, k)
		}
		if rec.LocationID == s.warehouseLocationID {
			t.available += rec.Quantity
		} else {
			t.allocated += rec.Quantity
		}
	}

	views := make([]dto.ProductAvailability, 0, len(order))
	for _, k := range order {
		t := tallies[k]
		views = append(views, dto.ProductAvailability{
			ProductID: productID,
			VariantID: t.variantID,
			Available: t.available,
			Allocated: t.allocated,
			Total:     t.available + t.allocated,
		})
	}

	s.storeCached(ctx, key, views)
	return views, nil
}

// ListBranchStock returns every quantity held at the location.
func (s *QueryService) ListBranchStock(ctx context.Context, locationID int) ([]dto.BranchStock, error) {
	key := locationKey(locationID)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var views []dto.BranchStock
		if err := json.Unmarshal([]byte(cached), &views); err == nil {
			return views, nil
		}
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("branch stock cache read failed", zap.Error(err))
	}

	records, err := s.stockRepo.ListByLocation(ctx, s.db, locationID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.BranchStock, 0, len(records))
	for _, rec := range records {
		views = append(views, dto.BranchStock{
			ProductID:  rec.ProductID,
			VariantID:  rec.VariantID,
			LocationID: rec.LocationID,
			Quantity:   rec.Quantity,
		})
	}

	s.storeCached(ctx, key, views)
	return views, nil
}

// InvalidateProduct drops the cached availability view for a product.
func (s *QueryService) InvalidateProduct(ctx context.Context, productID int) error {
	return s.cache.Delete(ctx, productKey(productID))
}

// InvalidateLocation drops the cached stock listing for a location.
func (s *QueryService) InvalidateLocation(ctx context.Context, locationID int) error {
	return s.cache.Delete(ctx, locationKey(locationID))
}

func (s *QueryService) storeCached(ctx context.Context, key string, views interface{}) {
	payload, err := json.Marshal(views)
	if err != nil {
		s.logger.Warn("failed to marshal projection for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		s.logger.Warn("failed to store projection in cache", zap.String("key", key), zap.Error(err))
	}
}

package inventory

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/config"
	"stockroom/internal/infrastructure/cache"
	"stockroom/internal/inventory/controller"
	"stockroom/internal/inventory/service"
	ledgerrepo "stockroom/internal/ledger/repository"
	locationrepo "stockroom/internal/location/repository"
)

// NewModule builds the read side. The returned QueryService doubles as the
// cache invalidator the allocation module calls after each commit.
func NewModule(db *sql.DB, cfg *config.Config, cacheClient cache.Client, logger *zap.Logger) (*controller.InventoryController, *service.QueryService) {
	stockRepo := ledgerrepo.NewMySQLStockRepository(db)
	locationRepo := locationrepo.NewMySQLLocationRepository(db)

	query := service.NewQueryService(
		db,
		stockRepo,
		cacheClient,
		cfg.Allocation.CacheTTL,
		cfg.Allocation.WarehouseLocationID,
		logger,
	)

	return controller.NewInventoryController(query, locationRepo, logger), query
}

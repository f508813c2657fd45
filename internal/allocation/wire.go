package allocation

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/allocation/controller"
	"stockroom/internal/allocation/repository"
	"stockroom/internal/allocation/service"
	"stockroom/internal/allocation/usecase"
	catalogrepo "stockroom/internal/catalog/repository"
	"stockroom/internal/config"
	"stockroom/internal/infrastructure/mysql"
	ledgerrepo "stockroom/internal/ledger/repository"
	locationrepo "stockroom/internal/location/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, invalidator usecase.CacheInvalidator, logger *zap.Logger) *controller.AllocationController {
	stockRepo := ledgerrepo.NewMySQLStockRepository(db)
	historyRepo := repository.NewMySQLHistoryRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)
	locationRepo := locationrepo.NewMySQLLocationRepository(db)

	engine := service.NewAllocationService(
		mysql.NewTxManager(db),
		stockRepo,
		historyRepo,
		logger,
		cfg.Allocation.TxTimeout,
	)

	useCase := usecase.NewAllocateUseCase(
		engine,
		productRepo,
		locationRepo,
		invalidator,
		logger,
		cfg.Allocation.MaxRetryAttempts,
	)

	return controller.NewAllocationController(useCase, historyRepo, logger)
}

package ledger

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/config"
	"stockroom/internal/ledger/controller"
	"stockroom/internal/ledger/repository"
	"stockroom/internal/ledger/service"
)

func NewModule(db *sql.DB, cfg *config.Config, invalidator controller.CacheInvalidator, logger *zap.Logger) *controller.LedgerController {
	stockRepo := repository.NewMySQLStockRepository(db)
	ledgerService := service.NewLedgerService(db, stockRepo, cfg.Allocation.WarehouseLocationID, logger)

	return controller.NewLedgerController(ledgerService, invalidator, logger)
}

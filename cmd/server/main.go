package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockroom/internal/allocation"
	"stockroom/internal/commons"
	"stockroom/internal/config"
	"stockroom/internal/infrastructure/cache"
	"stockroom/internal/infrastructure/logger"
	"stockroom/internal/infrastructure/mysql"
	"stockroom/internal/inventory"
	"stockroom/internal/ledger"
	"stockroom/internal/server"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var cacheClient cache.Client = cache.Noop{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		cacheClient = redisClient
		zapLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	invCtrl, queryService := inventory.NewModule(db, cfg, cacheClient, zapLogger)
	allocCtrl := allocation.NewModule(db, cfg, queryService, zapLogger)
	ledgerCtrl := ledger.NewModule(db, cfg, queryService, zapLogger)

	router := server.NewRouter(allocCtrl, invCtrl, ledgerCtrl, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "internal/config/config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return commons.LoadConfig(path)
	}

	return config.Load()
}

package commons

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"stockroom/internal/config"
)

// fileConfig mirrors config.Config with string durations, since yaml has no
// native duration scalar.
type fileConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		Name            string `yaml:"name"`
		MaxOpenConns    int    `yaml:"maxOpenConns"`
		MaxIdleConns    int    `yaml:"maxIdleConns"`
		ConnMaxLifetime string `yaml:"connMaxLifetime"`
	} `yaml:"database"`
	Redis struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"redis"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Allocation struct {
		WarehouseLocationID int    `yaml:"warehouseLocationId"`
		MaxRetryAttempts    int    `yaml:"maxRetryAttempts"`
		TxTimeout           string `yaml:"txTimeout"`
		CacheTTL            string `yaml:"cacheTtl"`
	} `yaml:"allocation"`
}

// LoadConfig reads a yaml config file. main falls back to config.Load
// (env-only) when the file does not exist.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	connMaxLifetime, err := parseDuration(fc.Database.ConnMaxLifetime, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("database.connMaxLifetime: %w", err)
	}

	txTimeout, err := parseDuration(fc.Allocation.TxTimeout, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("allocation.txTimeout: %w", err)
	}

	cacheTTL, err := parseDuration(fc.Allocation.CacheTTL, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("allocation.cacheTtl: %w", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: fc.Server.Port,
		},
		Database: config.DatabaseConfig{
			Host:            fc.Database.Host,
			Port:            fc.Database.Port,
			User:            fc.Database.User,
			Password:        fc.Database.Password,
			Name:            fc.Database.Name,
			MaxOpenConns:    fc.Database.MaxOpenConns,
			MaxIdleConns:    fc.Database.MaxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: config.RedisConfig{
			Enabled: fc.Redis.Enabled,
			Addr:    fc.Redis.Addr,
		},
		Log: config.LogConfig{
			Level: fc.Log.Level,
		},
		Allocation: config.AllocationConfig{
			WarehouseLocationID: fc.Allocation.WarehouseLocationID,
			MaxRetryAttempts:    fc.Allocation.MaxRetryAttempts,
			TxTimeout:           txTimeout,
			CacheTTL:            cacheTTL,
		},
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

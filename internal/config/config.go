package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	Allocation AllocationConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled bool
	Addr    string
}

type LogConfig struct {
	Level string
}

type AllocationConfig struct {
	// WarehouseLocationID is the distinguished source location holding
	// unallocated inventory.
	WarehouseLocationID int
	MaxRetryAttempts    int
	TxTimeout           time.Duration
	CacheTTL            time.Duration
}

// Load builds the configuration from environment variables with sane
// defaults. commons.LoadConfig layers a yaml file underneath when one exists.
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "stockroom")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "stockroom")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WAREHOUSE_LOCATION_ID", 1)
	viper.SetDefault("ALLOCATION_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("ALLOCATION_TX_TIMEOUT", "5s")
	viper.SetDefault("ALLOCATION_CACHE_TTL", "30s")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	txTimeout, err := time.ParseDuration(viper.GetString("ALLOCATION_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(viper.GetString("ALLOCATION_CACHE_TTL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Enabled: viper.GetBool("REDIS_ENABLED"),
			Addr:    viper.GetString("REDIS_ADDR"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Allocation: AllocationConfig{
			WarehouseLocationID: viper.GetInt("WAREHOUSE_LOCATION_ID"),
			MaxRetryAttempts:    viper.GetInt("ALLOCATION_MAX_RETRY_ATTEMPTS"),
			TxTimeout:           txTimeout,
			CacheTTL:            cacheTTL,
		},
	}

	return cfg, nil
}

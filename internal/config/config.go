// Package config reads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds every environment-driven server setting
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"3002"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"tresmil.db"`

	CacheRefreshMS int    `env:"CACHE_REFRESH_MS" envDefault:"60000"`
	RefreshSecret  string `env:"REFRESH_SECRET"`
	RecorderBuffer int    `env:"RECORDER_BUFFER" envDefault:"64"`

	StaticDir string     `env:"STATIC_DIR" envDefault:"public"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the given .env files (default ".env") into the process
// environment and parses it. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Parse builds a Config from an explicit variable map, ignoring the process environment
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH required when STORAGE_TYPE=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or sqlite", c.StorageType)
	}
	if c.CacheRefreshMS <= 0 {
		return fmt.Errorf("CACHE_REFRESH_MS must be positive, got %d", c.CacheRefreshMS)
	}
	return nil
}

// CacheRefresh returns the history cache refresh interval
func (c Config) CacheRefresh() time.Duration {
	return time.Duration(c.CacheRefreshMS) * time.Millisecond
}

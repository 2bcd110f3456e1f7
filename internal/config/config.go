// Package config resolves where stockbook keeps its files and how it logs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// File names inside the data directory, one per store.
const (
	ProductsFile     = "products.db"
	TransactionsFile = "transactions.db"
	ActivityFile     = "activity.db"
)

// Config holds the runtime settings.
type Config struct {
	DataDir           string
	LogFile           string
	LogLevel          string
	LowStockThreshold int
}

// Load reads an optional .env file (envFile, or ".env" when empty) and then
// the STOCKBOOK_* environment variables. A missing .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := &Config{
		DataDir:           getEnv("STOCKBOOK_DATA_DIR", "data"),
		LogFile:           getEnv("STOCKBOOK_LOG_FILE", ""),
		LogLevel:          getEnv("STOCKBOOK_LOG_LEVEL", "info"),
		LowStockThreshold: getEnvAsInt("STOCKBOOK_LOW_STOCK_THRESHOLD", 5),
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative, got %d", c.LowStockThreshold)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ProductsPath returns the catalog file path.
func (c *Config) ProductsPath() string {
	return filepath.Join(c.DataDir, ProductsFile)
}

// TransactionsPath returns the ledger file path.
func (c *Config) TransactionsPath() string {
	return filepath.Join(c.DataDir, TransactionsFile)
}

// ActivityPath returns the activity log file path.
func (c *Config) ActivityPath() string {
	return filepath.Join(c.DataDir, ActivityFile)
}

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
		slog.Warn("ignoring malformed integer setting", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

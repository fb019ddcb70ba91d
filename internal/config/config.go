// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/tearsheet/internal/modules/validation"
	"github.com/aristath/tearsheet/internal/utils"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for all databases (always absolute)
	LogLevel     string
	Port         int
	DevMode      bool
	CORSOrigins  []string
	RiskFreeRate float64       // Default annual rate for the Sharpe ratio
	CacheTTL     time.Duration // Zero disables result caching
	Limits       validation.Limits
	Backup       BackupConfig
}

// BackupConfig holds off-site backup settings
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // Empty for AWS; set for R2, MinIO and friends
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Schedule        string // Cron expression with a seconds field
	RetentionDays   int    // 0 keeps every backup
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("TEARSHEET_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	limits := validation.DefaultLimits()
	limits.MaxPortfolioSize = getEnvAsInt("MAX_PORTFOLIO_SIZE", limits.MaxPortfolioSize)
	limits.MaxRangeDays = getEnvAsInt("MAX_DATE_RANGE_DAYS", limits.MaxRangeDays)

	cfg := &Config{
		DataDir:      dataDir,
		Port:         getEnvAsInt("PORT", 8000),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  utils.SplitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RiskFreeRate: getEnvAsFloat("RISK_FREE_RATE", 0.0),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", time.Hour),
		Limits:       limits,
		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvAsBool("BACKUP_S3_PATH_STYLE", false),
			Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if math.IsNaN(c.RiskFreeRate) || c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("RISK_FREE_RATE must be between 0 and 1, got %v", c.RiskFreeRate)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.Limits.MaxPortfolioSize < c.Limits.MinPortfolioSize {
		return fmt.Errorf("MAX_PORTFOLIO_SIZE must be at least %d", c.Limits.MinPortfolioSize)
	}
	if c.Limits.MaxRangeDays <= 0 {
		return fmt.Errorf("MAX_DATE_RANGE_DAYS must be positive")
	}
	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("BACKUP_S3_BUCKET is required when backups are enabled")
		}
		if c.Backup.RetentionDays < 0 {
			return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative")
		}
	}
	return nil
}

// HistoryDBPath is the location of the price history database
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CacheDBPath is the location of the analysis cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

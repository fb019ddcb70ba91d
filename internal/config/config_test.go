package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/tearsheet/internal/modules/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEARSHEET_DATA_DIR", dir)
	for _, key := range []string{"PORT", "CORS_ORIGINS", "RISK_FREE_RATE", "CACHE_TTL", "MAX_PORTFOLIO_SIZE", "BACKUP_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 0.0, cfg.RiskFreeRate)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.Limits.MaxPortfolioSize)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.HistoryDBPath())
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CacheDBPath())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TEARSHEET_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RISK_FREE_RATE", "0.045")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("MAX_PORTFOLIO_SIZE", "25")
	t.Setenv("MAX_DATE_RANGE_DAYS", "730")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 0.045, cfg.RiskFreeRate)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 25, cfg.Limits.MaxPortfolioSize)
	assert.Equal(t, 730, cfg.Limits.MaxRangeDays)
}

func TestLoad_BackupRequiresBucket(t *testing.T) {
	t.Setenv("TEARSHEET_DATA_DIR", t.TempDir())
	t.Setenv("BACKUP_ENABLED", "true")
	t.Setenv("BACKUP_S3_BUCKET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "BACKUP_S3_BUCKET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: 8000, CacheTTL: time.Hour, Limits: validation.DefaultLimits()}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"risk free rate", func(c *Config) { c.RiskFreeRate = 1.5 }},
		{"cache ttl", func(c *Config) { c.CacheTTL = -time.Second }},
		{"portfolio size", func(c *Config) { c.Limits.MaxPortfolioSize = 0 }},
		{"date range", func(c *Config) { c.Limits.MaxRangeDays = 0 }},
		{"retention", func(c *Config) {
			c.Backup = BackupConfig{Enabled: true, Bucket: "b", RetentionDays: -1}
		}},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

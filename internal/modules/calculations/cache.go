// Package calculations caches computed analysis results in the cache
// database. Entries are msgpack-encoded and expire after a TTL.
package calculations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores encoded results keyed by request hash
type Cache struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewCache creates a cache over the cache database
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		now: time.Now,
		log: log.With().Str("component", "calculation_cache").Logger(),
	}
}

// Key derives a stable cache key from the msgpack encoding of parts.
func Key(parts ...interface{}) (string, error) {
	h := sha256.New()
	for _, p := range parts {
		b, err := msgpack.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("failed to encode cache key part: %w", err)
		}
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get decodes the entry for key into dst. It reports false when the entry
// is missing or expired.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT payload FROM analysis_cache WHERE cache_key = ? AND expires_at > ?",
		key, c.now().Unix(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if err := msgpack.Unmarshal(payload, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		_, _ = c.db.ExecContext(ctx, "DELETE FROM analysis_cache WHERE cache_key = ?", key)
		return false, nil
	}
	return true, nil
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	now := c.now()
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analysis_cache (cache_key, payload, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		key, payload, now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate drops every entry. Called whenever stored prices change.
func (c *Cache) Invalidate(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, "DELETE FROM analysis_cache")
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.log.Debug().Int64("entries", n).Msg("Invalidated analysis cache")
	}
	return nil
}

// CleanupExpired deletes expired entries and reports how many were removed.
func (c *Cache) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM analysis_cache WHERE expires_at <= ?", c.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired cache entries: %w", err)
	}
	return n, nil
}

// Package history stores daily price bars and serves them to the analysis
// pipeline as its price source.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/tearsheet/internal/database"
	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/prices"
	"github.com/rs/zerolog"
)

// SymbolCoverage summarises the stored history of one symbol.
type SymbolCoverage struct {
	Symbol    string `json:"symbol"`
	FirstDate string `json:"first_date"`
	LastDate  string `json:"last_date"`
	Bars      int    `json:"bars"`
}

// HistoryDB provides access to historical price data
type HistoryDB struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		now: time.Now,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// GetDailyPrices returns bars for a symbol with start ≤ date ≤ end,
// ascending by date. No rows is an empty slice, not an error.
func (h *HistoryDB) GetDailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]prices.Bar, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM daily_prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := h.db.QueryContext(ctx, query, symbol, dayUnix(start), dayUnix(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	bars := []prices.Bar{}
	for rows.Next() {
		var b prices.Bar
		var dateUnix int64
		if err := rows.Scan(&dateUnix, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		b.Date = time.Unix(dateUnix, 0).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return bars, nil
}

// UpsertPrices inserts or replaces bars for a symbol in one transaction.
func (h *HistoryDB) UpsertPrices(ctx context.Context, symbol string, bars []prices.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	now := h.now().Unix()
	err := database.WithTransaction(h.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO daily_prices
				(symbol, date, open, high, low, close, volume, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, b := range bars {
			if _, err := stmt.ExecContext(ctx, symbol, dayUnix(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
				return fmt.Errorf("failed to insert price for %s on %s: %w", symbol, b.Date.Format(domain.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	h.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("Stored daily prices")
	return len(bars), nil
}

// ListSymbols returns coverage for every stored symbol, sorted by symbol.
func (h *HistoryDB) ListSymbols(ctx context.Context) ([]SymbolCoverage, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT symbol, MIN(date), MAX(date), COUNT(*)
		FROM daily_prices
		GROUP BY symbol
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer rows.Close()

	out := []SymbolCoverage{}
	for rows.Next() {
		var c SymbolCoverage
		var first, last int64
		if err := rows.Scan(&c.Symbol, &first, &last, &c.Bars); err != nil {
			return nil, fmt.Errorf("failed to scan symbol coverage: %w", err)
		}
		c.FirstDate = time.Unix(first, 0).UTC().Format(domain.DateLayout)
		c.LastDate = time.Unix(last, 0).UTC().Format(domain.DateLayout)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}
	return out, nil
}

// DeleteSymbol removes all bars of a symbol and reports how many were removed.
func (h *HistoryDB) DeleteSymbol(ctx context.Context, symbol string) (int64, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM daily_prices WHERE symbol = ?", symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to delete prices for %s: %w", symbol, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n, nil
}

func dayUnix(t time.Time) int64 {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

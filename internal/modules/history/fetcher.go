package history

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/prices"
	"github.com/rs/zerolog"
)

// PriceReader reads stored bars for one symbol.
type PriceReader interface {
	GetDailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]prices.Bar, error)
}

// Fetcher is the price source of the analysis pipeline. It reads each
// symbol independently and merges the results into a wide table.
type Fetcher struct {
	reader PriceReader
	log    zerolog.Logger
}

// NewFetcher creates a fetcher over stored price history.
func NewFetcher(reader PriceReader, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		reader: reader,
		log:    log.With().Str("service", "fetcher").Logger(),
	}
}

// FetchSymbols reads every symbol. A symbol without rows yields an empty
// SymbolData; only a failing read or cancellation returns an error.
func (f *Fetcher) FetchSymbols(ctx context.Context, symbols []string, start, end time.Time) ([]prices.SymbolData, error) {
	out := make([]prices.SymbolData, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bars, err := f.reader.GetDailyPrices(ctx, symbol, start, end)
		if err != nil {
			return nil, domain.NewDataFetchError(fmt.Sprintf("Failed to load price history for %s", symbol), err)
		}
		if len(bars) == 0 {
			f.log.Warn().Str("symbol", symbol).Msg("No data available for symbol")
		} else {
			f.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Loaded price history")
		}
		out = append(out, prices.SymbolData{Symbol: symbol, Bars: bars})
	}
	return out, nil
}

// FetchHistorical returns the merged wide table for the symbols. Symbols
// with no data are silently absent from the table; if none has data a
// DataFetchError is returned.
func (f *Fetcher) FetchHistorical(ctx context.Context, symbols []string, start, end time.Time) (*prices.RawTable, error) {
	if len(symbols) == 0 {
		return nil, domain.NewDataFetchError("No symbols provided", nil)
	}

	f.log.Info().
		Strs("symbols", symbols).
		Str("start", start.Format(domain.DateLayout)).
		Str("end", end.Format(domain.DateLayout)).
		Msg("Fetching historical data")

	data, err := f.FetchSymbols(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}

	table, err := prices.Merge(data)
	if err != nil {
		return nil, err
	}

	f.log.Info().Int("rows", table.Len()).Msg("Fetched historical data")
	return table, nil
}

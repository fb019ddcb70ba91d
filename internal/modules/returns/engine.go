// Package returns converts aligned close prices into per-symbol simple
// returns and the weighted portfolio return series.
package returns

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/prices"
	"github.com/aristath/tearsheet/pkg/formulas"
	"github.com/rs/zerolog"
)

// PortfolioSeriesName names the weighted portfolio return series.
const PortfolioSeriesName = "portfolio_returns"

// Matrix holds per-symbol returns on a shared date index. Every row has a
// defined return for every symbol.
type Matrix struct {
	Dates   []time.Time
	Symbols []string
	Values  map[string][]float64
}

// Len returns the number of retained rows.
func (m *Matrix) Len() int {
	return len(m.Dates)
}

// Series returns one symbol's returns as a ReturnSeries.
func (m *Matrix) Series(symbol string) (*domain.ReturnSeries, bool) {
	values, ok := m.Values[symbol]
	if !ok {
		return nil, false
	}
	return &domain.ReturnSeries{Name: symbol, Dates: m.Dates, Values: values}, true
}

// Engine computes return series. It holds no per-call state.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a return engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("service", "returns").Logger(),
	}
}

// SymbolReturns computes r[t] = p[t]/p[t-1] - 1 for every symbol. A row is
// kept only when every symbol has a defined return on it: the first row
// never is, and a gap in any one symbol drops the row for all of them.
func (e *Engine) SymbolReturns(table *prices.AlignedTable, symbols []string) (*Matrix, error) {
	if table == nil {
		return nil, domain.NewAnalysisError("Price table is empty", nil)
	}
	if len(symbols) == 0 {
		return nil, domain.NewAnalysisError("No symbols to calculate returns for", nil)
	}

	columns := make([][]float64, len(symbols))
	var missing []string
	for i, symbol := range symbols {
		col, ok := table.Column(symbol)
		if !ok {
			missing = append(missing, prices.ColumnName(symbol, "close"))
			continue
		}
		columns[i] = col
	}
	if len(missing) > 0 {
		return nil, domain.NewAnalysisError(
			fmt.Sprintf("Missing price columns: [%s]", strings.Join(missing, ", ")), nil)
	}

	m := &Matrix{
		Symbols: append([]string(nil), symbols...),
		Values:  make(map[string][]float64, len(symbols)),
	}
	for _, symbol := range symbols {
		m.Values[symbol] = []float64{}
	}

	row := make([]float64, len(symbols))
	dropped := 0
	for t := 1; t < table.Len(); t++ {
		complete := true
		for i, col := range columns {
			r, ok := formulas.SimpleReturn(col[t-1], col[t])
			if !ok {
				complete = false
				break
			}
			row[i] = r
		}
		if !complete {
			dropped++
			continue
		}
		m.Dates = append(m.Dates, table.Dates[t])
		for i, symbol := range symbols {
			m.Values[symbol] = append(m.Values[symbol], row[i])
		}
	}

	if dropped > 0 {
		e.log.Debug().
			Int("dropped_rows", dropped).
			Int("retained_rows", m.Len()).
			Msg("Dropped rows with incomplete returns")
	}

	return m, nil
}

// CalculatePortfolioReturns computes the weighted portfolio return series
// Σ weight_i × r_i[t] over the rows retained by SymbolReturns.
func (e *Engine) CalculatePortfolioReturns(table *prices.AlignedTable, symbols []string, weights []float64) (*domain.ReturnSeries, error) {
	if len(symbols) != len(weights) {
		return nil, domain.NewAnalysisError(
			fmt.Sprintf("Got %d weights for %d symbols", len(weights), len(symbols)), nil)
	}
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, domain.NewAnalysisError("Weights must be finite numbers", nil)
		}
	}

	matrix, err := e.SymbolReturns(table, symbols)
	if err != nil {
		return nil, err
	}

	series := e.weightedSum(matrix, symbols, weights)

	e.log.Info().
		Int("periods", series.Len()).
		Int("symbols", len(symbols)).
		Msg("Portfolio returns calculated")
	return series, nil
}

// weightedSum combines per-symbol returns. A symbol without a return column
// contributes zero and is logged rather than aborting.
func (e *Engine) weightedSum(m *Matrix, symbols []string, weights []float64) *domain.ReturnSeries {
	values := make([]float64, m.Len())
	for i, symbol := range symbols {
		col, ok := m.Values[symbol]
		if !ok || len(col) != len(values) {
			e.log.Warn().Str("symbol", symbol).Msg("Missing return data for symbol, contributing zero")
			continue
		}
		for t, r := range col {
			values[t] += weights[i] * r
		}
	}

	return &domain.ReturnSeries{
		Name:   PortfolioSeriesName,
		Dates:  append([]time.Time(nil), m.Dates...),
		Values: values,
	}
}

package returns

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/prices"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(n int) []time.Time {
	out := make([]time.Time, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func table(symbols []string, closes ...[]float64) *prices.AlignedTable {
	return &prices.AlignedTable{
		Dates:   dates(len(closes[0])),
		Symbols: symbols,
		Closes:  closes,
	}
}

func TestCalculatePortfolioReturns_NoGaps(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	for _, rows := range []int{2, 5, 30} {
		a := make([]float64, rows)
		b := make([]float64, rows)
		for i := range a {
			a[i] = 100 + float64(i)
			b[i] = 50 - 0.5*float64(i)
		}

		series, err := engine.CalculatePortfolioReturns(table([]string{"AAA", "BBB"}, a, b), []string{"AAA", "BBB"}, []float64{0.6, 0.4})
		require.NoError(t, err)
		assert.Equal(t, rows-1, series.Len())
		assert.Equal(t, PortfolioSeriesName, series.Name)
	}
}

func TestCalculatePortfolioReturns_WeightedSum(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	tbl := table([]string{"AAA", "BBB"}, []float64{100, 110, 99}, []float64{50, 50, 55})

	series, err := engine.CalculatePortfolioReturns(tbl, []string{"AAA", "BBB"}, []float64{0.5, 0.5})
	require.NoError(t, err)

	require.Equal(t, 2, series.Len())
	assert.InDelta(t, 0.5*0.1+0.5*0.0, series.Values[0], 1e-12)
	assert.InDelta(t, 0.5*-0.1+0.5*0.1, series.Values[1], 1e-12)
	assert.Equal(t, tbl.Dates[1:], series.Dates)
}

func TestCalculatePortfolioReturns_RowWiseDrop(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	nan := math.NaN()

	// BBB misses day 3: both the day-3 and day-4 returns are undefined for it,
	// and both rows are dropped for AAA as well.
	tbl := table([]string{"AAA", "BBB"},
		[]float64{100, 101, 102, 103, 104},
		[]float64{50, 51, nan, 53, 54},
	)

	series, err := engine.CalculatePortfolioReturns(tbl, []string{"AAA", "BBB"}, []float64{0.5, 0.5})
	require.NoError(t, err)

	require.Equal(t, 2, series.Len())
	assert.Equal(t, []time.Time{tbl.Dates[1], tbl.Dates[4]}, series.Dates)
}

func TestCalculatePortfolioReturns_ZeroPriorPriceDropsRow(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	tbl := table([]string{"AAA"}, []float64{10, 0, 5, 6})

	series, err := engine.CalculatePortfolioReturns(tbl, []string{"AAA"}, []float64{1})
	require.NoError(t, err)

	// 10->0 is -100%, 0->5 is undefined, 5->6 is +20%.
	require.Equal(t, 2, series.Len())
	assert.InDelta(t, -1.0, series.Values[0], 1e-12)
	assert.InDelta(t, 0.2, series.Values[1], 1e-12)
}

func TestCalculatePortfolioReturns_MissingColumn(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	tbl := table([]string{"REE", "FMC"}, []float64{50, 51}, []float64{40, 40})

	series, err := engine.CalculatePortfolioReturns(tbl, []string{"REE", "FMC", "DHC"}, []float64{0.7, 0.2, 0.1})
	require.Error(t, err)
	assert.Nil(t, series)
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))
	assert.Equal(t, "Missing price columns: [DHC_close]", err.Error())
}

func TestCalculatePortfolioReturns_RejectsBadInput(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	tbl := table([]string{"AAA"}, []float64{1, 2})

	_, err := engine.CalculatePortfolioReturns(tbl, []string{"AAA"}, []float64{0.5, 0.5})
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))

	_, err = engine.CalculatePortfolioReturns(tbl, []string{"AAA"}, []float64{math.NaN()})
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))

	_, err = engine.CalculatePortfolioReturns(nil, []string{"AAA"}, []float64{1})
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))

	_, err = engine.CalculatePortfolioReturns(tbl, nil, nil)
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))
}

func TestSymbolReturns(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	tbl := table([]string{"AAA", "BBB"}, []float64{100, 110}, []float64{50, 45})

	m, err := engine.SymbolReturns(tbl, []string{"AAA", "BBB"})
	require.NoError(t, err)

	aaa, ok := m.Series("AAA")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.1}, aaa.Values, 1e-12)

	bbb, _ := m.Series("BBB")
	assert.InDeltaSlice(t, []float64{-0.1}, bbb.Values, 1e-12)

	_, ok = m.Series("CCC")
	assert.False(t, ok)
}

func TestWeightedSum_MissingColumnContributesZero(t *testing.T) {
	var buf bytes.Buffer
	engine := NewEngine(zerolog.New(&buf))

	m := &Matrix{
		Dates:   dates(2),
		Symbols: []string{"AAA", "BBB"},
		Values:  map[string][]float64{"AAA": {0.1, 0.2}},
	}

	series := engine.weightedSum(m, []string{"AAA", "BBB"}, []float64{0.5, 0.5})
	assert.InDeltaSlice(t, []float64{0.05, 0.1}, series.Values, 1e-12)
	assert.Contains(t, buf.String(), `"symbol":"BBB"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

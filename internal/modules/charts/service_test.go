package charts

import (
	"testing"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(DefaultStyle(), zerolog.New(nil).Level(zerolog.Disabled))
}

func testSeries(values ...float64) *domain.ReturnSeries {
	dates := make([]time.Time, len(values))
	for i := range dates {
		dates[i] = time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC)
	}
	return &domain.ReturnSeries{Name: "portfolio_returns", Dates: dates, Values: values}
}

func TestPerformanceData(t *testing.T) {
	line, err := newTestService().PerformanceData(testSeries(0.1, -0.5, 0.2))
	require.NoError(t, err)

	require.Len(t, line.Points, 3)
	assert.Equal(t, ChartDataPoint{Time: "2024-01-02", Value: 10}, line.Points[0])
	assert.Equal(t, -45.0, line.Points[1].Value)
	assert.Equal(t, -34.0, line.Points[2].Value)
	assert.Equal(t, "#1f77b4", line.Color)
}

func TestDrawdownData(t *testing.T) {
	line, err := newTestService().DrawdownData(testSeries(0.1, -0.5, 0.2))
	require.NoError(t, err)

	values := []float64{line.Points[0].Value, line.Points[1].Value, line.Points[2].Value}
	assert.Equal(t, []float64{0, -50, -40}, values)
}

func TestChartsRejectEmptySeries(t *testing.T) {
	svc := newTestService()

	_, err := svc.PerformanceData(testSeries())
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))

	_, err = svc.DrawdownData(nil)
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))

	_, err = svc.RollingVolatilityData(testSeries())
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))
}

func TestCompositionData(t *testing.T) {
	slices, err := newTestService().CompositionData([]string{"REE", "FMC", "DHC"}, []float64{0.7, 0.2, 0.1})
	require.NoError(t, err)

	require.Len(t, slices, 3)
	assert.Equal(t, Slice{Label: "REE", Value: 70, Color: "#1f77b4"}, slices[0])
	assert.Equal(t, "#ff7f0e", slices[1].Color)
	assert.Equal(t, 10.0, slices[2].Value)

	_, err = newTestService().CompositionData([]string{"REE"}, []float64{0.5, 0.5})
	assert.Error(t, err)
}

func TestCompositionData_PaletteWraps(t *testing.T) {
	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG"}
	weights := []float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.2, 0.2}

	slices, err := newTestService().CompositionData(symbols, weights)
	require.NoError(t, err)
	assert.Equal(t, slices[0].Color, slices[6].Color)
}

func TestMetricsDashboard_Colors(t *testing.T) {
	svc := newTestService()

	bars := svc.MetricsDashboard(&domain.MetricsResult{
		TotalReturn:      0.1234,
		AnnualizedReturn: -0.05,
		SharpeRatio:      1.5,
		MaxDrawdown:      -0.2,
		Volatility:       0.18,
		WinRate:          0.45,
	})
	require.Len(t, bars, 6)

	assert.Equal(t, Bar{Label: "Total Return (%)", Value: 12.34, Color: "#1f77b4"}, bars[0])
	assert.Equal(t, "#d62728", bars[1].Color)
	assert.Equal(t, "#2ca02c", bars[2].Color)
	assert.Equal(t, 20.0, bars[3].Value)
	assert.Equal(t, "#ff7f0e", bars[4].Color)
	assert.Equal(t, 45.0, bars[5].Value)
	assert.Equal(t, "#d62728", bars[5].Color)

	bars = svc.MetricsDashboard(&domain.MetricsResult{SharpeRatio: 0.5, WinRate: 0.5})
	assert.Equal(t, "#ff7f0e", bars[2].Color)
	assert.Equal(t, "#2ca02c", bars[5].Color)

	bars = svc.MetricsDashboard(&domain.MetricsResult{SharpeRatio: 0})
	assert.Equal(t, "#d62728", bars[2].Color)
}

func TestMonthlyHeatmap(t *testing.T) {
	jan := 0.0123
	grid := &domain.MonthlyReturnGrid{Rows: []domain.MonthlyRow{{Year: 2024}}}
	grid.Rows[0].Months[0] = &jan

	heatmap := newTestService().MonthlyHeatmap(grid)
	assert.Equal(t, []int{2024}, heatmap.Years)
	assert.Len(t, heatmap.Months, 12)
	require.NotNil(t, heatmap.Values[0][0])
	assert.Equal(t, 1.23, *heatmap.Values[0][0])
	assert.Nil(t, heatmap.Values[0][1])

	empty := newTestService().MonthlyHeatmap(nil)
	assert.Empty(t, empty.Years)
}

func TestRollingVolatilityData(t *testing.T) {
	style := DefaultStyle()
	style.RollingWindow = 3
	svc := NewService(style, zerolog.New(nil).Level(zerolog.Disabled))

	line, err := svc.RollingVolatilityData(testSeries(0.01, -0.01, 0.02, 0.0, 0.01))
	require.NoError(t, err)
	require.Len(t, line.Points, 3)
	assert.Equal(t, "2024-01-04", line.Points[0].Time)
	assert.Greater(t, line.Points[0].Value, 0.0)

	line, err = svc.RollingVolatilityData(testSeries(0.01, 0.02))
	require.NoError(t, err)
	assert.Empty(t, line.Points)
}

func TestBuild(t *testing.T) {
	spec := &domain.PortfolioSpec{
		Holdings: []domain.Holding{{Symbol: "REE", Weight: 0.6}, {Symbol: "FMC", Weight: 0.4}},
	}
	series := testSeries(0.01, 0.02)
	metrics := &domain.MetricsResult{TotalReturn: 0.0302, TotalPeriods: 2}

	set, err := newTestService().Build(spec, series, metrics, &domain.MonthlyReturnGrid{})
	require.NoError(t, err)
	assert.Len(t, set.Performance.Points, 2)
	assert.Len(t, set.Composition, 2)
	assert.Len(t, set.Metrics, 6)
	assert.Empty(t, set.RollingVolatility.Points)
}

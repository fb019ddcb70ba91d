package charts

import (
	"fmt"
	"math"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/pkg/formulas"
	"github.com/rs/zerolog"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Service provides chart data operations
type Service struct {
	style Style
	log   zerolog.Logger
}

// NewService creates a new charts service
func NewService(style Style, log zerolog.Logger) *Service {
	return &Service{
		style: style,
		log:   log.With().Str("service", "charts").Logger(),
	}
}

// Build produces the full chart set for an analysis.
func (s *Service) Build(spec *domain.PortfolioSpec, series *domain.ReturnSeries, metrics *domain.MetricsResult, grid *domain.MonthlyReturnGrid) (*ChartSet, error) {
	performance, err := s.PerformanceData(series)
	if err != nil {
		return nil, err
	}
	drawdown, err := s.DrawdownData(series)
	if err != nil {
		return nil, err
	}
	composition, err := s.CompositionData(spec.Symbols(), spec.Weights())
	if err != nil {
		return nil, err
	}
	rolling, err := s.RollingVolatilityData(series)
	if err != nil {
		return nil, err
	}

	return &ChartSet{
		Performance:       *performance,
		Drawdown:          *drawdown,
		Composition:       composition,
		Metrics:           s.MetricsDashboard(metrics),
		MonthlyHeatmap:    s.MonthlyHeatmap(grid),
		RollingVolatility: *rolling,
	}, nil
}

// PerformanceData returns the cumulative return path in percent.
func (s *Service) PerformanceData(series *domain.ReturnSeries) (*Line, error) {
	if series.IsEmpty() {
		return nil, emptySeriesError()
	}

	cumulative := formulas.CumulativeReturns(series.Values)
	points := make([]ChartDataPoint, len(cumulative))
	for i, c := range cumulative {
		points[i] = ChartDataPoint{
			Time:  series.Dates[i].Format(domain.DateLayout),
			Value: round((c-1)*100, 2),
		}
	}

	return &Line{Name: "Cumulative Return (%)", Color: s.style.PerformanceColor, Points: points}, nil
}

// DrawdownData returns the drawdown path in percent.
func (s *Service) DrawdownData(series *domain.ReturnSeries) (*Line, error) {
	if series.IsEmpty() {
		return nil, emptySeriesError()
	}

	drawdowns := formulas.Drawdowns(formulas.CumulativeReturns(series.Values))
	points := make([]ChartDataPoint, len(drawdowns))
	for i, d := range drawdowns {
		points[i] = ChartDataPoint{
			Time:  series.Dates[i].Format(domain.DateLayout),
			Value: round(d*100, 2),
		}
	}

	return &Line{Name: "Drawdown (%)", Color: s.style.DrawdownColor, Points: points}, nil
}

// CompositionData returns the portfolio weights in percent, one slice per
// holding, coloured from the palette.
func (s *Service) CompositionData(symbols []string, weights []float64) ([]Slice, error) {
	if len(symbols) != len(weights) {
		return nil, domain.NewAnalysisError(
			fmt.Sprintf("Composition needs one weight per symbol, got %d for %d", len(weights), len(symbols)), nil)
	}

	slices := make([]Slice, len(symbols))
	for i, symbol := range symbols {
		slices[i] = Slice{
			Label: symbol,
			Value: round(weights[i]*100, 1),
			Color: s.paletteColor(i),
		}
	}
	return slices, nil
}

// MetricsDashboard returns the headline metrics as coloured bars.
func (s *Service) MetricsDashboard(m *domain.MetricsResult) []Bar {
	if m == nil {
		return []Bar{}
	}

	totalReturn := m.TotalReturn * 100
	annualized := m.AnnualizedReturn * 100
	winRate := m.WinRate * 100

	return []Bar{
		{Label: "Total Return (%)", Value: round(totalReturn, 2), Color: s.signColor(totalReturn)},
		{Label: "Annualized Return (%)", Value: round(annualized, 2), Color: s.signColor(annualized)},
		{Label: "Sharpe Ratio", Value: round(m.SharpeRatio, 3), Color: s.sharpeColor(m.SharpeRatio)},
		{Label: "Max Drawdown (%)", Value: round(math.Abs(m.MaxDrawdown)*100, 2), Color: s.style.NegativeColor},
		{Label: "Volatility (%)", Value: round(m.Volatility*100, 2), Color: s.style.WarningColor},
		{Label: "Win Rate (%)", Value: round(winRate, 1), Color: s.winRateColor(winRate)},
	}
}

// MonthlyHeatmap converts the monthly grid to percent values.
func (s *Service) MonthlyHeatmap(grid *domain.MonthlyReturnGrid) Heatmap {
	heatmap := Heatmap{
		Years:  []int{},
		Months: monthLabels,
		Values: [][]*float64{},
	}
	if grid == nil {
		return heatmap
	}

	for _, row := range grid.Rows {
		cells := make([]*float64, 12)
		for m, v := range row.Months {
			if v != nil {
				pct := round(*v*100, 2)
				cells[m] = &pct
			}
		}
		heatmap.Years = append(heatmap.Years, row.Year)
		heatmap.Values = append(heatmap.Values, cells)
	}
	return heatmap
}

// RollingVolatilityData returns annualized volatility in percent over a
// sliding window. Series shorter than the window yield an empty line.
func (s *Service) RollingVolatilityData(series *domain.ReturnSeries) (*Line, error) {
	if series.IsEmpty() {
		return nil, emptySeriesError()
	}

	window := s.style.RollingWindow
	line := &Line{
		Name:   fmt.Sprintf("Rolling Volatility %dD (%%)", window),
		Color:  s.style.WarningColor,
		Points: []ChartDataPoint{},
	}

	vol := formulas.RollingVolatility(series.Values, window)
	if vol == nil {
		s.log.Debug().Int("periods", series.Len()).Int("window", window).Msg("Series shorter than rolling window")
		return line, nil
	}

	offset := window - 1
	for i, v := range vol {
		line.Points = append(line.Points, ChartDataPoint{
			Time:  series.Dates[i+offset].Format(domain.DateLayout),
			Value: round(v*100, 2),
		})
	}
	return line, nil
}

func (s *Service) paletteColor(i int) string {
	if len(s.style.Palette) == 0 {
		return ""
	}
	return s.style.Palette[i%len(s.style.Palette)]
}

func (s *Service) signColor(v float64) string {
	if v >= 0 {
		return s.style.PositiveColor
	}
	return s.style.NegativeColor
}

func (s *Service) sharpeColor(v float64) string {
	switch {
	case v > s.style.SharpeGoodThreshold:
		return s.style.GoodColor
	case v > 0:
		return s.style.WarningColor
	default:
		return s.style.NegativeColor
	}
}

func (s *Service) winRateColor(pct float64) string {
	if pct >= s.style.WinRateGoodThreshold {
		return s.style.GoodColor
	}
	return s.style.NegativeColor
}

func emptySeriesError() error {
	return domain.NewAnalysisError("Cannot create chart with empty returns data", nil)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

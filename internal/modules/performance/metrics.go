// Package performance derives the fixed metrics set, drawdown path and
// monthly return grid from a portfolio return series.
package performance

import (
	"math"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/pkg/formulas"
	"github.com/rs/zerolog"
)

// Config holds the defaults applied when a caller does not override them.
type Config struct {
	RiskFreeRate float64 // Annual rate subtracted in the Sharpe ratio
}

// DefaultConfig returns the standard metrics configuration.
func DefaultConfig() Config {
	return Config{RiskFreeRate: 0.0}
}

// Calculator computes metrics. Every call builds fresh intermediates, so a
// Calculator is safe for concurrent use.
type Calculator struct {
	cfg Config
	log zerolog.Logger
}

// NewCalculator creates a metrics calculator.
func NewCalculator(cfg Config, log zerolog.Logger) *Calculator {
	return &Calculator{
		cfg: cfg,
		log: log.With().Str("service", "performance").Logger(),
	}
}

// DefaultRiskFreeRate returns the configured risk-free rate.
func (c *Calculator) DefaultRiskFreeRate() float64 {
	return c.cfg.RiskFreeRate
}

// CalculatePerformanceMetrics computes the metrics set for a return series:
//
//	total_return      = Π(1+r) - 1
//	annualized_return = (1 + mean(r))^252 - 1
//	volatility        = sample std(r) × √252
//	sharpe_ratio      = (annualized_return - rf) / volatility, 0 when volatility is 0
//	max_drawdown      = min((c - running_max(c)) / running_max(c)), c = Π(1+r)
//	win_rate          = count(r > 0) / n
//
// An empty series is an AnalysisError.
func (c *Calculator) CalculatePerformanceMetrics(series *domain.ReturnSeries, riskFreeRate float64) (*domain.MetricsResult, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}

	r := series.Values
	annualized := formulas.AnnualizedMeanReturn(r)
	volatility := formulas.AnnualizedVolatility(r)

	result := &domain.MetricsResult{
		TotalReturn:      formulas.CompoundReturn(r),
		AnnualizedReturn: annualized,
		Volatility:       volatility,
		SharpeRatio:      formulas.SharpeRatio(annualized, riskFreeRate, volatility),
		MaxDrawdown:      formulas.MaxDrawdown(formulas.CumulativeReturns(r)),
		WinRate:          formulas.WinRate(r),
		TotalPeriods:     len(r),
		StartDate:        series.Dates[0],
		EndDate:          series.Dates[len(series.Dates)-1],
	}

	c.log.Info().
		Int("periods", result.TotalPeriods).
		Float64("total_return", result.TotalReturn).
		Float64("sharpe_ratio", result.SharpeRatio).
		Msg("Performance metrics calculated")
	return result, nil
}

// CumulativeReturns returns the compounded growth path c[t] = Π(1+r).
func CumulativeReturns(series *domain.ReturnSeries) (*domain.ReturnSeries, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	return &domain.ReturnSeries{
		Name:   "cumulative_returns",
		Dates:  series.Dates,
		Values: formulas.CumulativeReturns(series.Values),
	}, nil
}

// Drawdowns returns the drawdown path below the running peak of the
// cumulative growth path. Values are ≤ 0.
func Drawdowns(series *domain.ReturnSeries) (*domain.ReturnSeries, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	return &domain.ReturnSeries{
		Name:   "drawdowns",
		Dates:  series.Dates,
		Values: formulas.Drawdowns(formulas.CumulativeReturns(series.Values)),
	}, nil
}

// SummaryStats describes the distribution of a return series.
func SummaryStats(series *domain.ReturnSeries) (formulas.Summary, error) {
	if err := checkSeries(series); err != nil {
		return formulas.Summary{}, err
	}
	return formulas.Describe(series.Values), nil
}

func checkSeries(series *domain.ReturnSeries) error {
	if series.IsEmpty() {
		return domain.NewAnalysisError("No returns data available for metrics calculation", nil)
	}
	if len(series.Dates) != len(series.Values) {
		return domain.NewAnalysisError("Returns series dates and values differ in length", nil)
	}
	for _, v := range series.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.NewAnalysisError("Returns series contains non-finite values", nil)
		}
	}
	return nil
}

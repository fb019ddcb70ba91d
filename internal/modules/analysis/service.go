// Package analysis runs the portfolio analysis pipeline: validation, price
// fetch, normalization, returns, metrics, the monthly grid and chart data.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/calculations"
	"github.com/aristath/tearsheet/internal/modules/charts"
	"github.com/aristath/tearsheet/internal/modules/performance"
	"github.com/aristath/tearsheet/internal/modules/prices"
	"github.com/aristath/tearsheet/internal/modules/returns"
	"github.com/aristath/tearsheet/internal/modules/validation"
	"github.com/aristath/tearsheet/internal/utils"
	"github.com/aristath/tearsheet/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PriceSource produces the wide price table for a set of symbols.
type PriceSource interface {
	FetchHistorical(ctx context.Context, symbols []string, start, end time.Time) (*prices.RawTable, error)
}

// ResultCache stores encoded analysis results.
type ResultCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Request is raw analysis input. Weights and capital stay unparsed so the
// validator owns every parsing rule.
type Request struct {
	Symbols      []string
	Weights      []string
	Capital      string
	StartDate    string
	EndDate      string
	Name         string
	RiskFreeRate *float64
}

// Form converts the request into validator input.
func (r Request) Form() validation.Form {
	return validation.Form{
		Symbols:   r.Symbols,
		Weights:   r.Weights,
		Capital:   r.Capital,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Name:      r.Name,
	}
}

// Period is the span covered by the return index.
type Period struct {
	Start string `json:"start" msgpack:"start"`
	End   string `json:"end" msgpack:"end"`
	Days  int    `json:"days" msgpack:"days"`
}

// Overview summarizes the size of an analysis.
type Overview struct {
	DataPoints    int     `json:"data_points" msgpack:"data_points"`
	Period        Period  `json:"period" msgpack:"period"`
	PortfolioSize int     `json:"portfolio_size" msgpack:"portfolio_size"`
	TotalCapital  float64 `json:"total_capital" msgpack:"total_capital"`
}

// ReturnsData is the portfolio return series with formatted dates.
type ReturnsData struct {
	Dates  []string  `json:"dates" msgpack:"dates"`
	Values []float64 `json:"values" msgpack:"values"`
}

// Result is the complete output of one analysis.
type Result struct {
	AnalysisID       string                   `json:"analysis_id" msgpack:"analysis_id"`
	Portfolio        domain.PortfolioSummary  `json:"portfolio" msgpack:"portfolio"`
	Metrics          domain.MetricsResult     `json:"metrics" msgpack:"metrics"`
	RiskFreeRate     float64                  `json:"risk_free_rate" msgpack:"risk_free_rate"`
	Returns          ReturnsData              `json:"returns" msgpack:"returns"`
	Monthly          domain.MonthlyReturnGrid `json:"monthly_returns" msgpack:"monthly_returns"`
	ReturnStatistics formulas.Summary         `json:"return_statistics" msgpack:"return_statistics"`
	Charts           charts.ChartSet          `json:"charts" msgpack:"charts"`
	Summary          Overview                 `json:"analysis_summary" msgpack:"analysis_summary"`
	Cached           bool                     `json:"cached" msgpack:"-"`
	GeneratedAt      time.Time                `json:"generated_at" msgpack:"generated_at"`
}

// Service orchestrates one analysis per request. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	validator  *validation.Validator
	source     PriceSource
	engine     *returns.Engine
	calculator *performance.Calculator
	charts     *charts.Service
	cache      ResultCache
	cacheTTL   time.Duration
	log        zerolog.Logger
}

// NewService creates the analysis service. cache may be nil.
func NewService(
	validator *validation.Validator,
	source PriceSource,
	engine *returns.Engine,
	calculator *performance.Calculator,
	chartService *charts.Service,
	cache ResultCache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *Service {
	return &Service{
		validator:  validator,
		source:     source,
		engine:     engine,
		calculator: calculator,
		charts:     chartService,
		cache:      cache,
		cacheTTL:   cacheTTL,
		log:        log.With().Str("service", "analysis").Logger(),
	}
}

// Validate checks the request without fetching data.
func (s *Service) Validate(req Request) (*domain.PortfolioSpec, error) {
	if _, err := s.riskFreeRate(req.RiskFreeRate); err != nil {
		return nil, err
	}
	return s.validator.ValidatePortfolioForm(req.Form())
}

// Analyze validates the request and runs the pipeline, serving repeated
// requests from the cache when one is configured.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	rf, err := s.riskFreeRate(req.RiskFreeRate)
	if err != nil {
		return nil, err
	}
	spec, err := s.validator.ValidatePortfolioForm(req.Form())
	if err != nil {
		return nil, err
	}

	key, err := calculations.Key("analysis", spec, rf)
	if err != nil {
		return nil, fmt.Errorf("failed to derive cache key: %w", err)
	}

	if s.cache != nil {
		var cached Result
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("Cache lookup failed")
		} else if hit {
			s.log.Debug().Str("analysis_id", cached.AnalysisID).Msg("Serving analysis from cache")
			cached.Cached = true
			return &cached, nil
		}
	}

	result, err := s.Run(ctx, spec, rf)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache analysis result")
		}
	}
	return result, nil
}

// Run executes the pipeline for an already validated portfolio.
func (s *Service) Run(ctx context.Context, spec *domain.PortfolioSpec, riskFreeRate float64) (*Result, error) {
	timer := utils.NewTimer("portfolio_analysis", s.log)
	defer timer.Stop()

	symbols := spec.Symbols()
	stage := time.Now()

	raw, err := s.source.FetchHistorical(ctx, symbols, spec.StartDate, spec.EndDate)
	if err != nil {
		return nil, err
	}
	stage = timer.Stage(StageFetch, stage)
	ReportProgress(ctx, StageFetch)

	table, err := prices.Normalize(raw, symbols)
	if err != nil {
		return nil, err
	}

	series, err := s.engine.CalculatePortfolioReturns(table, symbols, spec.Weights())
	if err != nil {
		return nil, err
	}
	if series.IsEmpty() {
		return nil, domain.NewAnalysisError("No overlapping price data for the requested symbols", nil)
	}
	stage = timer.Stage(StageReturns, stage)
	ReportProgress(ctx, StageReturns)

	metrics, err := s.calculator.CalculatePerformanceMetrics(series, riskFreeRate)
	if err != nil {
		return nil, err
	}
	if bad := metrics.NonFinite(); len(bad) > 0 {
		return nil, domain.NewAnalysisError(
			fmt.Sprintf("Metrics are not finite for this price history: %s", strings.Join(bad, ", ")), nil)
	}
	grid, err := performance.MonthlyReturns(series)
	if err != nil {
		return nil, err
	}
	stats, err := performance.SummaryStats(series)
	if err != nil {
		return nil, err
	}
	stage = timer.Stage(StageMetrics, stage)
	ReportProgress(ctx, StageMetrics)

	chartSet, err := s.charts.Build(spec, series, metrics, grid)
	if err != nil {
		return nil, err
	}
	timer.Stage(StageCharts, stage)
	ReportProgress(ctx, StageCharts)

	dates := make([]string, series.Len())
	for i, d := range series.Dates {
		dates[i] = d.Format(domain.DateLayout)
	}

	result := &Result{
		AnalysisID:       uuid.New().String(),
		Portfolio:        spec.Summary(),
		Metrics:          *metrics,
		RiskFreeRate:     riskFreeRate,
		Returns:          ReturnsData{Dates: dates, Values: series.Values},
		Monthly:          *grid,
		ReturnStatistics: stats,
		Charts:           *chartSet,
		Summary: Overview{
			DataPoints: series.Len(),
			Period: Period{
				Start: metrics.StartDate.Format(domain.DateLayout),
				End:   metrics.EndDate.Format(domain.DateLayout),
				Days:  int(metrics.EndDate.Sub(metrics.StartDate).Hours() / 24),
			},
			PortfolioSize: spec.Size(),
			TotalCapital:  spec.Capital,
		},
		GeneratedAt: time.Now().UTC(),
	}

	s.log.Info().
		Str("analysis_id", result.AnalysisID).
		Int("stocks", spec.Size()).
		Int("periods", metrics.TotalPeriods).
		Float64("total_return", metrics.TotalReturn).
		Msg("Portfolio analysis completed")

	return result, nil
}

func (s *Service) riskFreeRate(rf *float64) (float64, error) {
	if rf == nil {
		return s.calculator.DefaultRiskFreeRate(), nil
	}
	if math.IsNaN(*rf) || math.IsInf(*rf, 0) || *rf < 0 || *rf > 1 {
		return 0, domain.NewValidationError("risk_free_rate", "Risk-free rate must be between 0 and 1")
	}
	return *rf, nil
}

package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/rs/zerolog"
)

var (
	symbolPattern = regexp.MustCompile(`^[A-Z]{3,4}$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Messages shared with API clients.
const (
	MsgInvalidWeight     = "Portfolio weights must be between 0 and 1"
	MsgWeightsNotSumOne  = "Portfolio weights must sum to 1.0"
	MsgInvalidDateFormat = "Date must be in YYYY-MM-DD format"
	MsgInvalidDateRange  = "Start date must be before end date"
	MsgPortfolioTooLarge = "Portfolio cannot exceed %d stocks"
)

// Form is raw, unparsed portfolio input as submitted by a client.
type Form struct {
	Symbols   []string
	Weights   []string
	Capital   string
	StartDate string
	EndDate   string
	Name      string
}

// Validator validates and normalizes portfolio input. It is stateless and
// safe for concurrent use.
type Validator struct {
	limits Limits
	now    func() time.Time
	log    zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used for the future/too-old date checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// NewValidator creates a validator enforcing the given limits.
func NewValidator(limits Limits, log zerolog.Logger, opts ...Option) *Validator {
	v := &Validator{
		limits: limits,
		now:    time.Now,
		log:    log.With().Str("service", "validation").Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Limits returns the policy this validator enforces.
func (v *Validator) Limits() Limits {
	return v.limits
}

// ValidateSymbols trims and uppercases symbols, dropping blank entries.
// Input order is preserved.
func (v *Validator) ValidateSymbols(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, domain.NewValidationError("symbols", "No symbols provided")
	}

	cleaned := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}

	if len(cleaned) == 0 {
		return nil, domain.NewValidationError("symbols", "No valid symbols provided")
	}
	if len(cleaned) < v.limits.MinPortfolioSize {
		return nil, domain.NewValidationError("symbols",
			fmt.Sprintf("Portfolio must have at least %d symbol(s)", v.limits.MinPortfolioSize))
	}
	if len(cleaned) > v.limits.MaxPortfolioSize {
		return nil, domain.NewValidationError("symbols",
			fmt.Sprintf(MsgPortfolioTooLarge, v.limits.MaxPortfolioSize))
	}

	seen := make(map[string]struct{}, len(cleaned))
	for _, s := range cleaned {
		if _, dup := seen[s]; dup {
			return nil, domain.NewValidationError("symbols", "Duplicate symbols are not allowed")
		}
		seen[s] = struct{}{}
	}

	var invalid []string
	for _, s := range cleaned {
		if !symbolPattern.MatchString(s) {
			invalid = append(invalid, s)
		}
	}
	if len(invalid) > 0 {
		return nil, domain.NewValidationError("symbols",
			fmt.Sprintf("Invalid symbol format: [%s]", strings.Join(invalid, ", ")))
	}

	v.log.Debug().Strs("symbols", cleaned).Msg("Validated symbols")
	return cleaned, nil
}

// ValidateWeights parses weights and re-normalizes them by their sum so the
// result sums to 1.0. The raw sum must already be within tolerance of 1.0.
func (v *Validator) ValidateWeights(raw []string, expectedCount int) ([]float64, error) {
	if len(raw) == 0 {
		return nil, domain.NewValidationError("weights", "No weights provided")
	}
	if len(raw) != expectedCount {
		return nil, domain.NewValidationError("weights", "Number of weights must match number of symbols")
	}

	parsed := make([]float64, 0, len(raw))
	for _, w := range raw {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		f, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, domain.NewValidationError("weights", "Weights must be valid numbers")
		}
		parsed = append(parsed, f)
	}

	if len(parsed) != expectedCount {
		return nil, domain.NewValidationError("weights", "Some weights are missing or invalid")
	}

	sum := 0.0
	for _, w := range parsed {
		// NaN fails both comparisons and lands here too.
		if !(w >= v.limits.MinWeight && w <= v.limits.MaxWeight) {
			return nil, domain.NewValidationError("weights", MsgInvalidWeight)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > v.limits.WeightTolerance {
		return nil, domain.NewValidationError("weights", MsgWeightsNotSumOne)
	}

	normalized := make([]float64, len(parsed))
	for i, w := range parsed {
		normalized[i] = w / sum
	}

	v.log.Debug().Floats64("weights", normalized).Float64("raw_sum", sum).Msg("Validated weights")
	return normalized, nil
}

// ValidateCapital parses a strictly positive, finite capital amount.
func (v *Validator) ValidateCapital(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError("capital", "Capital amount is required")
	}

	capital, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(capital) {
		return 0, domain.NewValidationError("capital", "Capital must be a valid number")
	}
	if capital <= 0 {
		return 0, domain.NewValidationError("capital", "Initial capital must be positive")
	}
	if capital > v.limits.MaxCapital {
		return 0, domain.NewValidationError("capital", "Capital amount seems unreasonably high")
	}

	return capital, nil
}

// ValidateDateRange checks both dates are strict YYYY-MM-DD calendar dates,
// start precedes end, the span is bounded, end is not in the future and
// start is not too far in the past.
func (v *Validator) ValidateDateRange(start, end string) (time.Time, time.Time, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date", MsgInvalidDateFormat)
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("end_date", MsgInvalidDateFormat)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date", MsgInvalidDateRange)
	}

	days := int(endDate.Sub(startDate).Hours() / 24)
	if days > v.limits.MaxRangeDays {
		return time.Time{}, time.Time{}, domain.NewValidationError("end_date",
			fmt.Sprintf("Date range too large (max %d days)", v.limits.MaxRangeDays))
	}

	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if endDate.After(today) {
		return time.Time{}, time.Time{}, domain.NewValidationError("end_date", "End date cannot be in the future")
	}

	oldest := today.AddDate(0, 0, -v.limits.MaxLookbackDays)
	if startDate.Before(oldest) {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date",
			fmt.Sprintf("Start date cannot be more than %d years ago", v.limits.MaxLookbackDays/365))
	}

	v.log.Debug().Str("start", start).Str("end", end).Int("days", days).Msg("Validated date range")
	return startDate, endDate, nil
}

// ValidatePortfolioForm validates every field of the form and builds the
// PortfolioSpec. The first failure is returned; no partial result.
func (v *Validator) ValidatePortfolioForm(form Form) (*domain.PortfolioSpec, error) {
	symbols, err := v.ValidateSymbols(form.Symbols)
	if err != nil {
		return nil, v.rejected(err)
	}
	weights, err := v.ValidateWeights(form.Weights, len(symbols))
	if err != nil {
		return nil, v.rejected(err)
	}
	capital, err := v.ValidateCapital(form.Capital)
	if err != nil {
		return nil, v.rejected(err)
	}
	start, end, err := v.ValidateDateRange(form.StartDate, form.EndDate)
	if err != nil {
		return nil, v.rejected(err)
	}

	holdings := make([]domain.Holding, len(symbols))
	for i := range symbols {
		holdings[i] = domain.Holding{Symbol: symbols[i], Weight: weights[i]}
	}

	spec := &domain.PortfolioSpec{
		Holdings:  holdings,
		Capital:   capital,
		StartDate: start,
		EndDate:   end,
		Name:      SanitizeName(form.Name, v.limits.MaxNameLength),
	}

	v.log.Info().Int("stocks", len(holdings)).Msg("Portfolio form validation successful")
	return spec, nil
}

func (v *Validator) rejected(err error) error {
	v.log.Warn().Err(err).Msg("Portfolio form validation failed")
	return err
}

func parseDate(value string) (time.Time, error) {
	if !datePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("date %q does not match YYYY-MM-DD", value)
	}
	return time.Parse(domain.DateLayout, value)
}

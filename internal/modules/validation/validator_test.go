package validation

import (
	"strconv"
	"testing"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func newTestValidator() *Validator {
	return NewValidator(DefaultLimits(), zerolog.Nop(), WithClock(fixedClock))
}

func assertValidationError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	if message != "" {
		assert.Equal(t, message, err.Error())
	}
}

func TestValidateSymbols(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		input    []string
		expected []string
		errMsg   string
	}{
		{"valid", []string{"REE", "FMC", "DHC"}, []string{"REE", "FMC", "DHC"}, ""},
		{"lowercase", []string{"ree", "fmc"}, []string{"REE", "FMC"}, ""},
		{"whitespace", []string{" REE ", " FMC", "DHC "}, []string{"REE", "FMC", "DHC"}, ""},
		{"blank entries dropped", []string{"REE", "", "  ", "VNM"}, []string{"REE", "VNM"}, ""},
		{"order preserved", []string{"VNM", "ACB", "REE"}, []string{"VNM", "ACB", "REE"}, ""},
		{"empty list", []string{}, nil, "No symbols provided"},
		{"only blanks", []string{" ", ""}, nil, "No valid symbols provided"},
		{"duplicates", []string{"REE", "FMC", "ree"}, nil, "Duplicate symbols are not allowed"},
		{"digits", []string{"REE", "123", "DHC"}, nil, "Invalid symbol format: [123]"},
		{"too short", []string{"AB"}, nil, "Invalid symbol format: [AB]"},
		{"too long", []string{"ABCDE", "REE"}, nil, "Invalid symbol format: [ABCDE]"},
		{
			"too many",
			[]string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG", "HHH", "III", "JJJ", "KKK"},
			nil,
			"Portfolio cannot exceed 10 stocks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateSymbols(tt.input)
			if tt.errMsg != "" {
				assertValidationError(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateWeights(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		input  []string
		count  int
		errMsg string
	}{
		{"valid", []string{"0.5", "0.3", "0.2"}, 3, ""},
		{"within tolerance", []string{"0.33333", "0.33333", "0.33333"}, 3, ""},
		{"single full weight", []string{"1"}, 1, ""},
		{"sum too high", []string{"0.5", "0.3", "0.3"}, 3, MsgWeightsNotSumOne},
		{"negative", []string{"0.6", "-0.1", "0.5"}, 3, MsgInvalidWeight},
		{"above one", []string{"1.5", "-0.5"}, 2, MsgInvalidWeight},
		{"not a number", []string{"0.5", "abc", "0.2"}, 3, "Weights must be valid numbers"},
		{"nan", []string{"NaN", "1"}, 2, MsgInvalidWeight},
		{"count mismatch", []string{"0.5", "0.5"}, 3, "Number of weights must match number of symbols"},
		{"blank entry", []string{"0.5", " ", "0.5"}, 3, "Some weights are missing or invalid"},
		{"empty", []string{}, 3, "No weights provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateWeights(tt.input, tt.count)
			if tt.errMsg != "" {
				assertValidationError(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.count)
			assert.InDelta(t, 1.0, sum(got), 1e-12)
		})
	}
}

func TestValidateWeights_NormalizationIsFixedPoint(t *testing.T) {
	v := newTestValidator()

	inputs := [][]string{
		{"0.5", "0.3", "0.2"},
		{"0.33333", "0.33333", "0.33333"},
		{"0.70005", "0.2", "0.1"},
		{"0.1", "0.1", "0.1", "0.1", "0.1", "0.1", "0.1", "0.1", "0.1", "0.09995"},
	}

	for _, input := range inputs {
		first, err := v.ValidateWeights(input, len(input))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sum(first), 1e-12)

		again := make([]string, len(first))
		for i, w := range first {
			again[i] = strconv.FormatFloat(w, 'g', -1, 64)
		}
		second, err := v.ValidateWeights(again, len(again))
		require.NoError(t, err)
		assert.InDeltaSlice(t, first, second, 1e-15)
	}
}

func TestValidateCapital(t *testing.T) {
	v := newTestValidator()

	got, err := v.ValidateCapital(" 10000000 ")
	require.NoError(t, err)
	assert.Equal(t, 10000000.0, got)

	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"empty", "  ", "Capital amount is required"},
		{"negative", "-1000000", "Initial capital must be positive"},
		{"zero", "0", "Initial capital must be positive"},
		{"invalid", "abc123", "Capital must be a valid number"},
		{"nan", "NaN", "Capital must be a valid number"},
		{"too high", "1000000000000000", "Capital amount seems unreasonably high"},
		{"infinite", "Inf", "Capital amount seems unreasonably high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateCapital(tt.input)
			assertValidationError(t, err, tt.errMsg)
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	v := newTestValidator()

	start, end, err := v.ValidateDateRange("2024-01-01", " 2024-12-31 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), end)

	_, _, err = v.ValidateDateRange("2024-01-01", "2025-06-15")
	assert.NoError(t, err, "today is not in the future")

	tests := []struct {
		name   string
		start  string
		end    string
		errMsg string
	}{
		{"slash separator", "2024/01/01", "2024-12-31", MsgInvalidDateFormat},
		{"slash separator with bad end", "2024/01/01", "garbage", MsgInvalidDateFormat},
		{"bad end", "2024-01-01", "31-12-2024", MsgInvalidDateFormat},
		{"impossible day", "2024-02-30", "2024-12-31", MsgInvalidDateFormat},
		{"start after end", "2024-12-31", "2024-01-01", MsgInvalidDateRange},
		{"start equals end", "2024-05-05", "2024-05-05", MsgInvalidDateRange},
		{"future end", "2024-01-01", "2025-06-16", "End date cannot be in the future"},
		{"too long", "2015-01-01", "2025-01-02", "Date range too large (max 3650 days)"},
		{"too old", "2015-06-01", "2016-01-01", "Start date cannot be more than 10 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := v.ValidateDateRange(tt.start, tt.end)
			assertValidationError(t, err, tt.errMsg)
		})
	}
}

func TestValidatePortfolioForm(t *testing.T) {
	v := newTestValidator()

	spec, err := v.ValidatePortfolioForm(Form{
		Symbols:   []string{"ree", "FMC", "DHC"},
		Weights:   []string{"0.7", "0.2", "0.1"},
		Capital:   "10000000",
		StartDate: "2024-01-01",
		EndDate:   "2024-03-01",
		Name:      "  <b>Utilities</b>  ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"REE", "FMC", "DHC"}, spec.Symbols())
	assert.InDeltaSlice(t, []float64{0.7, 0.2, 0.1}, spec.Weights(), 1e-12)
	assert.Equal(t, 10000000.0, spec.Capital)
	assert.Equal(t, "bUtilities/b", spec.Name)
	assert.Equal(t, 60, spec.Days())
}

func TestValidatePortfolioForm_FirstFailureWins(t *testing.T) {
	v := newTestValidator()

	spec, err := v.ValidatePortfolioForm(Form{
		Symbols:   []string{"REE", "FMC"},
		Weights:   []string{"0.5", "0.6"},
		Capital:   "-5",
		StartDate: "2024/01/01",
		EndDate:   "2024-03-01",
	})
	assert.Nil(t, spec)
	assertValidationError(t, err, MsgWeightsNotSumOne)
}

func TestCustomLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxPortfolioSize = 2
	v := NewValidator(limits, zerolog.Nop(), WithClock(fixedClock))

	_, err := v.ValidateSymbols([]string{"AAA", "BBB", "CCC"})
	assertValidationError(t, err, "Portfolio cannot exceed 2 stocks")
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

package domain

import (
	"math"
	"time"
)

// ReturnSeries is a named time series of simple period returns. Dates are
// strictly increasing and Values has the same length as Dates.
type ReturnSeries struct {
	Name   string      `json:"name" msgpack:"name"`
	Dates  []time.Time `json:"dates" msgpack:"dates"`
	Values []float64   `json:"values" msgpack:"values"`
}

// Len returns the number of periods in the series.
func (s *ReturnSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}

// IsEmpty reports whether the series holds no periods.
func (s *ReturnSeries) IsEmpty() bool {
	return s.Len() == 0
}

// MetricsResult is the fixed set of performance metrics. Fractions are raw
// (0.05 means 5%). StartDate and EndDate are the bounds of the return index,
// not the requested range.
type MetricsResult struct {
	TotalReturn      float64   `json:"total_return" msgpack:"total_return"`
	AnnualizedReturn float64   `json:"annualized_return" msgpack:"annualized_return"`
	Volatility       float64   `json:"volatility" msgpack:"volatility"`
	SharpeRatio      float64   `json:"sharpe_ratio" msgpack:"sharpe_ratio"`
	MaxDrawdown      float64   `json:"max_drawdown" msgpack:"max_drawdown"`
	WinRate          float64   `json:"win_rate" msgpack:"win_rate"`
	TotalPeriods     int       `json:"total_periods" msgpack:"total_periods"`
	StartDate        time.Time `json:"start_date" msgpack:"start_date"`
	EndDate          time.Time `json:"end_date" msgpack:"end_date"`
}

// NonFinite names the metrics that are NaN or infinite. Extreme single-period
// moves can overflow the 252-period annualization.
func (m *MetricsResult) NonFinite() []string {
	var bad []string
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"total_return", m.TotalReturn},
		{"annualized_return", m.AnnualizedReturn},
		{"volatility", m.Volatility},
		{"sharpe_ratio", m.SharpeRatio},
		{"max_drawdown", m.MaxDrawdown},
		{"win_rate", m.WinRate},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			bad = append(bad, f.name)
		}
	}
	return bad
}

// MonthlyRow holds one calendar year of compounded monthly returns.
// Months[0] is January; nil marks a month without observations.
type MonthlyRow struct {
	Year   int          `json:"year" msgpack:"year"`
	Months [12]*float64 `json:"months" msgpack:"months"`
}

// MonthlyReturnGrid is a sparse year × month table, rows ascending by year.
type MonthlyReturnGrid struct {
	Rows []MonthlyRow `json:"rows" msgpack:"rows"`
}

// Get returns the compounded return for year and month (1-12).
func (g *MonthlyReturnGrid) Get(year int, month time.Month) (float64, bool) {
	if month < time.January || month > time.December {
		return 0, false
	}
	for _, row := range g.Rows {
		if row.Year == year {
			v := row.Months[month-1]
			if v == nil {
				return 0, false
			}
			return *v, true
		}
	}
	return 0, false
}

// Years lists the years present in the grid.
func (g *MonthlyReturnGrid) Years() []int {
	out := make([]int, len(g.Rows))
	for i, row := range g.Rows {
		out[i] = row.Year
	}
	return out
}

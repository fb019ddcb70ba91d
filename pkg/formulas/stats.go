package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PeriodsPerYear is the number of trading periods used for annualization.
const PeriodsPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (N-1 denominator).
// Fewer than two observations have no dispersion and yield 0.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sd := stat.StdDev(data, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

// AnnualizedVolatility calculates annualized volatility from period returns
// Formula: sample std dev of returns × sqrt(252)
func AnnualizedVolatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(PeriodsPerYear)
}

// AnnualizedMeanReturn compounds the mean single-period return over a year:
// (1 + mean(r))^252 - 1. This is not a CAGR of the realised series.
func AnnualizedMeanReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return math.Pow(1+Mean(returns), PeriodsPerYear) - 1
}

// SharpeRatio returns (annualReturn - riskFree) / volatility, or 0 when
// volatility is not strictly positive.
func SharpeRatio(annualReturn, riskFree, volatility float64) float64 {
	if volatility <= 0 || math.IsNaN(volatility) {
		return 0
	}
	return (annualReturn - riskFree) / volatility
}

// WinRate is the fraction of periods with a strictly positive return.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// SimpleReturn computes cur/prev - 1. The second result is false when the
// return is undefined: either price missing (NaN) or a zero previous price.
func SimpleReturn(prev, cur float64) (float64, bool) {
	if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
		return 0, false
	}
	return cur/prev - 1, true
}

// Summary is a descriptive statistics snapshot of a return series.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// Describe computes a Summary. Skewness and kurtosis need at least three
// and four observations respectively and are 0 otherwise.
func Describe(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(data),
		Mean:   stat.Mean(data, nil),
		StdDev: StdDev(data),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: Quantile(sorted, 0.5),
		Q25:    Quantile(sorted, 0.25),
		Q75:    Quantile(sorted, 0.75),
	}
	if len(data) >= 3 && s.StdDev > 0 {
		s.Skewness = stat.Skew(data, nil)
	}
	if len(data) >= 4 && s.StdDev > 0 {
		s.Kurtosis = stat.ExKurtosis(data, nil)
	}
	return s
}

// Quantile returns the p-quantile of already sorted data using linear
// interpolation between closest ranks, h = (n-1)p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

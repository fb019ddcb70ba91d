package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CumulativeReturns compounds period returns into a growth path:
// c[t] = Π(1 + r[s]) for s ≤ t.
func CumulativeReturns(returns []float64) []float64 {
	if len(returns) == 0 {
		return []float64{}
	}
	growth := make([]float64, len(returns))
	for i, r := range returns {
		growth[i] = 1 + r
	}
	return floats.CumProd(growth, growth)
}

// CompoundReturn is Π(1 + r) - 1 over the whole series.
func CompoundReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	cum := CumulativeReturns(returns)
	return cum[len(cum)-1] - 1
}

// RunningMax returns the running maximum of values, seeded with values[0].
func RunningMax(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		out[i] = peak
	}
	return out
}

// Drawdowns returns (c[t] - m[t]) / m[t] for a cumulative growth path,
// where m is the running maximum. Values are ≤ 0.
func Drawdowns(cumulative []float64) []float64 {
	peaks := RunningMax(cumulative)
	out := make([]float64, len(cumulative))
	for i, c := range cumulative {
		if peaks[i] != 0 {
			out[i] = (c - peaks[i]) / peaks[i]
		}
	}
	return out
}

// MaxDrawdown is the most negative drawdown of the path, or 0 for an empty
// or never-declining path.
func MaxDrawdown(cumulative []float64) float64 {
	if len(cumulative) == 0 {
		return 0
	}
	worst := floats.Min(Drawdowns(cumulative))
	if worst > 0 {
		return 0
	}
	return worst
}

package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RollingVolatility computes the annualized sample standard deviation over a
// sliding window. The result has len(returns)-window+1 entries, aligned with
// the last element of each window. Nil when the series is shorter than the
// window.
func RollingVolatility(returns []float64, window int) []float64 {
	if window < 2 || len(returns) < window {
		return nil
	}

	// talib computes the population deviation; rescale to N-1.
	population := talib.StdDev(returns, window, 1.0)
	correction := math.Sqrt(float64(window) / float64(window-1))
	annualize := math.Sqrt(PeriodsPerYear)

	out := make([]float64, 0, len(returns)-window+1)
	for i := window - 1; i < len(population); i++ {
		out = append(out, population[i]*correction*annualize)
	}
	return out
}

// MovingAverage returns the simple moving average over window periods,
// aligned like RollingVolatility.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 || len(values) < window {
		return nil
	}
	sma := talib.Sma(values, window)
	out := make([]float64, 0, len(values)-window+1)
	out = append(out, sma[window-1:]...)
	return out
}

package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingVolatility(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.015, 0.0, 0.03, -0.01}

	vol := RollingVolatility(returns, 3)
	require.Len(t, vol, 4)

	for i := range vol {
		expected := StdDev(returns[i:i+3]) * math.Sqrt(252)
		assert.InDelta(t, expected, vol[i], 1e-9)
	}
}

func TestRollingVolatility_ShortSeries(t *testing.T) {
	assert.Nil(t, RollingVolatility([]float64{0.01, 0.02}, 3))
	assert.Nil(t, RollingVolatility([]float64{0.01, 0.02}, 1))
}

func TestMovingAverage(t *testing.T) {
	sma := MovingAverage([]float64{1, 2, 3, 4, 5}, 2)
	require.Len(t, sma, 4)
	assert.InDeltaSlice(t, []float64{1.5, 2.5, 3.5, 4.5}, sma, 1e-12)
}

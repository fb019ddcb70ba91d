package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeReturns(t *testing.T) {
	cum := CumulativeReturns([]float64{0.1, -0.5, 1.0})
	require.Len(t, cum, 3)
	assert.InDelta(t, 1.1, cum[0], 1e-12)
	assert.InDelta(t, 0.55, cum[1], 1e-12)
	assert.InDelta(t, 1.1, cum[2], 1e-12)

	assert.Empty(t, CumulativeReturns(nil))
}

func TestCompoundReturn(t *testing.T) {
	assert.InDelta(t, 0.21, CompoundReturn([]float64{0.1, 0.1}), 1e-12)
	assert.Equal(t, 0.0, CompoundReturn(nil))
}

func TestRunningMax(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 3, 4}, RunningMax([]float64{1, 3, 2, 4}))
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		returns  []float64
		expected float64
	}{
		{"monotonic increase", []float64{0.01, 0.02, 0.03}, 0},
		{"flat then halved", []float64{0, 0, 0, -0.5}, -0.5},
		{"drop then recover", []float64{0.1, -0.2, 0.5}, -0.2},
		{"first period loss", []float64{-0.1, 0.05}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MaxDrawdown(CumulativeReturns(tt.returns)), 1e-12)
		})
	}
}

func TestDrawdowns_NonPositive(t *testing.T) {
	for _, d := range Drawdowns(CumulativeReturns([]float64{0.05, -0.03, 0.02, -0.1, 0.2})) {
		assert.LessOrEqual(t, d, 0.0)
	}
}

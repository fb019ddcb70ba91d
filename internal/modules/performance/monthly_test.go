package performance

import (
	"testing"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyReturns_Compounds(t *testing.T) {
	s := &domain.ReturnSeries{
		Dates: []time.Time{
			at(2023, time.November, 29),
			at(2023, time.November, 30),
			at(2024, time.January, 2),
			at(2024, time.January, 3),
			at(2024, time.March, 1),
		},
		Values: []float64{0.1, 0.1, -0.1, 0.2, 0.05},
	}

	grid, err := MonthlyReturns(s)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, grid.Years())

	nov, ok := grid.Get(2023, time.November)
	require.True(t, ok)
	assert.InDelta(t, 0.21, nov, 1e-12)

	jan, ok := grid.Get(2024, time.January)
	require.True(t, ok)
	assert.InDelta(t, 0.08, jan, 1e-12)

	mar, ok := grid.Get(2024, time.March)
	require.True(t, ok)
	assert.InDelta(t, 0.05, mar, 1e-12)

	// No observations: missing, not zero.
	_, ok = grid.Get(2023, time.December)
	assert.False(t, ok)
	_, ok = grid.Get(2024, time.February)
	assert.False(t, ok)
	assert.Nil(t, grid.Rows[1].Months[1])
}

func TestMonthlyReturns_FillsYearGaps(t *testing.T) {
	s := &domain.ReturnSeries{
		Dates:  []time.Time{at(2021, time.June, 1), at(2023, time.June, 1)},
		Values: []float64{0.01, 0.02},
	}

	grid, err := MonthlyReturns(s)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023}, grid.Years())
	for _, v := range grid.Rows[1].Months {
		assert.Nil(t, v)
	}
}

func TestMonthlyReturns_Empty(t *testing.T) {
	grid, err := MonthlyReturns(&domain.ReturnSeries{})
	require.Error(t, err)
	assert.Nil(t, grid)
	assert.Equal(t, domain.KindAnalysis, domain.KindOf(err))
}

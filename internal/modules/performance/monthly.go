package performance

import (
	"time"

	"github.com/aristath/tearsheet/internal/domain"
)

// MonthlyReturns buckets a return series by calendar month, compounds each
// bucket as Π(1+r) - 1 and pivots the result into a year × month grid.
// Years span the series contiguously; months without observations are nil.
func MonthlyReturns(series *domain.ReturnSeries) (*domain.MonthlyReturnGrid, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}

	type bucket struct {
		year  int
		month time.Month
	}
	growth := make(map[bucket]float64)
	firstYear, lastYear := 0, 0

	for i, d := range series.Dates {
		d = d.UTC()
		b := bucket{year: d.Year(), month: d.Month()}
		g, ok := growth[b]
		if !ok {
			g = 1
		}
		growth[b] = g * (1 + series.Values[i])

		if i == 0 || b.year < firstYear {
			firstYear = b.year
		}
		if i == 0 || b.year > lastYear {
			lastYear = b.year
		}
	}

	grid := &domain.MonthlyReturnGrid{
		Rows: make([]domain.MonthlyRow, 0, lastYear-firstYear+1),
	}
	for year := firstYear; year <= lastYear; year++ {
		row := domain.MonthlyRow{Year: year}
		for m := time.January; m <= time.December; m++ {
			if g, ok := growth[bucket{year: year, month: m}]; ok {
				v := g - 1
				row.Months[m-1] = &v
			}
		}
		grid.Rows = append(grid.Rows, row)
	}

	return grid, nil
}

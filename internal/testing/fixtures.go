package testing

import (
	"time"

	"github.com/aristath/tearsheet/internal/modules/prices"
)

// BusinessDays returns every Monday-Friday date in [start, end]
func BusinessDays(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// LinearBars returns bars whose price moves in equal steps from `from` on
// the first day to `to` on the last
func LinearBars(days []time.Time, from, to float64) []prices.Bar {
	out := make([]prices.Bar, len(days))
	step := 0.0
	if len(days) > 1 {
		step = (to - from) / float64(len(days)-1)
	}
	for i, d := range days {
		p := from + step*float64(i)
		out[i] = prices.Bar{Date: d, Open: p, High: p, Low: p, Close: p, Volume: 1000}
	}
	return out
}

// SampleWindow is the date range of NewPriceFixtures
var SampleWindow = struct{ Start, End time.Time }{
	Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
}

// NewPriceFixtures returns business-day bars over SampleWindow: REE rises
// linearly 50 to 60, FMC is flat at 40 and DHC falls linearly 30 to 25
func NewPriceFixtures() map[string][]prices.Bar {
	days := BusinessDays(SampleWindow.Start, SampleWindow.End)
	return map[string][]prices.Bar{
		"REE": LinearBars(days, 50, 60),
		"FMC": LinearBars(days, 40, 40),
		"DHC": LinearBars(days, 30, 25),
	}
}

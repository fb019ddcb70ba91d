// Package charts turns pipeline results into plain chart data for the
// front end. Nothing here renders; every value is directly serializable.
package charts

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD format
	Value float64 `json:"value"` // Percent unless stated otherwise
}

// Line is a named time series for line charts.
type Line struct {
	Name   string           `json:"name" msgpack:"name"`
	Color  string           `json:"color" msgpack:"color"`
	Points []ChartDataPoint `json:"points" msgpack:"points"`
}

// Slice is one segment of the composition chart.
type Slice struct {
	Label string  `json:"label" msgpack:"label"`
	Value float64 `json:"value" msgpack:"value"` // Weight in percent
	Color string  `json:"color" msgpack:"color"`
}

// Bar is one bar of the metrics dashboard.
type Bar struct {
	Label string  `json:"label" msgpack:"label"`
	Value float64 `json:"value" msgpack:"value"`
	Color string  `json:"color" msgpack:"color"`
}

// Heatmap is the monthly return grid in percent. Values[i][m] belongs to
// Years[i] and month m+1; nil cells had no observations.
type Heatmap struct {
	Years  []int        `json:"years" msgpack:"years"`
	Months []string     `json:"months" msgpack:"months"`
	Values [][]*float64 `json:"values" msgpack:"values"`
}

// ChartSet bundles every chart produced for one analysis.
type ChartSet struct {
	Performance       Line    `json:"performance" msgpack:"performance"`
	Drawdown          Line    `json:"drawdown" msgpack:"drawdown"`
	Composition       []Slice `json:"composition" msgpack:"composition"`
	Metrics           []Bar   `json:"metrics" msgpack:"metrics"`
	MonthlyHeatmap    Heatmap `json:"monthly_heatmap" msgpack:"monthly_heatmap"`
	RollingVolatility Line    `json:"rolling_volatility" msgpack:"rolling_volatility"`
}

// Style holds chart colours and colouring thresholds.
type Style struct {
	Palette              []string
	PerformanceColor     string
	DrawdownColor        string
	PositiveColor        string
	NegativeColor        string
	GoodColor            string
	WarningColor         string
	SharpeGoodThreshold  float64 // Sharpe above this is coloured good
	WinRateGoodThreshold float64 // Win rate in percent at or above this is good
	RollingWindow        int     // Periods per rolling volatility window
}

// DefaultStyle returns the standard chart style.
func DefaultStyle() Style {
	return Style{
		Palette: []string{
			"#1f77b4",
			"#ff7f0e",
			"#2ca02c",
			"#d62728",
			"#9467bd",
			"#8c564b",
		},
		PerformanceColor:     "#1f77b4",
		DrawdownColor:        "#ff6384",
		PositiveColor:        "#1f77b4",
		NegativeColor:        "#d62728",
		GoodColor:            "#2ca02c",
		WarningColor:         "#ff7f0e",
		SharpeGoodThreshold:  1.0,
		WinRateGoodThreshold: 50.0,
		RollingWindow:        21,
	}
}

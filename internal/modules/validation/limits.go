// Package validation turns raw portfolio form input into a PortfolioSpec.
package validation

// Limits is the validation policy applied to portfolio input.
type Limits struct {
	MinPortfolioSize int
	MaxPortfolioSize int
	MinWeight        float64
	MaxWeight        float64
	WeightTolerance  float64 // Allowed deviation of the weight sum from 1.0
	MaxCapital       float64
	MaxRangeDays     int // Maximum span between start and end date
	MaxLookbackDays  int // How far in the past the start date may be
	MaxNameLength    int
}

// DefaultLimits returns the standard validation policy.
func DefaultLimits() Limits {
	return Limits{
		MinPortfolioSize: 1,
		MaxPortfolioSize: 10,
		MinWeight:        0.0,
		MaxWeight:        1.0,
		WeightTolerance:  1e-4,
		MaxCapital:       1e12,
		MaxRangeDays:     3650,
		MaxLookbackDays:  10 * 365,
		MaxNameLength:    50,
	}
}

// Package domain holds the value types that flow through the analysis
// pipeline and the error taxonomy shared by every layer.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on every boundary.
const DateLayout = "2006-01-02"

// Holding is one weighted position of a portfolio.
type Holding struct {
	Symbol string  `json:"symbol" msgpack:"symbol"`
	Weight float64 `json:"weight" msgpack:"weight"`
}

// PortfolioSpec is a validated portfolio request. Weights sum to 1.0 and
// symbols are unique. Constructed by the validator; treat as immutable.
type PortfolioSpec struct {
	Holdings  []Holding `json:"holdings" msgpack:"holdings"`
	Capital   float64   `json:"capital" msgpack:"capital"`
	StartDate time.Time `json:"start_date" msgpack:"start_date"`
	EndDate   time.Time `json:"end_date" msgpack:"end_date"`
	Name      string    `json:"name,omitempty" msgpack:"name"`
}

// Symbols returns the holding symbols in portfolio order.
func (p *PortfolioSpec) Symbols() []string {
	out := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = h.Symbol
	}
	return out
}

// Weights returns the holding weights in portfolio order.
func (p *PortfolioSpec) Weights() []float64 {
	out := make([]float64, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = h.Weight
	}
	return out
}

// Size is the number of holdings.
func (p *PortfolioSpec) Size() int {
	return len(p.Holdings)
}

// Days is the calendar span of the requested range.
func (p *PortfolioSpec) Days() int {
	return int(p.EndDate.Sub(p.StartDate).Hours() / 24)
}

// Allocations splits the capital across holdings by weight, rounded to cents.
func (p *PortfolioSpec) Allocations() []decimal.Decimal {
	capital := decimal.NewFromFloat(p.Capital)
	out := make([]decimal.Decimal, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = capital.Mul(decimal.NewFromFloat(h.Weight)).Round(2)
	}
	return out
}

// HoldingSummary describes one holding for API consumers.
type HoldingSummary struct {
	Symbol     string  `json:"symbol" msgpack:"symbol"`
	Weight     float64 `json:"weight" msgpack:"weight"`
	Allocation float64 `json:"allocation" msgpack:"allocation"`
}

// PortfolioSummary is the serializable description of a PortfolioSpec.
type PortfolioSummary struct {
	Name        string           `json:"name,omitempty" msgpack:"name"`
	Capital     float64          `json:"capital" msgpack:"capital"`
	StartDate   string           `json:"start_date" msgpack:"start_date"`
	EndDate     string           `json:"end_date" msgpack:"end_date"`
	Stocks      []HoldingSummary `json:"stocks" msgpack:"stocks"`
	Size        int              `json:"size" msgpack:"size"`
	TotalWeight float64          `json:"total_weight" msgpack:"total_weight"`
	Symbols     []string         `json:"symbols" msgpack:"symbols"`
}

// Summary builds the serializable description of the portfolio.
func (p *PortfolioSpec) Summary() PortfolioSummary {
	allocations := p.Allocations()
	stocks := make([]HoldingSummary, len(p.Holdings))
	total := decimal.Zero
	for i, h := range p.Holdings {
		stocks[i] = HoldingSummary{
			Symbol:     h.Symbol,
			Weight:     h.Weight,
			Allocation: allocations[i].InexactFloat64(),
		}
		total = total.Add(decimal.NewFromFloat(h.Weight))
	}

	return PortfolioSummary{
		Name:        p.Name,
		Capital:     p.Capital,
		StartDate:   p.StartDate.Format(DateLayout),
		EndDate:     p.EndDate.Format(DateLayout),
		Stocks:      stocks,
		Size:        len(p.Holdings),
		TotalWeight: total.Round(6).InexactFloat64(),
		Symbols:     p.Symbols(),
	}
}

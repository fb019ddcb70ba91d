// Package prices merges per-symbol price bars into a wide table and
// projects that table onto the close-price grid used by the return engine.
package prices

import (
	"math"
	"time"
)

// Fields are the per-symbol columns produced by Merge, in column order.
var Fields = []string{"open", "high", "low", "close", "volume"}

// TimeColumn is the name of the timestamp column of a RawTable.
const TimeColumn = "time"

// Bar is one trading period of a symbol.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SymbolData is the outcome of fetching one symbol. An empty Bars slice is
// the normal "no data for this symbol" result, not an error.
type SymbolData struct {
	Symbol string
	Bars   []Bar
}

// Empty reports whether the source had no rows for the symbol.
func (s SymbolData) Empty() bool {
	return len(s.Bars) == 0
}

// ColumnName returns the wide-table column for a symbol field, e.g. REE_close.
func ColumnName(symbol, field string) string {
	return symbol + "_" + field
}

// RawTable is a wide price table: one row per timestamp, one column per
// symbol field. Missing cells are NaN. Time holds timestamps as the source
// produced them; Normalize parses them.
type RawTable struct {
	Time    []string
	Columns map[string][]float64
}

// NewRawTable allocates an empty table with room for n rows.
func NewRawTable(n int) *RawTable {
	return &RawTable{
		Time:    make([]string, 0, n),
		Columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (t *RawTable) Len() int {
	return len(t.Time)
}

// HasColumn reports whether the named column exists. The time column is
// present when the table has a timestamp slice.
func (t *RawTable) HasColumn(name string) bool {
	if name == TimeColumn {
		return t.Time != nil
	}
	_, ok := t.Columns[name]
	return ok
}

// AlignedTable is the close-price grid: strictly increasing dates and one
// close column per symbol, in symbol order. NaN marks a gap.
type AlignedTable struct {
	Dates   []time.Time
	Symbols []string
	Closes  [][]float64
}

// Len returns the number of rows.
func (t *AlignedTable) Len() int {
	return len(t.Dates)
}

// Column returns the close column of a symbol.
func (t *AlignedTable) Column(symbol string) ([]float64, bool) {
	for i, s := range t.Symbols {
		if s == symbol {
			return t.Closes[i], true
		}
	}
	return nil, false
}

// Complete reports whether row i has a close price for every symbol.
func (t *AlignedTable) Complete(i int) bool {
	for _, col := range t.Closes {
		if math.IsNaN(col[i]) {
			return false
		}
	}
	return true
}

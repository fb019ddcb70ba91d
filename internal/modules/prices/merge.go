package prices

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
)

// MsgNoData is returned when no requested symbol produced any rows.
const MsgNoData = "No data available for the specified period"

// Merge outer-joins per-symbol bars on their date. Every field of every
// non-empty symbol becomes a column; dates a symbol did not trade on are
// NaN in its columns. Rows are sorted ascending. Symbols without data are
// skipped; if all are empty a DataFetchError is returned.
func Merge(data []SymbolData) (*RawTable, error) {
	type cell struct {
		symbol int
		bar    Bar
	}

	rows := make(map[int64][]cell)
	var present []SymbolData
	for _, sd := range data {
		if sd.Empty() {
			continue
		}
		idx := len(present)
		present = append(present, sd)
		for _, bar := range sd.Bars {
			day := truncateDay(bar.Date).Unix()
			rows[day] = append(rows[day], cell{symbol: idx, bar: bar})
		}
	}

	if len(present) == 0 {
		return nil, domain.NewDataFetchError(MsgNoData, nil)
	}

	keys := make([]int64, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	table := NewRawTable(len(keys))
	for _, sd := range present {
		for _, field := range Fields {
			col := make([]float64, len(keys))
			for i := range col {
				col[i] = math.NaN()
			}
			table.Columns[ColumnName(sd.Symbol, field)] = col
		}
	}

	for i, k := range keys {
		table.Time = append(table.Time, time.Unix(k, 0).UTC().Format(domain.DateLayout))
		for _, c := range rows[k] {
			symbol := present[c.symbol].Symbol
			table.Columns[ColumnName(symbol, "open")][i] = c.bar.Open
			table.Columns[ColumnName(symbol, "high")][i] = c.bar.High
			table.Columns[ColumnName(symbol, "low")][i] = c.bar.Low
			table.Columns[ColumnName(symbol, "close")][i] = c.bar.Close
			table.Columns[ColumnName(symbol, "volume")][i] = float64(c.bar.Volume)
		}
	}

	return table, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package prices

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
)

var timeLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize projects a raw table onto the time column and one close column
// per symbol, in symbol order, with timestamps parsed and sorted ascending.
// It performs no join: the row set is whatever the raw table holds. A
// missing close column is a DataFetchError, never a silent drop.
func Normalize(raw *RawTable, symbols []string) (*AlignedTable, error) {
	if raw == nil {
		return nil, domain.NewDataFetchError(MsgNoData, nil)
	}

	required := append([]string{TimeColumn}, closeColumns(symbols)...)
	var missing []string
	for _, col := range required {
		if !raw.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewDataFetchError(
			fmt.Sprintf("Missing columns in combined data: [%s]", strings.Join(missing, ", ")), nil)
	}

	n := raw.Len()
	dates := make([]time.Time, n)
	for i, ts := range raw.Time {
		parsed, err := parseTimestamp(ts)
		if err != nil {
			return nil, domain.NewDataFetchError(fmt.Sprintf("Invalid timestamp %q in price data", ts), err)
		}
		dates[i] = parsed
	}

	for _, col := range closeColumns(symbols) {
		if len(raw.Columns[col]) != n {
			return nil, domain.NewDataFetchError(
				fmt.Sprintf("Column %s has %d rows, expected %d", col, len(raw.Columns[col]), n), nil)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})

	table := &AlignedTable{
		Dates:   make([]time.Time, n),
		Symbols: append([]string(nil), symbols...),
		Closes:  make([][]float64, len(symbols)),
	}
	for i, idx := range order {
		table.Dates[i] = dates[idx]
		if i > 0 && !table.Dates[i].After(table.Dates[i-1]) {
			return nil, domain.NewDataFetchError(
				fmt.Sprintf("Duplicate timestamp %s in price data", table.Dates[i].Format(time.RFC3339)), nil)
		}
	}
	for s, symbol := range symbols {
		src := raw.Columns[ColumnName(symbol, "close")]
		col := make([]float64, n)
		for i, idx := range order {
			col[i] = src[idx]
		}
		table.Closes[s] = col
	}

	return table, nil
}

func closeColumns(symbols []string) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = ColumnName(s, "close")
	}
	return out
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

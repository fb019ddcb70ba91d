package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/prices"
)

var csvDateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseCSV reads daily bars from CSV with a header row. Columns are matched
// by name (case-insensitive): date (or time), open, high, low, close and an
// optional volume. Missing open/high/low default to close.
func ParseCSV(r io.Reader) ([]prices.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewValidationError("csv", "CSV file is empty")
		}
		return nil, domain.NewValidationError("csv", fmt.Sprintf("Invalid CSV header: %v", err))
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["date"]; !ok {
		if idx, ok := cols["time"]; ok {
			cols["date"] = idx
		}
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, domain.NewValidationError("csv", fmt.Sprintf("CSV is missing required column %q", required))
		}
	}

	var bars []prices.Bar
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, domain.NewValidationError("csv", fmt.Sprintf("line %d: %v", line, err))
		}

		bar, err := parseRecord(record, cols)
		if err != nil {
			return nil, domain.NewValidationError("csv", fmt.Sprintf("line %d: %v", line, err))
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, domain.NewValidationError("csv", "CSV contains no price rows")
	}
	return bars, nil
}

func parseRecord(record []string, cols map[string]int) (prices.Bar, error) {
	field := func(name string) (string, bool) {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		v := strings.TrimSpace(record[idx])
		return v, v != ""
	}
	number := func(name string) (float64, bool, error) {
		raw, ok := field(name)
		if !ok {
			return 0, false, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid %s %q", name, raw)
		}
		return v, true, nil
	}

	var bar prices.Bar

	rawDate, ok := field("date")
	if !ok {
		return bar, fmt.Errorf("missing date")
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return bar, fmt.Errorf("invalid date %q", rawDate)
	}
	bar.Date = date

	closePrice, ok, err := number("close")
	if err != nil {
		return bar, err
	}
	if !ok {
		return bar, fmt.Errorf("missing close")
	}
	if closePrice <= 0 {
		return bar, fmt.Errorf("close must be positive, got %v", closePrice)
	}
	bar.Close = closePrice
	bar.Open, bar.High, bar.Low = closePrice, closePrice, closePrice

	for name, dst := range map[string]*float64{"open": &bar.Open, "high": &bar.High, "low": &bar.Low} {
		v, ok, err := number(name)
		if err != nil {
			return bar, err
		}
		if ok {
			*dst = v
		}
	}

	if raw, ok := field("volume"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bar, fmt.Errorf("invalid volume %q", raw)
		}
		bar.Volume = int64(v)
	}

	return bar, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range csvDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

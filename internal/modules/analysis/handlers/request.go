package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aristath/tearsheet/internal/modules/analysis"
	"github.com/aristath/tearsheet/internal/utils"
)

// flexValue accepts a JSON string or number and keeps its textual form.
type flexValue string

func (f *flexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a number or string: %w", err)
	}
	*f = flexValue(n.String())
	return nil
}

// flexList accepts a JSON array of strings/numbers or a comma-separated string.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var values []flexValue
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = string(v)
		}
		*l = out
		return nil
	}
	var single flexValue
	if err := single.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = utils.SplitList(string(single))
	return nil
}

type analyzeRequest struct {
	Symbols      flexList  `json:"symbols"`
	Weights      flexList  `json:"weights"`
	Capital      flexValue `json:"capital"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Name         string    `json:"name"`
	RiskFreeRate *float64  `json:"risk_free_rate"`
}

func (r analyzeRequest) toRequest() analysis.Request {
	return analysis.Request{
		Symbols:      r.Symbols,
		Weights:      r.Weights,
		Capital:      strings.TrimSpace(string(r.Capital)),
		StartDate:    strings.TrimSpace(r.StartDate),
		EndDate:      strings.TrimSpace(r.EndDate),
		Name:         r.Name,
		RiskFreeRate: r.RiskFreeRate,
	}
}

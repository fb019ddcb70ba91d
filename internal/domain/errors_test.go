package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("symbols", "No symbols provided"), KindValidation},
		{"data fetch", NewDataFetchError("No data available for the specified period", nil), KindDataFetch},
		{"analysis", NewAnalysisError("Returns series is empty", nil), KindAnalysis},
		{"wrapped keeps kind", fmt.Errorf("analyze: %w", NewAnalysisError("boom", nil)), KindAnalysis},
		{"plain error", errors.New("disk on fire"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestUserMessage_StripsWrapping(t *testing.T) {
	err := fmt.Errorf("fetch prices: %w", NewDataFetchError("Missing columns in combined data: [DHC_close]", nil))
	assert.Equal(t, "Missing columns in combined data: [DHC_close]", UserMessage(err))
	assert.Equal(t, "Internal server error", UserMessage(errors.New("x")))
}

func TestDataFetchError_Unwrap(t *testing.T) {
	cause := errors.New("sql: connection refused")
	err := NewDataFetchError("load history", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load history: sql: connection refused", err.Error())
}

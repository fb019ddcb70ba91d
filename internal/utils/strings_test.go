package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"only commas", ", ,", nil},
		{"single value", "REE", []string{"REE"}},
		{"varied spacing", "REE,  FMC , DHC", []string{"REE", "FMC", "DHC"}},
		{"trailing comma", "http://localhost:3000,", []string{"http://localhost:3000"}},
		{"leading comma", ",VNM", []string{"VNM"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}

// Package utils holds small helpers shared across modules.
package utils

import "strings"

// SplitList splits a comma-separated string and returns trimmed non-empty
// values. Returns nil for empty/whitespace-only input. Used for list-valued
// environment settings and for symbol lists submitted as a single field.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

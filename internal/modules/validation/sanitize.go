package validation

import (
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[<>"';\\]`)

// SanitizeName trims a free-text label, caps it at maxLength runes and
// strips markup and quoting characters.
func SanitizeName(value string, maxLength int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if runes := []rune(value); maxLength > 0 && len(runes) > maxLength {
		value = string(runes[:maxLength])
	}
	return unsafeChars.ReplaceAllString(value, "")
}

package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the value at maxLen
// runes. Truncating on a rune boundary keeps multi-byte input valid UTF-8.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	count := 0
	for i := range trimmed {
		if count == maxLen {
			return trimmed[:i]
		}
		count++
	}
	return trimmed
}

package validators

import "strings"

// SanitizeString trims input and caps it at maxLen bytes when maxLen > 0.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// PathParam trims a route parameter such as a product id.
func PathParam(raw string) string {
	return SanitizeString(raw, 128)
}

package sanitizer

import (
	"regexp"
	"strings"
)

var nonLabelRunes = regexp.MustCompile(`[^0-9\p{L}]+`)

// SanitizeLabel turns a free-form label such as a dining zone into a stable
// lowercase token.
func SanitizeLabel(input string) string {
	label := nonLabelRunes.ReplaceAllString(strings.ToLower(input), "_")
	return strings.Trim(label, "_")
}

// SanitizeLookupKey normalises identifiers compared case-insensitively, such
// as restaurant slugs taken from a URL.
func SanitizeLookupKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeText trims free text while keeping its line structure.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// EscapeSearch prepares a user search term for a case-insensitive regex match.
func EscapeSearch(term string) string {
	return regexp.QuoteMeta(TrimAndNormalize(term))
}

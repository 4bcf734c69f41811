// Package sanitizer normalizes free-text input before validation and storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses any run of whitespace into
// a single space.
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

func NormalizeSpeciality(speciality string) string {
	return TrimAndNormalize(speciality)
}

// NormalizeFeedback keeps line breaks meaningful for review text but strips
// surrounding whitespace and control characters.
func NormalizeFeedback(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var result strings.Builder
	for _, r := range text {
		if r == '\n' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

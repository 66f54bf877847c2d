package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength caps a search query in bytes.
const MaxQueryLength = 256

// SanitizeQuery replaces control characters with spaces and caps the length
// at MaxQueryLength without splitting a rune. Whitespace is otherwise kept,
// so "cats" and "cats " remain different queries.
func SanitizeQuery(input string) string {
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, input)

	if len(input) <= MaxQueryLength {
		return input
	}
	cut := MaxQueryLength
	for cut > 0 && !utf8.RuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}

package utils

import (
	"strings"
	"unicode"
)

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ContainsControlChars checks for non-printable runes, which never appear in
// category or topic names.
func ContainsControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// IsValidPrefix checks if input should be sent to the matcher at all.
// Returns false for blank strings and strings carrying control characters.
func IsValidPrefix(s string) bool {
	return !IsBlank(s) && !ContainsControlChars(s)
}

// PrefixLengthOK checks the rune length of prefix against inclusive bounds.
// A non-positive max disables the upper bound.
func PrefixLengthOK(prefix string, min, max int) bool {
	n := len([]rune(prefix))
	if n < min {
		return false
	}
	return max <= 0 || n <= max
}

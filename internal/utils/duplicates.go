package utils

import (
	"strings"
)

// DedupeWords trims every entry, drops blank ones and collapses duplicates,
// keeping first-seen order. Comparison is case-sensitive.
func DedupeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

package agent

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultQueryLimit is appended to statements that carry no LIMIT.
const DefaultQueryLimit = 10

var ErrUnsafeSQL = errors.New("query contains unsafe operations")

// allowedTables are the spellings of the only table agents may read.
var allowedTables = map[string]bool{
	"t_news":   true,
	"`t_news`": true,
	"'t_news'": true,
	`"t_news"`: true,
}

var (
	forbiddenWords = []string{
		"insert", "update", "delete", "drop", "alter",
		"create", "truncate", "grant", "exec", "union",
		"attach", "detach", "pragma", "replace",
	}
	forbiddenFragments = []string{"xp_", ";", "--", "/*", "*/"}

	forbiddenWordRe = regexp.MustCompile(`\b(` + strings.Join(forbiddenWords, "|") + `)\b`)
	tableRefRe      = regexp.MustCompile(`\b(?:from|join)\s+([^\s(),]+)`)
	limitRe         = regexp.MustCompile(`\blimit\s+\d+`)

	// a comma straight after the first table (or its alias) starts an implicit join
	tableListRe = regexp.MustCompile(`\bfrom\s+[^\s(),]+(?:\s+(?:as\s+)?[a-z_][a-z0-9_]*)?\s*,`)
)

// VetSQL accepts a single read-only SELECT over t_news. It returns the
// statement with "LIMIT 10" appended when no limit is present.
func VetSQL(sql string) (string, error) {
	trimmed := strings.TrimSpace(sql)
	lower := strings.ToLower(trimmed)

	if !strings.HasPrefix(lower, "select") {
		return "", fmt.Errorf("%w: only SELECT statements are allowed", ErrUnsafeSQL)
	}
	if m := forbiddenWordRe.FindString(lower); m != "" {
		return "", fmt.Errorf("%w: keyword %q is not allowed", ErrUnsafeSQL, m)
	}
	for _, frag := range forbiddenFragments {
		if strings.Contains(lower, frag) {
			return "", fmt.Errorf("%w: %q is not allowed", ErrUnsafeSQL, frag)
		}
	}
	for _, m := range tableRefRe.FindAllStringSubmatch(lower, -1) {
		if !allowedTables[m[1]] {
			return "", fmt.Errorf("%w: table %s is not allowed", ErrUnsafeSQL, m[1])
		}
	}

	if tableListRe.MatchString(lower) {
		return "", fmt.Errorf("%w: only one table may be queried", ErrUnsafeSQL)
	}

	if !limitRe.MatchString(lower) {
		trimmed = fmt.Sprintf("%s LIMIT %d", trimmed, DefaultQueryLimit)
	}
	return trimmed, nil
}

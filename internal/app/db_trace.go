package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Four or more bind parameters in one parenthesised list, as produced by fixture id IN lists.
	placeholderListRegex = regexp.MustCompile(`\(\$\d+(?:\s*,\s*\$\d+){3,}\)`)
)

// formatDBQueryForTrace turns a query into a stable span statement with long placeholder lists
// folded.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderListRegex.ReplaceAllStringFunc(normalized, func(list string) string {
		first, _, _ := strings.Cut(strings.TrimPrefix(list, "("), ",")
		return "(" + strings.TrimSpace(first) + ", ...)"
	})
	normalized = strings.TrimSuffix(normalized, ";")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

package util

import (
	"regexp"
	"strings"

	pg_query "github.com/lfittl/pg_query_go"
)

const (
	NormalizeModeRegexp  = "regex"
	NormalizeModePgQuery = "pg_query"
)

// NormalizedValue replaces every literal removed by NormalizeQuery
const NormalizedValue = "{ }"

var escapedQuoteRegexp = regexp.MustCompile(`\\+'`)
var stringLiteralRegexp = regexp.MustCompile(`'[^']*'`)
var numberLiteralRegexp = regexp.MustCompile(`(^|[^\w$])\d+`)
var repeatedSpaceRegexp = regexp.MustCompile(` {2,}`)

// NormalizeQuery - Canonicalizes query text so that executions of the same
// statement with different literals can be counted together
func NormalizeQuery(query string, mode string) string {
	if mode == NormalizeModePgQuery {
		normalizedQuery, err := pg_query.Normalize(query)
		if err == nil {
			return strings.TrimSpace(normalizedQuery)
		}
		// Not parseable as PostgreSQL (other dialect, truncated text), fall through
	}

	return normalizeLiterals(query)
}

func normalizeLiterals(query string) string {
	query = escapedQuoteRegexp.ReplaceAllString(query, "")
	query = stringLiteralRegexp.ReplaceAllString(query, NormalizedValue)
	query = numberLiteralRegexp.ReplaceAllString(query, "${1}"+NormalizedValue)
	query = repeatedSpaceRegexp.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}

func ValidNormalizeMode(mode string) bool {
	return mode == NormalizeModeRegexp || mode == NormalizeModePgQuery
}

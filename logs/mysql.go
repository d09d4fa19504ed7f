package logs

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/state"
)

// MySQL general query log, e.g.
//
//	190101 12:00:00	   12 Query	SELECT * FROM users
//	                   12 Query	UPDATE users
//	SET name = 'x'
//
// There is no reliable way to tie continuation lines to a thread, so all
// lines go through the default (connection-less) accumulator.
type mysqlParser struct{}

var mysqlTimestamp = `(?:\d{6}\s+\d{1,2}:\d{2}:\d{2}\s+|\d{4}-\d{2}-\d{2}T\S+\s+)?`

var mysqlDiscardRegexp = regexp.MustCompile(`^Time\s|^Tcp port|, Version: |\d+\s+(?:Connect|Quit|Init DB|Field List|Statistics|Ping|Shutdown|Refresh|Close stmt|Prepare)\b|\d+\s+Query\s+(?i:use)\s`)
var mysqlNewQueryRegexp = regexp.MustCompile(`^` + mysqlTimestamp + `\s*\d{1,5}\s+(?:Query|Execute)\b`)
var mysqlQueryRegexp = regexp.MustCompile(`^` + mysqlTimestamp + `\s*\d{1,5}\s+(?:Query|Execute)\s+(\S.*)$`)

func (p *mysqlParser) Dialect() string {
	return DialectMySQL
}

func (p *mysqlParser) ParseLine(line string) (logLine state.LogLine, ok bool, err error) {
	if mysqlDiscardRegexp.MatchString(line) {
		return
	}

	if !mysqlNewQueryRegexp.MatchString(line) {
		return state.LogLine{Kind: state.ContinuationLine, Content: strings.TrimSpace(line)}, true, nil
	}

	queryParts := mysqlQueryRegexp.FindStringSubmatch(strings.TrimRight(line, " \t"))
	if queryParts == nil {
		return logLine, false, errors.New("line was identified as the start of a new query, but the statement text could not be extracted")
	}

	return state.LogLine{
		Kind:     state.QueryStartLine,
		Content:  strings.TrimSpace(queryParts[1]),
		Database: state.UnknownDatabase,
	}, true, nil
}

package logs

import (
	"regexp"
	"strconv"
	"strings"

	null "github.com/guregu/null"
	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/state"
)

const (
	DialectPlain  = "plain"
	DialectSyslog = "syslog"
	DialectMySQL  = "mysql"
)

var dialectAliases = map[string]string{
	DialectPlain:       DialectPlain,
	"pglog":            DialectPlain,
	"stderr":           DialectPlain,
	DialectSyslog:      DialectSyslog,
	DialectMySQL:       DialectMySQL,
	"alternate-engine": DialectMySQL,
}

// LookupDialect - Resolves a dialect name (or one of its aliases)
func LookupDialect(name string) (string, bool) {
	dialect, ok := dialectAliases[strings.ToLower(strings.TrimSpace(name))]
	return dialect, ok
}

// DefaultSyslogIdent is the syslog process name PostgreSQL logs under by default
const DefaultSyslogIdent = "postgres"

// LogParser - Classifies raw log lines of one dialect
//
// ParseLine returns ok=false without an error for lines it does not recognize.
// An error means the line looked like a known line type but could not be
// decomposed, which points to a parser bug or a corrupt line.
type LogParser interface {
	ParseLine(line string) (logLine state.LogLine, ok bool, err error)
	Dialect() string
}

// NewLogParser - Creates a parser for the given dialect. Parsers carry state
// between lines (e.g. the last seen connection), so use one per file.
func NewLogParser(dialect string, syslogIdent string) (LogParser, error) {
	name, ok := LookupDialect(dialect)
	if !ok {
		return nil, errors.Errorf("unsupported log type %q", dialect)
	}

	switch name {
	case DialectSyslog:
		if syslogIdent == "" {
			syslogIdent = DefaultSyslogIdent
		}
		return newSyslogParser(syslogIdent), nil
	case DialectMySQL:
		return &mysqlParser{}, nil
	default:
		return &plainParser{}, nil
	}
}

// Shared PostgreSQL grammar, applied once a dialect has removed its own preamble

var logLinePrefixRegexp = regexp.MustCompile(`^(.*?)LOG:`)
var prefixSeverityRegexp = regexp.MustCompile(`(?:DEBUG\d?|INFO|NOTICE|WARNING|ERROR|FATAL|PANIC|CONTEXT|HINT|DETAIL|STATEMENT|QUERY):`)
var prefixDatabaseRegexp = regexp.MustCompile(`(?:database_name:\s*|\bdb=)([^\s,\]]*)`)

var logOrDebugRegexp = regexp.MustCompile(`^(?:LOG|DEBUG\d?):\s*`)
var queryStarterRegexp = regexp.MustCompile(`^(?:query|statement):\s*`)
var durationRegexp = regexp.MustCompile(`^duration:([\s\d.]*)(sec|ms)`)
var durationQueryStarterRegexp = regexp.MustCompile(`(?i)^(?:query|statement|(?:execute|parse|bind) [^:]*):\s*`)
var statusRegexp = regexp.MustCompile(`^(?:connection|received|unexpected EOF)`)

var errorLineRegexp = regexp.MustCompile(`^(?:WARNING|ERROR|FATAL|PANIC):\s*`)
var contextLineRegexp = regexp.MustCompile(`^CONTEXT:\s*`)
var continuationLineRegexp = regexp.MustCompile(`^(?:\^I|\s)`)
var statementLineRegexp = regexp.MustCompile(`^STATEMENT:\s*`)
var hintLineRegexp = regexp.MustCompile(`^HINT:\s*`)
var detailLineRegexp = regexp.MustCompile(`^DETAIL:\s*`)

var contextStatementRegexp = regexp.MustCompile(`^SQL statement "`)
var contextFunctionRegexp = regexp.MustCompile(`(\S+)\s+function\s+(?:"([^"]+)"|([^\s(]+))`)

func parseCore(text string) (logLine state.LogLine, ok bool, err error) {
	database := state.UnknownDatabase
	if prefixParts := logLinePrefixRegexp.FindStringSubmatch(text); prefixParts != nil && isLogLinePrefix(prefixParts[1]) {
		text = text[len(prefixParts[1]):]
		if dbParts := prefixDatabaseRegexp.FindStringSubmatch(prefixParts[1]); dbParts != nil && dbParts[1] != "" {
			database = dbParts[1]
		}
	}

	if loc := logOrDebugRegexp.FindStringIndex(text); loc != nil {
		return parseLogOrDebug(text[loc[1]:], database)
	}

	if rest, found := cutPrefix(errorLineRegexp, text); found {
		return state.LogLine{Kind: state.ErrorLine, Content: rest}, true, nil
	}

	if rest, found := cutPrefix(contextLineRegexp, text); found {
		return state.LogLine{Kind: state.ContextLine, Content: contextContent(rest)}, true, nil
	}

	if rest, found := cutPrefix(continuationLineRegexp, text); found {
		return state.LogLine{Kind: state.ContinuationLine, Content: strings.Replace(rest, "^I", "\t", -1)}, true, nil
	}

	if rest, found := cutPrefix(statementLineRegexp, text); found {
		return state.LogLine{Kind: state.StatementLine, Content: rest}, true, nil
	}

	if rest, found := cutPrefix(hintLineRegexp, text); found {
		return state.LogLine{Kind: state.HintLine, Content: rest}, true, nil
	}

	if rest, found := cutPrefix(detailLineRegexp, text); found {
		return state.LogLine{Kind: state.DetailLine, Content: rest}, true, nil
	}

	// Blank separators keep the current query open
	if strings.TrimSpace(text) == "" {
		return state.LogLine{Kind: state.ContinuationLine}, true, nil
	}

	return logLine, false, nil
}

// isLogLinePrefix - Whether text in front of "LOG:" is a log_line_prefix, as
// opposed to statement text that happens to contain "LOG:"
func isLogLinePrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	if continuationLineRegexp.MatchString(prefix) {
		return false
	}
	return !prefixSeverityRegexp.MatchString(prefix)
}

func parseLogOrDebug(text string, database string) (logLine state.LogLine, ok bool, err error) {
	if rest, found := cutPrefix(queryStarterRegexp, text); found {
		return state.LogLine{Kind: state.QueryStartLine, Content: rest, Database: database}, true, nil
	}

	if durationParts := durationRegexp.FindStringSubmatchIndex(text); durationParts != nil {
		timeStr := strings.TrimSpace(text[durationParts[2]:durationParts[3]])
		unit := text[durationParts[4]:durationParts[5]]
		duration, err := parseDuration(timeStr, unit)
		if err != nil {
			return logLine, false, err
		}

		additionalInfo := strings.TrimSpace(text[durationParts[1]:])
		if additionalInfo == "" {
			return state.LogLine{Kind: state.DurationLine, Duration: null.FloatFrom(duration)}, true, nil
		}

		// Anything else is taken verbatim as the statement text
		if rest, found := cutPrefix(durationQueryStarterRegexp, additionalInfo); found {
			additionalInfo = rest
		}
		return state.LogLine{
			Kind:     state.QueryStartWithDurationLine,
			Content:  additionalInfo,
			Duration: null.FloatFrom(duration),
			Database: database,
		}, true, nil
	}

	if statusRegexp.MatchString(text) {
		return state.LogLine{Kind: state.StatusLine, Content: text}, true, nil
	}

	return logLine, false, nil
}

// parseDuration - Converts a logged duration to seconds
func parseDuration(timeStr string, unit string) (float64, error) {
	value, err := strconv.ParseFloat(timeStr, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "could not parse duration %q", timeStr)
	}
	if unit == "ms" {
		return value / 1000.0, nil
	}
	return value, nil
}

func contextContent(text string) string {
	if loc := contextStatementRegexp.FindStringIndex(text); loc != nil {
		return text[loc[1]:]
	}
	if functionParts := contextFunctionRegexp.FindStringSubmatch(text); functionParts != nil {
		if functionParts[2] != "" {
			return functionParts[2]
		}
		return functionParts[3]
	}
	return text
}

func cutPrefix(re *regexp.Regexp, text string) (string, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[1]:], true
}

package logs

import (
	"regexp"
	"strconv"
	"strings"

	null "github.com/guregu/null"

	"github.com/pganalyze/querylog/state"
)

// Plain PostgreSQL stderr logs, e.g. log_line_prefix = '%t [%p] '
//
// Only lines that start a log entry carry the [pid] marker, so follow-on lines
// are attributed to the last connection seen by this parser.
type plainParser struct {
	lastConnectionID string
}

var plainTimestampRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:[ T]\d{2}:\d{2}(?::\d{2})?(?:[.,]\d+)?)?\s*(?:[A-Z]{3,5}|[+-]?\d{1,2}(?::?\d{2})?|z(?:ulu)?)?\s`)
var plainPidRegexp = regexp.MustCompile(`^\[(\d{1,10})\]:?\s`)

func (p *plainParser) Dialect() string {
	return DialectPlain
}

func (p *plainParser) ParseLine(line string) (logLine state.LogLine, ok bool, err error) {
	text := line
	if loc := plainTimestampRegexp.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}

	connectionID := p.lastConnectionID
	if pidParts := plainPidRegexp.FindStringSubmatchIndex(text); pidParts != nil {
		connectionID = text[pidParts[2]:pidParts[3]]
		p.lastConnectionID = connectionID
		text = strings.TrimSpace(text[pidParts[1]:])
	}

	logLine, ok, err = parseCore(text)
	if !ok || err != nil {
		return
	}

	logLine.ConnectionID = connectionID
	return
}

// PostgreSQL logging through syslog (rsyslog formatting), e.g.
//
//	Feb  1 21:48:31 myhost postgres[9076]: [3-1] LOG:  statement: SELECT 1
//
// Lines from other processes are discarded.
type syslogParser struct {
	ident     string
	pidRegexp *regexp.Regexp
}

var syslogSequenceRegexp = regexp.MustCompile(`^\[(\d{1,10})(?:-(\d{1,5}))?\] `)

// rsyslog escapes control characters, tabs show up as "#011"
const syslogTabMarker = "#011"

func newSyslogParser(ident string) *syslogParser {
	return &syslogParser{
		ident:     ident,
		pidRegexp: regexp.MustCompile(` ` + regexp.QuoteMeta(ident) + `\[(\d{1,10})\]: `),
	}
}

func (p *syslogParser) Dialect() string {
	return DialectSyslog
}

func (p *syslogParser) ParseLine(line string) (logLine state.LogLine, ok bool, err error) {
	pidParts := p.pidRegexp.FindStringSubmatchIndex(line)
	if pidParts == nil {
		return
	}
	connectionID := line[pidParts[2]:pidParts[3]]
	text := line[pidParts[1]:]

	sequenceParts := syslogSequenceRegexp.FindStringSubmatch(text)
	if sequenceParts == nil {
		return
	}
	text = text[len(sequenceParts[0]):]

	commandNumber, _ := strconv.ParseInt(sequenceParts[1], 10, 64)
	lineNumber := int64(1)
	if sequenceParts[2] != "" {
		lineNumber, _ = strconv.ParseInt(sequenceParts[2], 10, 64)
	}

	logLine, ok, err = parseCore(strings.Replace(text, syslogTabMarker, "\t", -1))
	if !ok || err != nil {
		return
	}

	logLine.ConnectionID = connectionID
	logLine.CommandNumber = null.IntFrom(commandNumber)
	logLine.LineNumber = null.IntFrom(lineNumber)
	return
}

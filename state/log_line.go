package state

import (
	null "github.com/guregu/null"
)

// LogLineKind - Classification of a single raw log line
type LogLineKind int

const (
	UnknownLine LogLineKind = iota
	QueryStartLine
	QueryStartWithDurationLine
	DurationLine
	ContinuationLine
	ContextLine
	ErrorLine
	HintLine
	DetailLine
	StatementLine
	StatusLine
)

var logLineKindNames = map[LogLineKind]string{
	UnknownLine:                "UNKNOWN",
	QueryStartLine:             "QUERY_START",
	QueryStartWithDurationLine: "QUERY_START_WITH_DURATION",
	DurationLine:               "DURATION",
	ContinuationLine:           "CONTINUATION",
	ContextLine:                "CONTEXT",
	ErrorLine:                  "ERROR",
	HintLine:                   "HINT",
	DetailLine:                 "DETAIL",
	StatementLine:              "STATEMENT",
	StatusLine:                 "STATUS",
}

func (k LogLineKind) String() string {
	name, ok := logLineKindNames[k]
	if !ok {
		return "UNKNOWN"
	}
	return name
}

// UnknownDatabase is used when neither the log line nor the session told us the database
const UnknownDatabase = "UNKNOWN"

// LogLine - One classified line of a database log, consumed once by an accumulator
type LogLine struct {
	Kind    LogLineKind
	Content string

	// Seconds, only set for duration-bearing lines
	Duration null.Float
	Database string

	// Only present for dialects that expose them
	ConnectionID  string
	CommandNumber null.Int
	LineNumber    null.Int
}

// HasDuration - Whether this line carries execution time information
func (l LogLine) HasDuration() bool {
	return l.Kind == DurationLine || l.Kind == QueryStartWithDurationLine
}

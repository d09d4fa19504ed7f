package stream

import (
	"github.com/kr/logfmt"
	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/state"
	"github.com/pganalyze/querylog/util"
)

// ConnectionAccumulator - Reconstruction state for the lines of one connection
//
// Open queries and open errors are kept on two independent stacks: new records
// are pushed, follow-on lines modify the top record, and closing lines pop the
// top record so it can be emitted.
type ConnectionAccumulator struct {
	queries []*state.Query
	errors  []*state.ErrorRecord

	Host     string
	Port     string
	Username string
	Database string

	hasDurationInfo bool
	queriesStarted  int
	queriesAbsorbed int

	logger *util.Logger
}

func NewConnectionAccumulator(logger *util.Logger) *ConnectionAccumulator {
	return &ConnectionAccumulator{
		Host:     "UNKNOWN",
		Port:     "UNKNOWN",
		Username: "UNKNOWN",
		Database: state.UnknownDatabase,
		logger:   logger,
	}
}

// Append applies one line and returns the query or error it closed, if any
func (c *ConnectionAccumulator) Append(logLine state.LogLine) (*state.Query, *state.ErrorRecord, error) {
	if logLine.HasDuration() {
		c.hasDurationInfo = true
	}

	switch logLine.Kind {
	case state.QueryStartLine:
		c.pushQuery(logLine)
		return nil, nil, nil
	case state.QueryStartWithDurationLine:
		// The statement text arrives together with its duration, so whatever was
		// open before is complete now
		closed := c.popQuery()
		query := c.pushQuery(logLine)
		query.Duration = logLine.Duration
		return c.attributeQuery(closed), nil, nil
	case state.DurationLine:
		query := c.popQuery()
		if query == nil {
			c.logger.PrintVerbose("Duration for no previous query")
			return nil, nil, nil
		}
		query.Duration = logLine.Duration
		return c.attributeQuery(query), nil, nil
	case state.ContinuationLine:
		query := c.topQuery()
		if query == nil {
			c.logger.PrintVerbose("Continuation for no previous query: %q", logLine.Content)
			return nil, nil, nil
		}
		query.Append(logLine.Content)
		return nil, nil, nil
	case state.ContextLine:
		c.applyContext()
		return nil, nil, nil
	case state.ErrorLine:
		closed := c.popError()
		c.errors = append(c.errors, state.NewErrorRecord(logLine.Content))
		return nil, c.attributeError(closed), nil
	case state.HintLine, state.DetailLine, state.StatementLine:
		c.applyErrorField(logLine)
		return nil, nil, nil
	case state.StatusLine:
		c.applyStatus(logLine.Content)
		return nil, nil, nil
	}

	return nil, nil, errors.Errorf("cannot accumulate log line of kind %s", logLine.Kind)
}

func (c *ConnectionAccumulator) pushQuery(logLine state.LogLine) *state.Query {
	query := state.NewQuery(logLine.Content)
	query.Database = logLine.Database
	c.queries = append(c.queries, query)
	c.queriesStarted++
	return query
}

func (c *ConnectionAccumulator) topQuery() *state.Query {
	if len(c.queries) == 0 {
		return nil
	}
	return c.queries[len(c.queries)-1]
}

func (c *ConnectionAccumulator) popQuery() *state.Query {
	query := c.topQuery()
	if query != nil {
		c.queries = c.queries[:len(c.queries)-1]
	}
	return query
}

func (c *ConnectionAccumulator) popError() *state.ErrorRecord {
	if len(c.errors) == 0 {
		return nil
	}
	errorRecord := c.errors[len(c.errors)-1]
	c.errors = c.errors[:len(c.errors)-1]
	return errorRecord
}

// applyContext folds the most recent query into the one that invoked it
func (c *ConnectionAccumulator) applyContext() {
	subquery := c.popQuery()
	if subquery == nil {
		c.logger.PrintVerbose("Missing query for context")
		return
	}

	outer := c.topQuery()
	if outer == nil {
		c.logger.PrintVerbose("Context for no previous query, keeping %q open", subquery.Text)
		c.queries = append(c.queries, subquery)
		return
	}

	outer.SetSubquery(subquery.Text)
	c.queriesAbsorbed++
}

func (c *ConnectionAccumulator) applyErrorField(logLine state.LogLine) {
	if len(c.errors) == 0 {
		c.logger.PrintVerbose("%s for no previous error: %q", logLine.Kind, logLine.Content)
		return
	}

	errorRecord := c.errors[len(c.errors)-1]
	switch logLine.Kind {
	case state.HintLine:
		errorRecord.Hint = logLine.Content
	case state.DetailLine:
		errorRecord.Detail = logLine.Content
	case state.StatementLine:
		errorRecord.Statement = logLine.Content
	}
}

type connectionReceived struct {
	Host string `logfmt:"host"`
	Port string `logfmt:"port"`
}

type connectionAuthorized struct {
	User     string `logfmt:"user"`
	Database string `logfmt:"database"`
}

const connectionReceivedPrefix = "connection received:"
const connectionAuthorizedPrefix = "connection authorized:"

// applyStatus updates session metadata from connection log lines, e.g.
//
//	connection received: host=10.0.0.1 port=51234
//	connection authorized: user=app database=shop application_name=psql
func (c *ConnectionAccumulator) applyStatus(content string) {
	if rest, ok := cutStatus(content, connectionReceivedPrefix); ok {
		var received connectionReceived
		if err := logfmt.Unmarshal([]byte(rest), &received); err != nil {
			c.logger.PrintVerbose("Could not decode connection line %q: %s", content, err)
			return
		}
		if received.Host != "" {
			c.Host = received.Host
		}
		if received.Port != "" {
			c.Port = received.Port
		}
		return
	}

	if rest, ok := cutStatus(content, connectionAuthorizedPrefix); ok {
		var authorized connectionAuthorized
		if err := logfmt.Unmarshal([]byte(rest), &authorized); err != nil {
			c.logger.PrintVerbose("Could not decode connection line %q: %s", content, err)
			return
		}
		if authorized.User != "" && authorized.Database != "" {
			c.Username = authorized.User
			c.Database = authorized.Database
		}
	}
}

func cutStatus(content string, prefix string) (string, bool) {
	if len(content) < len(prefix) || content[:len(prefix)] != prefix {
		return "", false
	}
	return content[len(prefix):], true
}

// attributeQuery tags an emitted query with the session it ran in
func (c *ConnectionAccumulator) attributeQuery(query *state.Query) *state.Query {
	if query == nil {
		return nil
	}
	query.Username = c.Username
	if query.Database == "" || query.Database == state.UnknownDatabase {
		query.Database = c.Database
	}
	return query
}

func (c *ConnectionAccumulator) attributeError(errorRecord *state.ErrorRecord) *state.ErrorRecord {
	if errorRecord == nil {
		return nil
	}
	errorRecord.Username = c.Username
	errorRecord.Database = c.Database
	return errorRecord
}

// Drain closes everything still open, oldest first
func (c *ConnectionAccumulator) Drain() ([]*state.Query, []*state.ErrorRecord) {
	queries := make([]*state.Query, 0, len(c.queries))
	for _, query := range c.queries {
		queries = append(queries, c.attributeQuery(query))
	}
	errorRecords := make([]*state.ErrorRecord, 0, len(c.errors))
	for _, errorRecord := range c.errors {
		errorRecords = append(errorRecords, c.attributeError(errorRecord))
	}
	c.queries = nil
	c.errors = nil
	return queries, errorRecords
}

// OpenQueries - Number of queries that have been started but not closed yet
func (c *ConnectionAccumulator) OpenQueries() int {
	return len(c.queries)
}

func (c *ConnectionAccumulator) OpenErrors() int {
	return len(c.errors)
}

func (c *ConnectionAccumulator) HasDurationInfo() bool {
	return c.hasDurationInfo
}

package stream

import (
	"github.com/pganalyze/querylog/state"
	"github.com/pganalyze/querylog/util"
)

// This file handles de-interleaving of log lines by connection.
//
// Database servers write lines of concurrent sessions into the same log, so
// the lines of one query can be separated by lines of other sessions:
// - Dialects with a connection id (the backend PID) get one accumulator per id
// - Lines without a connection id share a single default accumulator
// - Ordering is only preserved per connection; the overall output interleaves
//   connections in the order their records were closed

// LogAccumulator - Routes classified lines to per-connection accumulators and
// collects the records they emit
type LogAccumulator struct {
	defaultConnection *ConnectionAccumulator
	connections       map[string]*ConnectionAccumulator
	connectionOrder   []string

	queries        []state.Query
	errors         []state.ErrorRecord
	queriesEmitted int

	closed bool
	logger *util.Logger
}

func NewLogAccumulator(logger *util.Logger) *LogAccumulator {
	return &LogAccumulator{
		defaultConnection: NewConnectionAccumulator(logger),
		connections:       make(map[string]*ConnectionAccumulator),
		logger:            logger,
	}
}

func (a *LogAccumulator) connectionFor(connectionID string) *ConnectionAccumulator {
	if connectionID == "" {
		return a.defaultConnection
	}
	connection, ok := a.connections[connectionID]
	if !ok {
		connection = NewConnectionAccumulator(a.logger.WithPrefix("conn " + connectionID))
		a.connections[connectionID] = connection
		a.connectionOrder = append(a.connectionOrder, connectionID)
	}
	return connection
}

// Append routes one line to its connection and collects whatever it closed
func (a *LogAccumulator) Append(logLine state.LogLine) error {
	if a.closed {
		a.logger.PrintWarning("Ignoring %s line after all connections were closed out", logLine.Kind)
		return nil
	}

	query, errorRecord, err := a.connectionFor(logLine.ConnectionID).Append(logLine)
	if err != nil {
		return err
	}
	a.collectQuery(query)
	a.collectError(errorRecord)
	return nil
}

func (a *LogAccumulator) collectQuery(query *state.Query) {
	if query == nil {
		return
	}
	a.queriesEmitted++
	if query.Ignored {
		return
	}
	a.queries = append(a.queries, *query)
}

func (a *LogAccumulator) collectError(errorRecord *state.ErrorRecord) {
	if errorRecord == nil {
		return
	}
	a.errors = append(a.errors, *errorRecord)
}

// CloseOutAll treats every record that is still open as complete, so trailing
// records at the end of the log are not lost
func (a *LogAccumulator) CloseOutAll() {
	if a.closed {
		return
	}
	a.closed = true

	a.drain(a.defaultConnection)
	for _, connectionID := range a.connectionOrder {
		a.drain(a.connections[connectionID])
	}
}

func (a *LogAccumulator) drain(connection *ConnectionAccumulator) {
	queries, errorRecords := connection.Drain()
	for _, query := range queries {
		a.collectQuery(query)
	}
	for _, errorRecord := range errorRecords {
		a.collectError(errorRecord)
	}
}

// Queries - Completed, non-ignored queries in emission order
func (a *LogAccumulator) Queries() []state.Query {
	return a.queries
}

func (a *LogAccumulator) Errors() []state.ErrorRecord {
	return a.errors
}

func (a *LogAccumulator) HasDurationInfo() bool {
	if a.defaultConnection.HasDurationInfo() {
		return true
	}
	for _, connection := range a.connections {
		if connection.HasDurationInfo() {
			return true
		}
	}
	return false
}

// ConnectionCount - Number of distinct connection ids seen
func (a *LogAccumulator) ConnectionCount() int {
	return len(a.connectionOrder)
}

// QueriesStarted - Number of queries opened by any connection
func (a *LogAccumulator) QueriesStarted() int {
	started := a.defaultConnection.queriesStarted
	for _, connection := range a.connections {
		started += connection.queriesStarted
	}
	return started
}

// QueriesEmitted - Number of queries closed so far, including ignored ones
func (a *LogAccumulator) QueriesEmitted() int {
	return a.queriesEmitted
}

// QueriesAbsorbed - Number of queries folded into an outer query as subquery
func (a *LogAccumulator) QueriesAbsorbed() int {
	absorbed := a.defaultConnection.queriesAbsorbed
	for _, connection := range a.connections {
		absorbed += connection.queriesAbsorbed
	}
	return absorbed
}

// OpenQueries - Number of queries still open across all connections
func (a *LogAccumulator) OpenQueries() int {
	open := a.defaultConnection.OpenQueries()
	for _, connection := range a.connections {
		open += connection.OpenQueries()
	}
	return open
}

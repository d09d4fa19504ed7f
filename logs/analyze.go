package logs

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/logs/stream"
	"github.com/pganalyze/querylog/state"
	"github.com/pganalyze/querylog/util"
)

type LineReader interface {
	ReadString(delim byte) (string, error)
}

// LogAnalyzer - Feeds raw lines through a parser into the accumulators,
// recording lines that fail instead of aborting
type LogAnalyzer struct {
	parser      LogParser
	accumulator *stream.LogAccumulator
	logger      *util.Logger

	parseErrors []state.ParseError
	lineCount   int
	started     time.Time
}

func NewLogAnalyzer(parser LogParser, logger *util.Logger) *LogAnalyzer {
	return &LogAnalyzer{
		parser:      parser,
		accumulator: stream.NewLogAccumulator(logger),
		logger:      logger,
		started:     time.Now(),
	}
}

// AddLine processes one raw line, with or without its trailing newline
func (a *LogAnalyzer) AddLine(line string) {
	line = strings.TrimRight(line, "\r\n")
	a.lineCount++

	logLine, ok, err := a.parser.ParseLine(line)
	if err != nil {
		a.recordParseError(line, errors.Wrapf(err, "could not classify line %d", a.lineCount))
		return
	}
	if !ok {
		return
	}

	err = a.accumulator.Append(logLine)
	if err != nil {
		a.recordParseError(line, errors.Wrapf(err, "could not accumulate line %d", a.lineCount))
	}
}

func (a *LogAnalyzer) recordParseError(line string, err error) {
	a.logger.PrintVerbose("%s", err)
	a.parseErrors = append(a.parseErrors, state.ParseError{RawLine: line, Description: err.Error()})
}

// Finish closes out all open records and returns the result
func (a *LogAnalyzer) Finish() state.LogResult {
	parseDuration := time.Since(a.started)
	a.accumulator.CloseOutAll()

	result := state.LogResult{
		Dialect:         a.parser.Dialect(),
		Queries:         a.accumulator.Queries(),
		Errors:          a.accumulator.Errors(),
		ParseErrors:     a.parseErrors,
		HasDurationInfo: a.accumulator.HasDurationInfo(),
		ParseDuration:   parseDuration,
		LineCount:       a.lineCount,
	}

	runID, err := uuid.NewV7()
	if err != nil {
		a.logger.PrintWarning("Failed to generate run UUID: %s", err)
	} else {
		result.UUID = runID
	}

	a.logger.PrintVerbose("Parsed %d lines from %d connections: %d queries, %d errors, %d parse errors",
		a.lineCount, a.accumulator.ConnectionCount(), len(result.Queries), len(result.Errors), len(result.ParseErrors))

	return result
}

// ParseAndAnalyzeBuffer - Reads all lines and reconstructs queries and errors
func ParseAndAnalyzeBuffer(logStream LineReader, parser LogParser, logger *util.Logger) (state.LogResult, error) {
	analyzer := NewLogAnalyzer(parser, logger)

	for {
		line, err := logStream.ReadString('\n')
		if line != "" {
			analyzer.AddLine(line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return state.LogResult{}, errors.Wrap(err, "could not read log")
		}
	}

	return analyzer.Finish(), nil
}

// ParseAndAnalyzeLines - Same as ParseAndAnalyzeBuffer for lines already in memory
func ParseAndAnalyzeLines(lines []string, parser LogParser, logger *util.Logger) state.LogResult {
	analyzer := NewLogAnalyzer(parser, logger)
	for _, line := range lines {
		analyzer.AddLine(line)
	}
	return analyzer.Finish()
}

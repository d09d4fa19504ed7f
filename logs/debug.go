package logs

import (
	"fmt"
	"io"
	"sort"

	"github.com/pganalyze/querylog/state"
)

// PrintDebugInfo - Classifies lines without accumulating them and prints how
// many lines of each kind were seen, followed by all unrecognized lines.
// Useful to check that a log uses a prefix the parser understands.
func PrintDebugInfo(w io.Writer, parser LogParser, lines []string) {
	groups := map[state.LogLineKind]int{}
	var unclassifiedLines []string
	var failedLines []string

	for _, line := range lines {
		logLine, ok, err := parser.ParseLine(line)
		if err != nil {
			failedLines = append(failedLines, fmt.Sprintf("%s\n  Error: %s", line, err))
			continue
		}
		if !ok {
			unclassifiedLines = append(unclassifiedLines, line)
			continue
		}
		groups[logLine.Kind]++
	}

	fmt.Fprintf(w, "%s log lines: %d, unrecognized: %d, failed: %d\n", parser.Dialect(), len(lines), len(unclassifiedLines), len(failedLines))

	var kinds []state.LogLineKind
	for kind := range groups {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		fmt.Fprintf(w, "%d x %s\n", groups[kind], kind)
	}

	if len(failedLines) > 0 {
		fmt.Fprintf(w, "\nFailed log lines:\n")
		for _, line := range failedLines {
			fmt.Fprintf(w, "%s\n---\n", line)
		}
	}

	if len(unclassifiedLines) > 0 {
		fmt.Fprintf(w, "\nUnrecognized log lines:\n")
		for _, line := range unclassifiedLines {
			fmt.Fprintf(w, "%s\n---\n", line)
		}
	}
}

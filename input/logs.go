package input

import (
	"github.com/hpcloud/tail"
	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/logs"
	"github.com/pganalyze/querylog/state"
	"github.com/pganalyze/querylog/util"
)

// readLines passes every line of the file to handle, without trailing newline.
//
// The file is read once; new data appended while reading is not waited for.
func readLines(filename string, handle func(line string)) error {
	tailFile, err := tail.TailFile(filename, tail.Config{
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return errors.Wrapf(err, "could not open log file %s", filename)
	}
	defer tailFile.Cleanup()

	for line := range tailFile.Lines {
		if line.Err != nil {
			tailFile.Stop()
			return errors.Wrapf(line.Err, "could not read log file %s", filename)
		}
		handle(line.Text)
	}

	// Lines is closed at EOF, Wait returns the reason reading stopped
	if err = tailFile.Wait(); err != nil {
		return errors.Wrapf(err, "could not read log file %s", filename)
	}
	return nil
}

// ReadLogFile - Reads a log file from start to end and reconstructs its queries and errors
func ReadLogFile(filename string, parser logs.LogParser, logger *util.Logger) (state.LogResult, error) {
	logger.PrintVerbose("Reading %s log file %s", parser.Dialect(), filename)

	analyzer := logs.NewLogAnalyzer(parser, logger)
	if err := readLines(filename, analyzer.AddLine); err != nil {
		return state.LogResult{}, err
	}
	return analyzer.Finish(), nil
}

// ReadLogLines - Raw lines of a log file, for inspecting how they get classified
func ReadLogLines(filename string) ([]string, error) {
	var lines []string
	err := readLines(filename, func(line string) {
		lines = append(lines, line)
	})
	return lines, err
}

package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/ogier/pflag"
	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/config"
	"github.com/pganalyze/querylog/input"
	"github.com/pganalyze/querylog/logs"
	"github.com/pganalyze/querylog/reports"
	"github.com/pganalyze/querylog/state"
	"github.com/pganalyze/querylog/util"
)

type options struct {
	configFilename string
	logFilename    string
	verbose        bool
	quiet          bool
	debugClassify  bool

	// Values of flags that were explicitly given, these win over the config file
	overrides config.Config
	changed   map[string]bool
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configFilename, "config", config.DefaultConfigFile, "Specify alternative path for config file")
	flag.StringVar(&opts.logFilename, "file", "", "Log file to analyze (can also be passed as argument)")
	flag.StringVar(&opts.overrides.LogType, "logtype", logs.DialectPlain, "Log format: plain, syslog or mysql")
	flag.StringVar(&opts.overrides.SyslogIdent, "syslog-ident", logs.DefaultSyslogIdent, "Program name of the database server in syslog lines")
	flag.IntVar(&opts.overrides.Top, "top", config.DefaultTop, "Number of entries in ranked reports")
	flag.BoolVar(&opts.overrides.Normalize, "normalize", false, "Replace literals in queries before aggregating")
	flag.StringVar(&opts.overrides.NormalizeMode, "normalize-mode", util.NormalizeModeRegexp, "Normalization: regex or pg_query")
	flag.StringVar(&opts.overrides.Format, "format", config.FormatText, "Output format: text, html or json")
	flag.StringVar(&opts.overrides.Reports, "reports", "", "Comma-separated reports: overall, bytype, mosttime, slowest, mostfrequent, errors")
	flag.StringVar(&opts.overrides.Databases, "db", "", "Comma-separated databases to report on, \"all\" for each database or \"list\" to list them")
	flag.BoolVarP(&opts.verbose, "verbose", "v", false, "Include verbose logging output")
	flag.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	flag.BoolVar(&opts.debugClassify, "debug-classify", false, "Print how each line of the log gets classified instead of running reports")
	flag.Parse()

	opts.changed = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		opts.changed[f.Name] = true
	})

	if opts.logFilename == "" && flag.NArg() > 0 {
		opts.logFilename = flag.Arg(0)
	}

	return opts
}

func applyFlags(conf *config.Config, opts options) {
	if opts.changed["logtype"] {
		conf.LogType = opts.overrides.LogType
	}
	if opts.changed["syslog-ident"] {
		conf.SyslogIdent = opts.overrides.SyslogIdent
	}
	if opts.changed["top"] {
		conf.Top = opts.overrides.Top
	}
	if opts.changed["normalize"] {
		conf.Normalize = opts.overrides.Normalize
	}
	if opts.changed["normalize-mode"] {
		conf.NormalizeMode = opts.overrides.NormalizeMode
	}
	if opts.changed["format"] {
		conf.Format = opts.overrides.Format
	}
	if opts.changed["reports"] {
		conf.Reports = opts.overrides.Reports
	}
	if opts.changed["db"] {
		conf.Databases = opts.overrides.Databases
	}
}

func run(opts options, logger *util.Logger, out io.Writer) error {
	if opts.logFilename == "" {
		flag.Usage()
		return errors.New("no log file specified; use the --file parameter")
	}

	conf, err := config.Read(logger, opts.configFilename)
	if err != nil {
		return err
	}
	applyFlags(&conf, opts)
	if err = conf.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	parser, err := logs.NewLogParser(conf.LogType, conf.SyslogIdent)
	if err != nil {
		return err
	}

	if opts.debugClassify {
		lines, err := input.ReadLogLines(opts.logFilename)
		if err != nil {
			return err
		}
		logs.PrintDebugInfo(out, parser, lines)
		return nil
	}

	result, err := input.ReadLogFile(opts.logFilename, parser, logger)
	if err != nil {
		return err
	}
	if conf.Normalize {
		result.Normalize(conf.NormalizeMode)
	}

	databases := conf.DatabaseNames()
	if len(databases) == 1 && databases[0] == "list" {
		for _, database := range result.Databases() {
			fmt.Fprintln(out, database)
		}
		return nil
	}
	if len(databases) == 1 && databases[0] == "all" {
		databases = result.Databases()
	}

	aggregator, err := reports.NewAggregator(conf.Format)
	if err != nil {
		return err
	}
	selected := reports.ForNames(conf.ReportNames(), conf.Top)

	if len(databases) == 0 {
		return writeReports(out, aggregator, result, selected, logger)
	}
	for _, database := range databases {
		if aggregator.Name() == config.FormatText {
			fmt.Fprintln(out, database)
		}
		err = writeReports(out, aggregator, result.ForDatabase(database), selected, logger)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeReports(out io.Writer, aggregator reports.Aggregator, result state.LogResult, selected []reports.Report, logger *util.Logger) error {
	if len(result.Queries) == 0 && len(result.Errors) == 0 && len(result.ParseErrors) == 0 {
		if result.Database != "" {
			logger.PrintInfo("No queries found for database %s", result.Database)
		} else {
			logger.PrintInfo("No queries found")
		}
		return nil
	}
	return aggregator.Aggregate(out, result, selected)
}

func main() {
	opts := parseFlags()
	logger := util.NewLogger(os.Stderr, opts.verbose, opts.quiet)

	if err := run(opts, logger, os.Stdout); err != nil {
		logger.PrintError("%s", err)
		os.Exit(1)
	}
}

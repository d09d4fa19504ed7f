package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/logs"
	"github.com/pganalyze/querylog/reports"
	"github.com/pganalyze/querylog/util"
)

const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

const DefaultTop = 10

// Config -
//   Describes how a log file is read and which reports are produced from it
type Config struct {
	LogType       string `ini:"logtype"`
	SyslogIdent   string `ini:"syslog_ident"`
	Top           int    `ini:"top"`
	Normalize     bool   `ini:"normalize"`
	NormalizeMode string `ini:"normalize_mode"`
	Format        string `ini:"format"`
	Reports       string `ini:"reports"`
	Databases     string `ini:"databases"`
}

// ReportNames - Requested reports, empty means the default set
func (config Config) ReportNames() []string {
	return splitList(config.Reports)
}

// DatabaseNames - Requested databases; "all" and "list" are handled by the caller
func (config Config) DatabaseNames() []string {
	return splitList(config.Databases)
}

// Validate - Checks all settings that can be given in the config file, the
// environment or on the command line
func (config Config) Validate() error {
	if _, ok := logs.LookupDialect(config.LogType); !ok {
		return errors.Errorf("unsupported log type %q (use plain, syslog or mysql)", config.LogType)
	}
	if config.Top <= 0 {
		return errors.Errorf("top must be a positive number, got %d", config.Top)
	}
	if !util.ValidNormalizeMode(config.NormalizeMode) {
		return errors.Errorf("unsupported normalize mode %q (use regex or pg_query)", config.NormalizeMode)
	}
	switch config.Format {
	case FormatText, FormatHTML, FormatJSON:
	default:
		return errors.Errorf("unsupported format %q (use text, html or json)", config.Format)
	}
	for _, name := range config.ReportNames() {
		if !reports.IsKnownReport(name) {
			return errors.Errorf("unknown report %q (available: %s)", name, strings.Join(reports.ReportNames, ", "))
		}
	}
	return nil
}

func splitList(value string) []string {
	var parts []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

package config

import (
	"os"
	"strconv"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/logs"
	"github.com/pganalyze/querylog/util"
)

const DefaultConfigFile = "/etc/querylog.conf"

// SectionName is the ini section holding the settings
const SectionName = "querylog"

func getDefaultConfig() *Config {
	return &Config{
		LogType:       logs.DialectPlain,
		SyslogIdent:   logs.DefaultSyslogIdent,
		Top:           DefaultTop,
		NormalizeMode: util.NormalizeModeRegexp,
		Format:        FormatText,
	}
}

// applyEnvironment - Environment variables override the config file
func applyEnvironment(config *Config) {
	if logType := os.Getenv("QUERYLOG_LOGTYPE"); logType != "" {
		config.LogType = logType
	}
	if syslogIdent := os.Getenv("QUERYLOG_SYSLOG_IDENT"); syslogIdent != "" {
		config.SyslogIdent = syslogIdent
	}
	if top := os.Getenv("QUERYLOG_TOP"); top != "" {
		if topNum, err := strconv.Atoi(top); err == nil {
			config.Top = topNum
		}
	}
	if normalize := os.Getenv("QUERYLOG_NORMALIZE"); normalize != "" {
		config.Normalize = normalize != "0" && normalize != "false"
	}
	if normalizeMode := os.Getenv("QUERYLOG_NORMALIZE_MODE"); normalizeMode != "" {
		config.NormalizeMode = normalizeMode
	}
	if format := os.Getenv("QUERYLOG_FORMAT"); format != "" {
		config.Format = format
	}
	if reports := os.Getenv("QUERYLOG_REPORTS"); reports != "" {
		config.Reports = reports
	}
	if databases := os.Getenv("QUERYLOG_DATABASES"); databases != "" {
		config.Databases = databases
	}
}

// Read - Reads the configuration from the specified filename, or falls back
// to the defaults when there is no such file
func Read(logger *util.Logger, filename string) (Config, error) {
	config := getDefaultConfig()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			configFile, err := ini.Load(filename)
			if err != nil {
				return *config, errors.Wrapf(err, "could not load config file %s", filename)
			}

			if !configFile.HasSection(SectionName) {
				logger.PrintWarning("Config file %s has no [%s] section, using defaults", filename, SectionName)
			} else {
				err = configFile.Section(SectionName).MapTo(config)
				if err != nil {
					return *config, errors.Wrapf(err, "could not map [%s] section", SectionName)
				}
			}
		} else {
			logger.PrintVerbose("No config file found at %s, using defaults", filename)
		}
	}

	applyEnvironment(config)

	return *config, nil
}

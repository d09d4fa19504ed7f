package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func writeConfigFile(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "querylog.conf")
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return filename
}

type readTestpair struct {
	name     string
	content  string
	env      map[string]string
	expected Config
}

var readTests = []readTestpair{
	{
		"defaults without a section",
		"[other]\nfoo = bar\n",
		nil,
		Config{LogType: "plain", SyslogIdent: "postgres", Top: 10, NormalizeMode: "regex", Format: "text"},
	},
	{
		"config file values",
		"[querylog]\nlogtype = syslog\nsyslog_ident = pg15\ntop = 5\nnormalize = true\nformat = html\nreports = slowest,errors\ndatabases = shop\n",
		nil,
		Config{LogType: "syslog", SyslogIdent: "pg15", Top: 5, Normalize: true, NormalizeMode: "regex", Format: "html", Reports: "slowest,errors", Databases: "shop"},
	},
	{
		"environment wins over the config file",
		"[querylog]\nlogtype = syslog\ntop = 5\n",
		map[string]string{"QUERYLOG_LOGTYPE": "mysql", "QUERYLOG_TOP": "3", "QUERYLOG_NORMALIZE": "1", "QUERYLOG_FORMAT": "json"},
		Config{LogType: "mysql", SyslogIdent: "postgres", Top: 3, Normalize: true, NormalizeMode: "regex", Format: "json"},
	},
}

func TestRead(t *testing.T) {
	for _, pair := range readTests {
		t.Run(pair.name, func(t *testing.T) {
			for key, value := range pair.env {
				t.Setenv(key, value)
			}

			config, err := Read(nil, writeConfigFile(t, pair.content))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := pretty.Compare(pair.expected, config); diff != "" {
				t.Errorf("config diff: (-want +got)\n%s", diff)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	config, err := Read(nil, filepath.Join(t.TempDir(), "missing.conf"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := pretty.Compare(*getDefaultConfig(), config); diff != "" {
		t.Errorf("config diff: (-want +got)\n%s", diff)
	}
}

var validateTests = []struct {
	change func(*Config)
	valid  bool
}{
	{func(c *Config) {}, true},
	{func(c *Config) { c.LogType = "pglog" }, true},
	{func(c *Config) { c.LogType = "csvlog" }, false},
	{func(c *Config) { c.Top = 0 }, false},
	{func(c *Config) { c.NormalizeMode = "pg_query" }, true},
	{func(c *Config) { c.NormalizeMode = "fingerprint" }, false},
	{func(c *Config) { c.Format = "pdf" }, false},
	{func(c *Config) { c.Reports = "overall, slowest" }, true},
	{func(c *Config) { c.Reports = "overall,fastest" }, false},
}

func TestValidate(t *testing.T) {
	for idx, test := range validateTests {
		config := getDefaultConfig()
		test.change(config)
		err := config.Validate()
		if test.valid != (err == nil) {
			t.Errorf("%d: expected valid %v, got error %v", idx, test.valid, err)
		}
	}
}

func TestListSettings(t *testing.T) {
	config := Config{Reports: " overall, ,slowest ", Databases: "shop,reporting"}
	if diff := pretty.Compare([]string{"overall", "slowest"}, config.ReportNames()); diff != "" {
		t.Errorf("report names diff: (-want +got)\n%s", diff)
	}
	if diff := pretty.Compare([]string{"shop", "reporting"}, config.DatabaseNames()); diff != "" {
		t.Errorf("database names diff: (-want +got)\n%s", diff)
	}
}

package reports_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	null "github.com/guregu/null"
	"github.com/kylelemons/godebug/pretty"

	"github.com/pganalyze/querylog/reports"
	"github.com/pganalyze/querylog/state"
)

func testResult() state.LogResult {
	return state.LogResult{
		Dialect: "plain",
		Queries: []state.Query{
			{Text: "SELECT * FROM users WHERE id = { }", Duration: null.FloatFrom(0.25)},
			{Text: "UPDATE carts SET total = { }", Duration: null.FloatFrom(1.5)},
			{Text: "DELETE FROM sessions"},
			{Text: "SELECT * FROM users WHERE id = { }", Duration: null.FloatFrom(0.5)},
			{Text: "INSERT INTO log VALUES ({ })", Duration: null.FloatFrom(0.125)},
		},
		Errors: []state.ErrorRecord{
			{Message: "relation \"foo\" does not exist", Statement: "SELECT * FROM foo", Hint: "Check <spelling>"},
		},
		HasDurationInfo: true,
		LineCount:       12,
	}
}

func reportTypes(list []reports.Report) []string {
	var types []string
	for _, report := range list {
		types = append(types, report.ReportType())
	}
	return types
}

var forNamesTests = []struct {
	names    []string
	expected []string
}{
	{
		nil,
		[]string{"overall", "bytype", "mosttime", "slowest", "mostfrequent", "parseerrors"},
	},
	{
		[]string{"errors", "overall"},
		[]string{"overall", "errors", "parseerrors"},
	},
	{
		[]string{"slowest", "slowest"},
		[]string{"slowest", "parseerrors"},
	},
}

func TestForNames(t *testing.T) {
	for _, test := range forNamesTests {
		if diff := pretty.Compare(test.expected, reportTypes(reports.ForNames(test.names, 10))); diff != "" {
			t.Errorf("For %v: report types diff: (-want +got)\n%s", test.names, diff)
		}
	}
}

var textTests = []struct {
	report   reports.Report
	expected string
}{
	{
		reports.OverallReport{},
		"######## Overall statistics\n" +
			"5 queries (4 unique), total duration 2.375 seconds, longest ran in 1.500 seconds, parsed in 0.0 seconds\n",
	},
	{
		reports.ByTypeReport{},
		"######## Queries by type\n" +
			"SELECTs: 2 (40%)\n" +
			"INSERTs: 1 (20%)\n" +
			"UPDATEs: 1 (20%)\n" +
			"DELETEs: 1 (20%)\n",
	},
	{
		reports.MostTimeReport{Top: 3},
		"######## Queries that took up the most time\n" +
			"1.500 seconds: UPDATE carts SET total = { }\n" +
			"0.750 seconds: SELECT * FROM users WHERE id = { }\n" +
			"0.125 seconds: INSERT INTO log VALUES ({ })\n",
	},
	{
		reports.SlowestReport{Top: 2},
		"######## Slowest queries\n" +
			"1.500 seconds: UPDATE carts SET total = { }\n" +
			"0.500 seconds: SELECT * FROM users WHERE id = { }\n",
	},
	{
		reports.MostFrequentReport{Top: 2},
		"######## Most frequent queries\n" +
			"2 times: SELECT * FROM users WHERE id = { }\n" +
			"1 times: UPDATE carts SET total = { }\n",
	},
	{
		reports.ErrorsReport{},
		"######## Errors\n" +
			"relation \"foo\" does not exist : SELECT * FROM foo\n",
	},
}

func TestReportText(t *testing.T) {
	result := testResult()
	for _, test := range textTests {
		if actual := test.report.Text(result); actual != test.expected {
			t.Errorf("For %s: expected\n%s\ngot\n%s", test.report.ReportType(), test.expected, actual)
		}
	}
}

func TestTextAggregatorSkipsInapplicable(t *testing.T) {
	result := testResult()
	result.HasDurationInfo = false
	for idx := range result.Queries {
		result.Queries[idx].Duration = null.Float{}
	}

	var out bytes.Buffer
	err := reports.TextAggregator{}.Aggregate(&out, result, reports.ForNames(nil, 10))
	if err != nil {
		t.Fatal(err)
	}

	text := out.String()
	for _, title := range []string{"Slowest queries", "Queries that took up the most time", "Parse Errors"} {
		if strings.Contains(text, title) {
			t.Errorf("expected %q to be skipped, got\n%s", title, text)
		}
	}
	if !strings.Contains(text, "5 queries (4 unique), parsed in") {
		t.Errorf("expected overall statistics without durations, got\n%s", text)
	}
}

func TestHTMLAggregator(t *testing.T) {
	result := testResult()
	result.Queries = append(result.Queries, state.Query{Text: "SELECT a < b FROM t"})

	var out bytes.Buffer
	aggregator := reports.HTMLAggregator{GeneratedAt: time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)}
	if err := aggregator.Aggregate(&out, result, reports.ForNames([]string{"mostfrequent", "errors"}, 10)); err != nil {
		t.Fatal(err)
	}

	page := out.String()
	expected := []string{
		"<title>SQL Query Analysis (generated Mon, 15 Jan 2024 10:00:00 UTC)</title>",
		"<a href=\"#report0\">Most frequent queries</a>",
		"<a href=\"#report1\">Errors</a>",
		"<span class='keyword'>SELECT</span> a &lt; b <span class='keyword'>FROM</span> t",
		"<p>HINT : Check &lt;spelling&gt;</p>",
	}
	for _, fragment := range expected {
		if !strings.Contains(page, fragment) {
			t.Errorf("expected page to contain %q, got\n%s", fragment, page)
		}
	}
	if strings.Contains(page, "Parse Errors") {
		t.Errorf("expected parse errors to be skipped when there are none")
	}
	if strings.Contains(page, "<h2>Database:") {
		t.Errorf("expected no database heading for an unfiltered result")
	}
}

func TestHTMLAggregatorDatabaseHeading(t *testing.T) {
	result := testResult().ForDatabase("shop")

	var out bytes.Buffer
	if err := (reports.HTMLAggregator{}).Aggregate(&out, result, reports.ForNames(nil, 10)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "<h2>Database: shop</h2>") {
		t.Errorf("expected a database heading, got\n%s", out.String())
	}
}

func TestJSONAggregator(t *testing.T) {
	result := testResult()
	result.ParseErrors = []state.ParseError{{RawLine: "\t\t   12 Query", Description: "could not classify line 3"}}

	var out bytes.Buffer
	if err := (reports.JSONAggregator{}).Aggregate(&out, result, reports.ForNames([]string{"slowest"}, 1)); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Dialect   string `json:"dialect"`
		LineCount int    `json:"line_count"`
		Reports   []struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		} `json:"reports"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %s\n%s", err, out.String())
	}

	if doc.Dialect != "plain" || doc.LineCount != 12 {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if len(doc.Reports) != 2 || doc.Reports[0].Type != "slowest" || doc.Reports[1].Type != "parseerrors" {
		t.Fatalf("unexpected reports: %s", out.String())
	}

	var slowest []reports.Timing
	if err := json.Unmarshal(doc.Reports[0].Data, &slowest); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Compare([]reports.Timing{{Text: "UPDATE carts SET total = { }", Duration: 1.5}}, slowest); diff != "" {
		t.Errorf("slowest diff: (-want +got)\n%s", diff)
	}
}

func TestNewAggregator(t *testing.T) {
	for _, format := range []string{"text", "html", "json"} {
		aggregator, err := reports.NewAggregator(format)
		if err != nil || aggregator.Name() != format {
			t.Errorf("For %s: unexpected aggregator %v (%v)", format, aggregator, err)
		}
	}
	if _, err := reports.NewAggregator("pdf"); err == nil {
		t.Errorf("expected an error for an unsupported format")
	}
}

package state_test

import (
	"testing"

	null "github.com/guregu/null"
	"github.com/kylelemons/godebug/pretty"

	"github.com/pganalyze/querylog/state"
)

var noiseTests = []struct {
	text    string
	ignored bool
}{
	{"BEGIN", true},
	{"begin transaction isolation level serializable", true},
	{"VACUUM ANALYZE users", true},
	{"select 1", true},
	{"SELECT 1", true},
	{"SELECT 1 FROM users", false},
	{"SELECT * FROM beginnings", true},
	{"UPDATE jobs SET state = 'vacuumed'", true},
	{"SELECT vacuumdb_run()", true},
}

func TestNewQueryIgnored(t *testing.T) {
	for _, test := range noiseTests {
		if q := state.NewQuery(test.text); q.Ignored != test.ignored {
			t.Errorf("For %q: expected ignored %v, got %v", test.text, test.ignored, q.Ignored)
		}
	}
}

func TestQueryAppendSubquery(t *testing.T) {
	q := state.NewQuery("SELECT refresh()")
	q.Append("AS result")
	q.SetSubquery("UPDATE totals")
	q.Append("SET n = 1")

	if q.Text != "SELECT refresh() AS result" {
		t.Errorf("unexpected text %q", q.Text)
	}
	if q.SubqueryText() != "UPDATE totals SET n = 1" {
		t.Errorf("unexpected subquery %q", q.SubqueryText())
	}
	q = state.NewQuery("SELECT a")
	q.Append("")
	q.Append("FROM b")
	q.Append("")
	if q.Text != "SELECT a FROM b" {
		t.Errorf("expected blank fragments to be skipped, got %q", q.Text)
	}

	if state.NewQuery("SELECT 2").SubqueryText() != "" {
		t.Errorf("expected no subquery text for a plain query")
	}
}

var statementTypeTests = []struct {
	text     string
	expected state.StatementType
}{
	{"SELECT * FROM users", state.SelectStatement},
	{"  insert into users VALUES (1)", state.InsertStatement},
	{"UPDATE users SET a = 1", state.UpdateStatement},
	{"delete from users", state.DeleteStatement},
	{"WITH x AS (SELECT 1) SELECT * FROM x", state.OtherStatement},
}

func TestStatementType(t *testing.T) {
	for _, test := range statementTypeTests {
		if actual := (state.Query{Text: test.text}).StatementType(); actual != test.expected {
			t.Errorf("For %q: expected %s, got %s", test.text, test.expected, actual)
		}
	}
}

func testResult() state.LogResult {
	return state.LogResult{
		Queries: []state.Query{
			{Text: "SELECT a", Duration: null.FloatFrom(0.25), Database: "shop"},
			{Text: "SELECT b", Database: "reporting"},
			{Text: "SELECT a", Duration: null.FloatFrom(1.5), Database: "shop"},
			{Text: "UPDATE c", Duration: null.FloatFrom(0.25), Database: state.UnknownDatabase},
		},
		Errors: []state.ErrorRecord{
			{Message: "boom", Statement: "SELECT d", Database: "reporting"},
		},
		HasDurationInfo: true,
	}
}

func TestLogResultAggregates(t *testing.T) {
	result := testResult()

	if result.UniqueQueries() != 3 {
		t.Errorf("expected 3 unique queries, got %d", result.UniqueQueries())
	}
	if result.TotalDuration() != 2.0 {
		t.Errorf("expected total duration 2.0, got %v", result.TotalDuration())
	}
	if diff := pretty.Compare([]string{"shop", "reporting", state.UnknownDatabase}, result.Databases()); diff != "" {
		t.Errorf("databases diff: (-want +got)\n%s", diff)
	}

	var texts []string
	for _, q := range result.QueriesByDuration() {
		texts = append(texts, q.Text)
	}
	if diff := pretty.Compare([]string{"SELECT a", "SELECT a", "UPDATE c"}, texts); diff != "" {
		t.Errorf("queries by duration diff: (-want +got)\n%s", diff)
	}
	if result.QueriesByDuration()[0].Duration.Float64 != 1.5 {
		t.Errorf("expected slowest query first")
	}
}

func TestLogResultForDatabase(t *testing.T) {
	filtered := testResult().ForDatabase("reporting")

	cfg := *pretty.CompareConfig
	cfg.SkipZeroFields = true

	expected := state.LogResult{
		Database: "reporting",
		Queries:  []state.Query{{Text: "SELECT b", Database: "reporting"}},
		Errors: []state.ErrorRecord{
			{Message: "boom", Statement: "SELECT d", Database: "reporting"},
		},
		HasDurationInfo: true,
	}
	if diff := cfg.Compare(expected, filtered); diff != "" {
		t.Errorf("filtered result diff: (-want +got)\n%s", diff)
	}
}

func TestLogResultNormalize(t *testing.T) {
	result := state.LogResult{Queries: []state.Query{
		{Text: "SELECT * FROM users WHERE id = 1"},
		{Text: "SELECT * FROM users WHERE id = 2"},
	}}
	result.Normalize("regex")

	if result.UniqueQueries() != 1 {
		t.Errorf("expected normalized queries to collapse into 1, got %d: %+v", result.UniqueQueries(), result.Queries)
	}
}

func TestLogLineKindString(t *testing.T) {
	if state.QueryStartWithDurationLine.String() != "QUERY_START_WITH_DURATION" {
		t.Errorf("unexpected name %s", state.QueryStartWithDurationLine)
	}
	if state.LogLineKind(99).String() != "UNKNOWN" {
		t.Errorf("expected out of range kinds to be UNKNOWN")
	}
	if !(state.LogLine{Kind: state.DurationLine}).HasDuration() || (state.LogLine{Kind: state.QueryStartLine}).HasDuration() {
		t.Errorf("unexpected HasDuration result")
	}
}

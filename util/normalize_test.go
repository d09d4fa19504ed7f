package util_test

import (
	"testing"

	"github.com/pganalyze/querylog/util"
)

var normalizeTests = []struct {
	input    string
	expected string
}{
	{
		"SELECT * FROM users WHERE id = 42",
		"SELECT * FROM users WHERE id = { }",
	},
	{
		"SELECT * FROM users WHERE name = 'bob'",
		"SELECT * FROM users WHERE name = { }",
	},
	{
		`SELECT * FROM notes WHERE body = 'it\'s'`,
		"SELECT * FROM notes WHERE body = { }",
	},
	{
		"SELECT col1, t2.x FROM t2 WHERE y IN (1, 2,  3)",
		"SELECT col1, t2.x FROM t2 WHERE y IN ({ }, { }, { })",
	},
	{
		`SELECT note FROM t WHERE a \\''`,
		"SELECT note FROM t WHERE a '",
	},
	{
		"SELECT * FROM t WHERE id = $1",
		"SELECT * FROM t WHERE id = $1",
	},
	{
		"  SELECT   price * 1.5  FROM items ",
		"SELECT price * { }.{ } FROM items",
	},
}

func TestNormalizeQuery(t *testing.T) {
	for _, test := range normalizeTests {
		actual := util.NormalizeQuery(test.input, util.NormalizeModeRegexp)
		if actual != test.expected {
			t.Errorf("NormalizeQuery(%q)\nexpected %q\nactual   %q", test.input, test.expected, actual)
		}

		again := util.NormalizeQuery(actual, util.NormalizeModeRegexp)
		if again != actual {
			t.Errorf("NormalizeQuery is not idempotent for %q: %q became %q", test.input, actual, again)
		}
	}
}

func TestNormalizeQueryPgQuery(t *testing.T) {
	actual := util.NormalizeQuery("SELECT * FROM users WHERE id = 42 AND name = 'bob'", util.NormalizeModePgQuery)
	expected := "SELECT * FROM users WHERE id = $1 AND name = $2"
	if actual != expected {
		t.Errorf("expected %q, got %q", expected, actual)
	}

	// Text that PostgreSQL cannot parse falls back to literal replacement
	actual = util.NormalizeQuery("SELEC * FROM users WHERE id = 42", util.NormalizeModePgQuery)
	expected = "SELEC * FROM users WHERE id = { }"
	if actual != expected {
		t.Errorf("expected %q, got %q", expected, actual)
	}
}

func TestValidNormalizeMode(t *testing.T) {
	for mode, valid := range map[string]bool{"regex": true, "pg_query": true, "fingerprint": false, "": false} {
		if util.ValidNormalizeMode(mode) != valid {
			t.Errorf("expected ValidNormalizeMode(%q) to be %v", mode, valid)
		}
	}
}

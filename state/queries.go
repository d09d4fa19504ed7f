package state

import (
	"regexp"
	"strings"

	null "github.com/guregu/null"

	"github.com/pganalyze/querylog/util"
)

// Query - A statement reconstructed from one or more log lines
type Query struct {
	Text     string
	Duration null.Float
	Database string
	Username string

	// Noise statements (transaction control, maintenance, probes) are tracked
	// like any other query but never reported
	Ignored bool

	// Text of statements that ran nested inside this one (e.g. in a function body)
	Subqueries []string

	parsingSubquery bool
}

var noiseQueryRegexp = regexp.MustCompile(`(?i)begin|vacuum|^select 1$`)

// IsNoiseQuery - Whether the statement text should be excluded from reports
func IsNoiseQuery(text string) bool {
	return noiseQueryRegexp.MatchString(text)
}

func NewQuery(text string) *Query {
	return &Query{Text: text, Ignored: IsNoiseQuery(text)}
}

// Append adds a continuation fragment, to the open subquery if there is one.
// Empty fragments (blank lines) leave the text unchanged.
func (q *Query) Append(text string) {
	if text == "" {
		return
	}
	if q.parsingSubquery {
		q.Subqueries[len(q.Subqueries)-1] += " " + text
		return
	}
	q.Text += " " + text
}

func (q *Query) SetSubquery(text string) {
	q.parsingSubquery = true
	q.Subqueries = append(q.Subqueries, text)
}

// SubqueryText - Most recently attached subquery, empty if there is none
func (q Query) SubqueryText() string {
	if len(q.Subqueries) == 0 {
		return ""
	}
	return q.Subqueries[len(q.Subqueries)-1]
}

func (q *Query) Normalize(mode string) {
	q.Text = util.NormalizeQuery(q.Text, mode)
}

type StatementType string

const (
	SelectStatement StatementType = "SELECT"
	InsertStatement StatementType = "INSERT"
	UpdateStatement StatementType = "UPDATE"
	DeleteStatement StatementType = "DELETE"
	OtherStatement  StatementType = "OTHER"
)

var StatementTypes = []StatementType{SelectStatement, InsertStatement, UpdateStatement, DeleteStatement}

func (q Query) StatementType() StatementType {
	text := strings.ToUpper(strings.TrimSpace(q.Text))
	for _, t := range StatementTypes {
		if strings.HasPrefix(text, string(t)) {
			return t
		}
	}
	return OtherStatement
}

package reports

import (
	"fmt"
	"html"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// ErrorsReport - Every error with the statement that caused it
type ErrorsReport struct{}

func (report ErrorsReport) ReportType() string {
	return ErrorsReportType
}

func (report ErrorsReport) Title() string {
	return "Errors"
}

func (report ErrorsReport) Applicable(result state.LogResult) bool {
	return len(result.Errors) > 0
}

func (report ErrorsReport) Data(result state.LogResult) interface{} {
	return result.Errors
}

func (report ErrorsReport) Text(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(textHeader(report))
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "%s : %s\n", e.Message, e.Statement)
	}
	return b.String()
}

func (report ErrorsReport) HTML(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(htmlHeader(report))
	b.WriteString("<table><tr><th>Error</th><th>Offending query</th></tr>\n")
	for _, e := range result.Errors {
		message := "<p>" + html.EscapeString(e.Message) + "</p>"
		if e.Detail != "" {
			message += "<p>DETAIL : " + html.EscapeString(e.Detail) + "</p>"
		}
		if e.Hint != "" {
			message += "<p>HINT : " + html.EscapeString(e.Hint) + "</p>"
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n", message, highlightSQL(e.Statement))
	}
	b.WriteString("</table>\n")
	return b.String()
}

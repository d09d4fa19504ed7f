package reports

import (
	"fmt"
	"html"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// ParseErrorsReport - Lines that were recognized but could not be processed
type ParseErrorsReport struct{}

func (report ParseErrorsReport) ReportType() string {
	return ParseErrorsReportType
}

func (report ParseErrorsReport) Title() string {
	return "Parse Errors"
}

func (report ParseErrorsReport) Applicable(result state.LogResult) bool {
	return len(result.ParseErrors) > 0
}

func (report ParseErrorsReport) Data(result state.LogResult) interface{} {
	return result.ParseErrors
}

func (report ParseErrorsReport) Text(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(textHeader(report))
	for _, e := range result.ParseErrors {
		fmt.Fprintf(&b, "%s : %s\n", e.Description, e.RawLine)
	}
	return b.String()
}

func (report ParseErrorsReport) HTML(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(htmlHeader(report))
	b.WriteString("<table><tr><th>Explanation</th><th>Offending line</th></tr>\n")
	for _, e := range result.ParseErrors {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(e.Description), html.EscapeString(e.RawLine))
	}
	b.WriteString("</table>\n")
	return b.String()
}

package reports

import (
	"fmt"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// ByTypeReport - Share of SELECT, INSERT, UPDATE and DELETE statements
type ByTypeReport struct{}

type TypeCount struct {
	Type    state.StatementType `json:"type"`
	Count   int                 `json:"count"`
	Percent int                 `json:"percent"`
}

func (report ByTypeReport) ReportType() string {
	return ByTypeReportType
}

func (report ByTypeReport) Title() string {
	return "Queries by type"
}

func (report ByTypeReport) Applicable(result state.LogResult) bool {
	return true
}

// Data lists only the statement types that occur
func (report ByTypeReport) Data(result state.LogResult) interface{} {
	counts := make(map[state.StatementType]int)
	for _, q := range result.Queries {
		counts[q.StatementType()]++
	}

	data := []TypeCount{}
	for _, t := range state.StatementTypes {
		if counts[t] == 0 {
			continue
		}
		data = append(data, TypeCount{Type: t, Count: counts[t], Percent: percentOf(counts[t], len(result.Queries))})
	}
	return data
}

func (report ByTypeReport) Text(result state.LogResult) string {
	data := report.Data(result).([]TypeCount)

	width := 0
	for _, c := range data {
		if w := len(fmt.Sprint(c.Count)); w > width {
			width = w
		}
	}

	var b strings.Builder
	b.WriteString(textHeader(report))
	for _, c := range data {
		fmt.Fprintf(&b, "%ss: %-*d (%d%%)\n", c.Type, width, c.Count, c.Percent)
	}
	return b.String()
}

func (report ByTypeReport) HTML(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(htmlHeader(report))
	b.WriteString("<table><tr><th>Type</th><th>Count</th><th>Percentage</th></tr>\n")
	for _, c := range report.Data(result).([]TypeCount) {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td align=center>%d</td></tr>\n", c.Type, c.Count, c.Percent)
	}
	b.WriteString("</table>\n")
	return b.String()
}

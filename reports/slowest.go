package reports

import (
	"fmt"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// SlowestReport - Individual executions with the highest duration
type SlowestReport struct {
	Top int
}

func (report SlowestReport) ReportType() string {
	return SlowestReportType
}

func (report SlowestReport) Title() string {
	return "Slowest queries"
}

func (report SlowestReport) Applicable(result state.LogResult) bool {
	return result.HasDurationInfo
}

func (report SlowestReport) Data(result state.LogResult) interface{} {
	timed := result.QueriesByDuration()
	data := []Timing{}
	for _, q := range timed[:limit(len(timed), report.Top)] {
		data = append(data, Timing{Text: q.Text, Duration: q.Duration.Float64})
	}
	return data
}

func (report SlowestReport) Text(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(textHeader(report))
	for _, t := range report.Data(result).([]Timing) {
		fmt.Fprintf(&b, "%.3f seconds: %s\n", t.Duration, t.Text)
	}
	return b.String()
}

func (report SlowestReport) HTML(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(htmlHeader(report))
	b.WriteString("<table><tr><th>Rank</th><th>Time</th><th>Query text</th></tr>\n")
	for idx, t := range report.Data(result).([]Timing) {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%.3f</td><td>%s</td></tr>\n", idx+1, t.Duration, highlightSQL(t.Text))
	}
	b.WriteString("</table>\n")
	return b.String()
}

package reports

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// MostTimeReport - Statements ranked by their summed duration
type MostTimeReport struct {
	Top int
}

type QueryTotal struct {
	Text          string  `json:"text"`
	TotalDuration float64 `json:"total_duration"`
	Count         int     `json:"count"`
}

func (report MostTimeReport) ReportType() string {
	return MostTimeReportType
}

func (report MostTimeReport) Title() string {
	return "Queries that took up the most time"
}

func (report MostTimeReport) Applicable(result state.LogResult) bool {
	return result.HasDurationInfo
}

// Data groups by exact text, so normalizing first merges statements that
// only differ in their literals
func (report MostTimeReport) Data(result state.LogResult) interface{} {
	totals := []QueryTotal{}
	index := make(map[string]int)
	for _, q := range result.Queries {
		if !q.Duration.Valid {
			continue
		}
		idx, ok := index[q.Text]
		if !ok {
			idx = len(totals)
			index[q.Text] = idx
			totals = append(totals, QueryTotal{Text: q.Text})
		}
		totals[idx].TotalDuration += q.Duration.Float64
		totals[idx].Count++
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalDuration > totals[j].TotalDuration
	})
	return totals[:limit(len(totals), report.Top)]
}

func (report MostTimeReport) Text(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(textHeader(report))
	for _, t := range report.Data(result).([]QueryTotal) {
		fmt.Fprintf(&b, "%.3f seconds: %s\n", t.TotalDuration, t.Text)
	}
	return b.String()
}

func (report MostTimeReport) HTML(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(htmlHeader(report))
	b.WriteString("<table><tr><th>Rank</th><th>Total time (seconds)</th><th>Times executed</th><th>Query text</th></tr>\n")
	for idx, t := range report.Data(result).([]QueryTotal) {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%.3f</td><td align=right>%d</td><td>%s</td></tr>\n", idx+1, t.TotalDuration, t.Count, highlightSQL(t.Text))
	}
	b.WriteString("</table>\n")
	return b.String()
}

package reports

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// MostFrequentReport - Statements ranked by how often they ran
type MostFrequentReport struct {
	Top int
}

type QueryFrequency struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func (report MostFrequentReport) ReportType() string {
	return MostFrequentReportType
}

func (report MostFrequentReport) Title() string {
	return "Most frequent queries"
}

func (report MostFrequentReport) Applicable(result state.LogResult) bool {
	return true
}

// Data - Ties keep the order in which the statements first appeared
func (report MostFrequentReport) Data(result state.LogResult) interface{} {
	frequencies := []QueryFrequency{}
	index := make(map[string]int)
	for _, q := range result.Queries {
		idx, ok := index[q.Text]
		if !ok {
			idx = len(frequencies)
			index[q.Text] = idx
			frequencies = append(frequencies, QueryFrequency{Text: q.Text})
		}
		frequencies[idx].Count++
	}

	sort.SliceStable(frequencies, func(i, j int) bool {
		return frequencies[i].Count > frequencies[j].Count
	})
	return frequencies[:limit(len(frequencies), report.Top)]
}

func (report MostFrequentReport) Text(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(textHeader(report))
	for _, f := range report.Data(result).([]QueryFrequency) {
		fmt.Fprintf(&b, "%d times: %s\n", f.Count, f.Text)
	}
	return b.String()
}

func (report MostFrequentReport) HTML(result state.LogResult) string {
	var b strings.Builder
	b.WriteString(htmlHeader(report))
	b.WriteString("<table><tr><th>Rank</th><th>Times executed</th><th>Query text</th></tr>\n")
	for idx, f := range report.Data(result).([]QueryFrequency) {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%d</td><td>%s</td></tr>\n", idx+1, f.Count, highlightSQL(f.Text))
	}
	b.WriteString("</table>\n")
	return b.String()
}

package reports

import (
	"fmt"
	"strings"

	"github.com/pganalyze/querylog/state"
)

// OverallReport - Query counts, total time and the extremes
type OverallReport struct{}

type OverallData struct {
	Queries       int     `json:"queries"`
	UniqueQueries int     `json:"unique_queries"`
	Errors        int     `json:"errors"`
	TotalDuration float64 `json:"total_duration,omitempty"`
	Longest       *Timing `json:"longest,omitempty"`
	Shortest      *Timing `json:"shortest,omitempty"`
	ParseSeconds  float64 `json:"parse_seconds"`
}

type Timing struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

func (report OverallReport) ReportType() string {
	return OverallReportType
}

func (report OverallReport) Title() string {
	return "Overall statistics"
}

func (report OverallReport) Applicable(result state.LogResult) bool {
	return true
}

func (report OverallReport) Data(result state.LogResult) interface{} {
	data := OverallData{
		Queries:       len(result.Queries),
		UniqueQueries: result.UniqueQueries(),
		Errors:        len(result.Errors),
		ParseSeconds:  result.ParseDuration.Seconds(),
	}
	if !result.HasDurationInfo {
		return data
	}

	data.TotalDuration = result.TotalDuration()
	timed := result.QueriesByDuration()
	if len(timed) > 0 {
		longest := timed[0]
		shortest := timed[len(timed)-1]
		data.Longest = &Timing{Text: longest.Text, Duration: longest.Duration.Float64}
		data.Shortest = &Timing{Text: shortest.Text, Duration: shortest.Duration.Float64}
	}
	return data
}

func (report OverallReport) Text(result state.LogResult) string {
	data := report.Data(result).(OverallData)

	var b strings.Builder
	b.WriteString(textHeader(report))
	fmt.Fprintf(&b, "%s (%d unique)", countOf(data.Queries, "query"), data.UniqueQueries)
	if data.Longest != nil {
		fmt.Fprintf(&b, ", total duration %.3f seconds, longest ran in %.3f seconds", data.TotalDuration, data.Longest.Duration)
	}
	fmt.Fprintf(&b, ", parsed in %.1f seconds\n", data.ParseSeconds)
	return b.String()
}

func (report OverallReport) HTML(result state.LogResult) string {
	data := report.Data(result).(OverallData)

	var b strings.Builder
	b.WriteString(htmlHeader(report))
	fmt.Fprintf(&b, "%s\n", countOf(data.Queries, "query"))
	fmt.Fprintf(&b, "<br>%s\n", countOf(data.UniqueQueries, "unique query"))
	if data.Longest != nil {
		fmt.Fprintf(&b, "<br>Total query duration was %.2f seconds\n", data.TotalDuration)
		fmt.Fprintf(&b, "<br>Longest query (%s) ran in %.3f seconds\n", highlightSQL(data.Longest.Text), data.Longest.Duration)
		fmt.Fprintf(&b, "<br>Shortest query (%s) ran in %.3f seconds\n", highlightSQL(data.Shortest.Text), data.Shortest.Duration)
	}
	fmt.Fprintf(&b, "<br>Log file parsed in %.1f seconds\n", data.ParseSeconds)
	return b.String()
}

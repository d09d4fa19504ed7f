package reports

import (
	"fmt"
	"html"
	"regexp"

	"github.com/gedex/inflector"

	"github.com/pganalyze/querylog/state"
	"github.com/pganalyze/querylog/util"
)

// Report - One section of the analysis output, computed from a parsed log
type Report interface {
	ReportType() string
	Title() string

	// Applicable is false when the log lacks what the report needs (e.g. durations)
	Applicable(result state.LogResult) bool

	Text(result state.LogResult) string
	HTML(result state.LogResult) string

	// Data is the machine-readable form used by the JSON output
	Data(result state.LogResult) interface{}
}

const (
	OverallReportType      = "overall"
	ByTypeReportType       = "bytype"
	MostTimeReportType     = "mosttime"
	SlowestReportType      = "slowest"
	MostFrequentReportType = "mostfrequent"
	ErrorsReportType       = "errors"
	ParseErrorsReportType  = "parseerrors"
)

// ReportNames - Reports that can be requested by name, in output order
var ReportNames = []string{
	OverallReportType,
	ByTypeReportType,
	MostTimeReportType,
	SlowestReportType,
	MostFrequentReportType,
	ErrorsReportType,
}

// defaultReportNames excludes the errors report
var defaultReportNames = ReportNames[:len(ReportNames)-1]

func IsKnownReport(name string) bool {
	return util.SliceContains(ReportNames, name)
}

// ForNames - Builds the requested reports in their canonical order, followed
// by the parse error report. No names selects the default set.
func ForNames(names []string, top int) []Report {
	if len(names) == 0 {
		names = defaultReportNames
	}

	requested := make(map[string]bool)
	for _, name := range names {
		requested[name] = true
	}

	var reports []Report
	for _, name := range ReportNames {
		if !requested[name] {
			continue
		}
		switch name {
		case OverallReportType:
			reports = append(reports, OverallReport{})
		case ByTypeReportType:
			reports = append(reports, ByTypeReport{})
		case MostTimeReportType:
			reports = append(reports, MostTimeReport{Top: top})
		case SlowestReportType:
			reports = append(reports, SlowestReport{Top: top})
		case MostFrequentReportType:
			reports = append(reports, MostFrequentReport{Top: top})
		case ErrorsReportType:
			reports = append(reports, ErrorsReport{})
		}
	}
	return append(reports, ParseErrorsReport{})
}

func textHeader(report Report) string {
	return "######## " + report.Title() + "\n"
}

func htmlHeader(report Report) string {
	return "<h3>" + html.EscapeString(report.Title()) + "</h3>\n"
}

// countOf - "1 query", "2 queries"
func countOf(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}
	return fmt.Sprintf("%d %s", count, inflector.Pluralize(noun))
}

// percentOf - Whole percent of part in total, 0 for an empty total
func percentOf(part int, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(part)/float64(total)*100.0 + 0.5)
}

func limit(count int, top int) int {
	if top > 0 && count > top {
		return top
	}
	return count
}

var sqlKeywordRegexp = regexp.MustCompile(`\b(?:SELECT|UPDATE|INSERT INTO|DELETE|WHERE|VALUES|FROM|AND|ORDER BY|GROUP BY|LIMIT|OFFSET|DESC|ASC|AS|EXPLAIN|DROP|EXEC|select|update|from|where|explain|drop)\b`)

// highlightSQL - HTML-escapes a statement and marks its keywords
func highlightSQL(text string) string {
	return sqlKeywordRegexp.ReplaceAllString(html.EscapeString(text), "<span class='keyword'>$0</span>")
}

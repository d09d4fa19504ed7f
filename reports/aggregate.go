package reports

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/pganalyze/querylog/state"
)

// Aggregator - Renders a list of reports into one document
type Aggregator interface {
	Aggregate(w io.Writer, result state.LogResult, reports []Report) error
	Name() string
}

// NewAggregator - Looks up the aggregator for an output format
func NewAggregator(format string) (Aggregator, error) {
	switch format {
	case "text":
		return TextAggregator{}, nil
	case "html":
		return HTMLAggregator{GeneratedAt: time.Now()}, nil
	case "json":
		return JSONAggregator{}, nil
	}
	return nil, errors.Errorf("unsupported format %q", format)
}

// TextAggregator - Concatenates the text form of all applicable reports
type TextAggregator struct{}

func (a TextAggregator) Name() string {
	return "text"
}

func (a TextAggregator) Aggregate(w io.Writer, result state.LogResult, reports []Report) error {
	for _, report := range reports {
		if !report.Applicable(result) {
			continue
		}
		if _, err := io.WriteString(w, report.Text(result)); err != nil {
			return errors.Wrapf(err, "could not write %s report", report.ReportType())
		}
	}
	return nil
}

// HTMLAggregator - Standalone page with a table of contents linking each report
type HTMLAggregator struct {
	GeneratedAt time.Time
}

const htmlStyle = `<style type="text/css">
body { background-color:white; }
h2 { text-align:center; }
h3 { color:blue }
p, td, th { font-family:Courier, Arial, Helvetica, sans-serif; font-size:14px; }
th { color:white; background-color:#7B8CBE; }
span.keyword { color:blue; }
</style>
`

func (a HTMLAggregator) Name() string {
	return "html"
}

func (a HTMLAggregator) Aggregate(w io.Writer, result state.LogResult, reports []Report) error {
	title := html.EscapeString(fmt.Sprintf("SQL Query Analysis (generated %s)", a.GeneratedAt.Format(time.RFC1123)))

	page := "<html><head>\n" + htmlStyle
	page += "<title>" + title + "</title></head><body>\n"
	page += "<h2>" + title + "</h2><br>\n"
	if result.Database != "" {
		page += "<h2>Database: " + html.EscapeString(result.Database) + "</h2>\n"
	}
	page += "<hr><center><table><tr><th>Reports</th></tr>"
	for idx, report := range reports {
		if !report.Applicable(result) {
			continue
		}
		page += fmt.Sprintf("<tr><td><a href=\"#report%d\">%s</a></td></tr>", idx, html.EscapeString(report.Title()))
	}
	page += "</table><hr></center>\n"
	for idx, report := range reports {
		if !report.Applicable(result) {
			continue
		}
		page += fmt.Sprintf("<a name=\"report%d\"> </a>", idx)
		page += report.HTML(result)
	}
	page += "</body></html>\n"

	_, err := io.WriteString(w, page)
	return errors.Wrap(err, "could not write html output")
}

// JSONAggregator - One JSON document holding the data of all applicable reports
type JSONAggregator struct{}

type jsonDocument struct {
	RunID     string        `json:"run_id"`
	Dialect   string        `json:"dialect"`
	Database  string        `json:"database,omitempty"`
	LineCount int           `json:"line_count"`
	Reports   []jsonSection `json:"reports"`
}

type jsonSection struct {
	Type  string      `json:"type"`
	Title string      `json:"title"`
	Data  interface{} `json:"data"`
}

func (a JSONAggregator) Name() string {
	return "json"
}

func (a JSONAggregator) Aggregate(w io.Writer, result state.LogResult, reports []Report) error {
	doc := jsonDocument{
		RunID:     result.UUID.String(),
		Dialect:   result.Dialect,
		Database:  result.Database,
		LineCount: result.LineCount,
		Reports:   []jsonSection{},
	}
	for _, report := range reports {
		if !report.Applicable(result) {
			continue
		}
		doc.Reports = append(doc.Reports, jsonSection{Type: report.ReportType(), Title: report.Title(), Data: report.Data(result)})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(doc), "could not write json output")
}

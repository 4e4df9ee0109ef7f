package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

type TableConfig struct {
	CountryWidth int
	StatusWidth  int
	TablesWidth  int
	DetailWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		CountryWidth: 8,
		StatusWidth:  9,
		TablesWidth:  6,
		DetailWidth:  60,
	}
}

// Summary is the outcome of a generate invocation.
type Summary struct {
	Year      int
	OutputDir string
	Runs      []domain.Run
	Elapsed   time.Duration
}

func (s Summary) Count(status domain.RunStatus) int {
	n := 0
	for _, r := range s.Runs {
		if r.Status == status {
			n++
		}
	}
	return n
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(summary Summary) error {
	funcMap := template.FuncMap{
		"formatRow": func(country, status string, tables interface{}, detail string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*v | %-*s |",
				c.config.CountryWidth, country,
				c.config.StatusWidth, status,
				c.config.TablesWidth, tables,
				c.config.DetailWidth, truncate(detail, c.config.DetailWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.CountryWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.TablesWidth+2),
				strings.Repeat("-", c.config.DetailWidth+2))
		},
		"detail":   runDetail,
		"finished": func() domain.RunStatus { return domain.RunStatusFinished },
		"skipped":  func() domain.RunStatus { return domain.RunStatusSkipped },
		"failed":   func() domain.RunStatus { return domain.RunStatusFailed },
	}

	tmpl := `
FTS requirements and funding ({{.Year}})
Output: {{.OutputDir}}
Countries: {{len .Runs}} ({{.Count finished}} finished, {{.Count skipped}} skipped, {{.Count failed}} failed) in {{.Elapsed}}

{{separator}}
{{formatRow "Country" "Status" "Tables" "Detail"}}
{{separator}}
{{range .Runs}}{{formatRow .Country (printf "%s" .Status) (len .Tables) (detail .)}}
{{end}}{{separator}}
`

	t, err := template.New("summary").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, summary)
}

func runDetail(r domain.Run) string {
	if r.Error != nil {
		return *r.Error
	}
	if r.Recommended != "" {
		return "recommended: " + r.Recommended
	}
	return ""
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// HandleRuns lists ledger entries, newest first.
func (c *Reporter) HandleRuns(runs []domain.Run) error {
	tmpl := `{{range .}}
- {{.Country}} {{.Year}} [{{.Status}}] {{.StartedAt.Format "2006-01-02 15:04:05"}} ({{.ID}})
{{- if .Error}}
  error: {{deref .Error}}
{{- end}}
{{- if .Recommended}}
  recommended: {{.Recommended}}
{{- end}}
{{- range .Tables}}
  {{.Name}}: {{.Rows}} rows
{{- end}}
{{else}}No runs recorded.
{{end}}`

	t, err := template.New("runs").Funcs(template.FuncMap{
		"deref": func(s *string) string { return *s },
	}).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, runs)
}

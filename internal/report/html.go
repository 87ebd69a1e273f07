package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
	"github.com/CodexForgeBR/semantic-diff/internal/sidereport"
)

//go:embed report.html.tmpl
var htmlSource string

// timeLayout is how timestamps are shown to people.
const timeLayout = "2006-01-02 15:04:05 MST"

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"riskClass": func(r finding.RiskLevel) string {
		return "risk-" + strings.ToLower(r.String())
	},
}).Parse(htmlSource))

type riskCount struct {
	Level finding.RiskLevel
	Count int
}

type htmlView struct {
	Title     string
	ID        string
	Generated string
	Scope     string
	Overall   finding.RiskLevel
	Counts    []riskCount
	Notice    string
	Findings  []finding.Finding
	Lint      []sidereport.LintIssue
	Audit     []sidereport.AuditIssue
	Review    bool
}

// WriteHTML renders r as a standalone HTML document. All report text is
// escaped by html/template.
func WriteHTML(w io.Writer, r *Report) error {
	counts := r.Counts()
	view := htmlView{
		Title:     r.Title,
		ID:        r.ID.String(),
		Generated: r.GeneratedAt.Format(timeLayout),
		Scope:     r.Scope(),
		Overall:   r.OverallRisk(),
		Notice:    r.Notice,
		Findings:  r.Findings,
		Lint:      r.Lint,
		Audit:     r.Audit,
		Review:    r.NeedsManualReview(),
	}
	for _, lvl := range finding.Levels {
		view.Counts = append(view.Counts, riskCount{Level: lvl, Count: counts[lvl]})
	}

	if err := htmlTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

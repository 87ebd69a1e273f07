package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
	"github.com/CodexForgeBR/semantic-diff/internal/sidereport"
)

type jsonCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	None   int `json:"none"`
}

type jsonReport struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Tool        string                  `json:"tool"`
	ToolVersion string                  `json:"tool_version,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	Mode        Mode                    `json:"mode"`
	Base        string                  `json:"base,omitempty"`
	OverallRisk finding.RiskLevel       `json:"overall_risk"`
	Counts      jsonCounts              `json:"counts"`
	Findings    []finding.Finding       `json:"findings"`
	Lint        []sidereport.LintIssue  `json:"lint"`
	Audit       []sidereport.AuditIssue `json:"audit"`
	Notice      string                  `json:"notice,omitempty"`
}

// WriteJSON renders r as an indented JSON document. Empty lists are written
// as [] rather than null.
func WriteJSON(w io.Writer, r *Report) error {
	counts := r.Counts()
	doc := jsonReport{
		ID:          r.ID.String(),
		Title:       r.Title,
		Tool:        ToolName,
		ToolVersion: r.ToolVersion,
		GeneratedAt: r.GeneratedAt,
		Mode:        r.Mode,
		Base:        r.Base,
		OverallRisk: r.OverallRisk(),
		Counts: jsonCounts{
			High:   counts[finding.High],
			Medium: counts[finding.Medium],
			Low:    counts[finding.Low],
			None:   counts[finding.None],
		},
		Findings: nonNil(r.Findings),
		Lint:     nonNil(r.Lint),
		Audit:    nonNil(r.Audit),
		Notice:   r.Notice,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

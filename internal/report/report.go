// Package report assembles scan results into a Report and renders it.
//
// A Report is built once per run, rendered once to a single sink, and then
// discarded. Supported sinks are HTML, plain text, JSON, SARIF 2.1.0 and
// GitHub Actions workflow annotations.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
	"github.com/CodexForgeBR/semantic-diff/internal/sidereport"
)

// Title is the heading of every rendered report.
const Title = "Semantic Diff Report"

// ToolName identifies the producer in machine-readable formats.
const ToolName = "semantic-diff"

// Mode records where the scanned lines came from.
type Mode string

const (
	ModeDiff  Mode = "diff"
	ModeFiles Mode = "files"
)

// Format is an output format.
type Format string

const (
	FormatHTML  Format = "html"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
	FormatGHA   Format = "gha"
)

// Formats lists every supported format.
var Formats = []Format{FormatHTML, FormatText, FormatJSON, FormatSARIF, FormatGHA}

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown format %q (valid: %s)", s, strings.Join(names, ", "))
}

// DefaultOutput is the output path used for a format when none is configured.
// "-" means standard output.
func DefaultOutput(f Format) string {
	if f == FormatHTML {
		return "diff.html"
	}
	return "-"
}

// Report is everything a renderer needs.
type Report struct {
	ID          uuid.UUID
	Title       string
	ToolVersion string
	GeneratedAt time.Time
	Mode        Mode
	Base        string
	Findings    []finding.Finding
	Lint        []sidereport.LintIssue
	Audit       []sidereport.AuditIssue
	// Notice replaces the findings section when no scan took place,
	// e.g. "No changes detected.".
	Notice string
	// Diff is the raw scanned diff, shown only as a truncated preview.
	Diff string
}

// Options are the inputs to New.
type Options struct {
	ToolVersion string
	Mode        Mode
	Base        string
	Findings    []finding.Finding
	Lint        []sidereport.LintIssue
	Audit       []sidereport.AuditIssue
	Notice      string
	Diff        string
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// New assembles a Report with a fresh id and timestamp.
func New(opts Options) *Report {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return &Report{
		ID:          uuid.New(),
		Title:       Title,
		ToolVersion: opts.ToolVersion,
		GeneratedAt: now(),
		Mode:        opts.Mode,
		Base:        opts.Base,
		Findings:    opts.Findings,
		Lint:        opts.Lint,
		Audit:       opts.Audit,
		Notice:      opts.Notice,
		Diff:        opts.Diff,
	}
}

// OverallRisk is the highest risk among the findings, None when there are none.
func (r *Report) OverallRisk() finding.RiskLevel {
	return finding.MaxRisk(r.Findings)
}

// Counts returns the number of findings per risk level.
func (r *Report) Counts() map[finding.RiskLevel]int {
	return finding.CountByRisk(r.Findings)
}

// NeedsManualReview reports whether the report asks for a manual review.
func (r *Report) NeedsManualReview() bool {
	return r.OverallRisk() == finding.High
}

// Scope describes the scanned input, e.g. "diff against main".
func (r *Report) Scope() string {
	switch r.Mode {
	case ModeDiff:
		return fmt.Sprintf("diff against %s", r.Base)
	case ModeFiles:
		return "configured file list"
	default:
		return string(r.Mode)
	}
}

// RenderOptions tune rendering.
type RenderOptions struct {
	// PreviewChars bounds the diff preview in text output. Zero or less
	// omits the preview.
	PreviewChars int
}

// DefaultPreviewChars is the default diff preview length.
const DefaultPreviewChars = 2000

// Write renders r to w in format f.
func Write(w io.Writer, r *Report, f Format, opts RenderOptions) error {
	switch f {
	case FormatHTML:
		return WriteHTML(w, r)
	case FormatText:
		return WriteText(w, r, opts)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatSARIF:
		return WriteSARIF(w, r)
	case FormatGHA:
		return WriteGHA(w, r)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

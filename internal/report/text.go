package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
)

// textStyles holds the styles of the text renderer. They are bound to the
// destination writer so color is dropped automatically when it is not a
// terminal.
type textStyles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	bold   lipgloss.Style
	notice lipgloss.Style
	risk   map[finding.RiskLevel]lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	re := lipgloss.NewRenderer(w)
	return textStyles{
		title:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")),
		muted:  re.NewStyle().Foreground(lipgloss.Color("#6E7781")),
		bold:   re.NewStyle().Bold(true),
		notice: re.NewStyle().Italic(true),
		risk: map[finding.RiskLevel]lipgloss.Style{
			finding.High:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C")),
			finding.Medium: re.NewStyle().Bold(true).Foreground(lipgloss.Color("#F4D03F")),
			finding.Low:    re.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
			finding.None:   re.NewStyle().Foreground(lipgloss.Color("#6E7781")),
		},
	}
}

// WriteText renders r for a terminal: the overall risk, one bullet per
// finding, side-report totals and a truncated preview of the diff.
func WriteText(w io.Writer, r *Report, opts RenderOptions) error {
	st := newTextStyles(w)
	var b strings.Builder

	fmt.Fprintln(&b, st.title.Render(r.Title))
	fmt.Fprintln(&b, st.muted.Render(fmt.Sprintf("Generated %s, %s", r.GeneratedAt.Format(timeLayout), r.Scope())))
	fmt.Fprintln(&b)

	overall := r.OverallRisk()
	fmt.Fprintf(&b, "%s %s\n", st.bold.Render("Risk level:"), st.risk[overall].Render(overall.String()))

	counts := r.Counts()
	parts := make([]string, 0, len(finding.Levels))
	for _, lvl := range finding.Levels {
		parts = append(parts, fmt.Sprintf("%s %d", lvl, counts[lvl]))
	}
	fmt.Fprintln(&b, st.muted.Render(strings.Join(parts, " | ")))
	fmt.Fprintln(&b)

	if r.Notice != "" {
		fmt.Fprintln(&b, st.notice.Render(r.Notice))
	} else {
		fmt.Fprintln(&b, st.bold.Render(fmt.Sprintf("Findings (%d):", len(r.Findings))))
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "  • %s %s: %s\n", st.risk[f.Risk].Render("["+f.Risk.String()+"]"), f.ChangeType, f.Detail())
			if f.Suggestion != "" {
				fmt.Fprintf(&b, "    %s\n", st.muted.Render("→ "+f.Suggestion))
			}
		}
	}

	if len(r.Lint) > 0 || len(r.Audit) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Lint issues: %d\n", len(r.Lint))
		fmt.Fprintf(&b, "Audit advisories: %d\n", len(r.Audit))
	}

	if r.NeedsManualReview() {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, st.risk[finding.High].Render("High-risk changes detected. Request a manual review before merging."))
	}

	if preview, ok := Preview(r.Diff, opts.PreviewChars); ok {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, st.bold.Render("Diff preview:"))
		// unstyled: lipgloss would pad lines and expand tabs
		fmt.Fprintln(&b, preview)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

// Preview returns the first n characters of s, with "..." appended when s
// was cut. It never splits a multi-byte character. ok is false when there is
// nothing to show.
func Preview(s string, n int) (string, bool) {
	if n <= 0 || strings.TrimSpace(s) == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) <= n {
		return s, true
	}
	i, count := 0, 0
	for i = range s {
		if count == n {
			break
		}
		count++
	}
	return s[:i] + "...", true
}

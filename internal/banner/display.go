// Package banner provides colored banner display functions for the semantic-diff CLI.
//
// All banner functions write to stderr so that a report streamed to stdout
// is never interleaved with status output.
package banner

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
	"github.com/CodexForgeBR/semantic-diff/internal/logging"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════"

// PrintStartupBanner displays what is about to be scanned.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  semantic-diff - Risky Change Scanner
//	═══════════════════════════════════════════════════
//	  Scope:      diff against origin/main
//	  Rules:      9
//	  Format:     html
//	═══════════════════════════════════════════════════
func PrintStartupBanner(scope string, rules int, format string) {
	sep := headerColor(rule)
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, headerColor("  semantic-diff - Risky Change Scanner"))
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintf(os.Stderr, "  Scope:      %s\n", scope)
	fmt.Fprintf(os.Stderr, "  Rules:      %d\n", rules)
	fmt.Fprintf(os.Stderr, "  Format:     %s\n", format)
	fmt.Fprintln(os.Stderr, sep)
}

// PrintSummaryBanner displays the outcome of a scan. The header color follows
// the overall risk: red for High, yellow for Medium, green otherwise.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✗ Overall risk: High
//	  Findings:   3 (High 1 | Medium 1 | Low 1 | None 0)
//	  Report:     diff.html
//	  Duration:   120ms
//	═══════════════════════════════════════════════════
func PrintSummaryBanner(risk finding.RiskLevel, counts map[finding.RiskLevel]int, output string, elapsed time.Duration) {
	paint, mark := successColor, "✓"
	switch risk {
	case finding.High:
		paint, mark = errorColor, "✗"
	case finding.Medium:
		paint, mark = warnColor, "⚠"
	}

	total := 0
	parts := make([]string, 0, len(finding.Levels))
	for _, lvl := range finding.Levels {
		total += counts[lvl]
		parts = append(parts, fmt.Sprintf("%s %d", lvl, counts[lvl]))
	}

	if output == "" || output == "-" {
		output = "stdout"
	}

	sep := paint(rule)
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, paint(fmt.Sprintf("  %s Overall risk: %s", mark, risk)))
	fmt.Fprintf(os.Stderr, "  Findings:   %d (%s)\n", total, strings.Join(parts, " | "))
	fmt.Fprintf(os.Stderr, "  Report:     %s\n", output)
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", logging.FormatDuration(elapsed))
	fmt.Fprintln(os.Stderr, sep)
}

// PrintInterruptedBanner displays when a scan is cut short by a signal.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ⚠ Scan interrupted
//	  Stage:      fetching diff
//	  No report was written
//	═══════════════════════════════════════════════════
func PrintInterruptedBanner(stage string) {
	sep := warnColor(rule)
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, warnColor("  ⚠ Scan interrupted"))
	fmt.Fprintf(os.Stderr, "  Stage:      %s\n", stage)
	fmt.Fprintln(os.Stderr, "  No report was written")
	fmt.Fprintln(os.Stderr, sep)
}

// Package logging provides colored, leveled log output for the semantic-diff CLI.
//
// Every level writes a prefixed, color-coded line to stderr so that reports
// printed on stdout stay machine-readable. Debug output is suppressed unless
// verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// verbose controls whether Debug() produces output.
var verbose bool

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	phasePrefix   = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	verbose = v
}

// Verbose reports whether Debug output is enabled.
func Verbose() bool {
	return verbose
}

// Info prints an informational message in blue.
func Info(msg string) {
	fmt.Fprintln(os.Stderr, infoPrefix("[INFO]")+" "+msg)
}

// Success prints a success message in green.
func Success(msg string) {
	fmt.Fprintln(os.Stderr, successPrefix("[SUCCESS]")+" "+msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	fmt.Fprintln(os.Stderr, warnPrefix("[WARN]")+" "+msg)
}

// Error prints an error message in red.
func Error(msg string) {
	fmt.Fprintln(os.Stderr, errorPrefix("[ERROR]")+" "+msg)
}

// Phase prints a section header in cyan, surrounded by separator lines.
func Phase(msg string) {
	sep := phasePrefix("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, phasePrefix("[PHASE]")+" "+msg)
	fmt.Fprintln(os.Stderr, sep)
}

// Debug prints a debug message in blue, only when verbose mode is enabled.
func Debug(msg string) {
	if !verbose {
		return
	}
	fmt.Fprintln(os.Stderr, debugPrefix("[DEBUG]")+" "+msg)
}

// FormatDuration converts a duration to a short human-readable string.
//
// Examples:
//
//	FormatDuration(0)                       => "0ms"
//	FormatDuration(850 * time.Millisecond)  => "850ms"
//	FormatDuration(1500 * time.Millisecond) => "1.5s"
//	FormatDuration(90 * time.Second)        => "1m 30s"
//	FormatDuration(3661 * time.Second)      => "1h 1m 1s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	seconds := int(d.Seconds())
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// Package scan drives the rule classifier over its two kinds of input: a
// fixed list of files, or the added lines of a unified diff.
//
// Scanning never fails. A source that cannot be read becomes a finding, and so
// does a diff that cannot be parsed.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodexForgeBR/semantic-diff/internal/diffscan"
	"github.com/CodexForgeBR/semantic-diff/internal/finding"
	"github.com/CodexForgeBR/semantic-diff/internal/logging"
	"github.com/CodexForgeBR/semantic-diff/internal/rules"
)

// Default option values.
const (
	DefaultLookahead            = 5
	DefaultLargeChangeThreshold = 10000
)

// Options tunes a Scanner.
type Options struct {
	// Lookahead is the number of following lines handed to the classifier.
	Lookahead int
	// LargeChangeThreshold is the diff size in bytes above which a single
	// Large Change finding is reported. Zero or less disables the check.
	LargeChangeThreshold int
	// Sentinels are file paths that always appear in the report: when one
	// produces no findings, a "No issues found." finding is added for it.
	Sentinels []string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Lookahead:            DefaultLookahead,
		LargeChangeThreshold: DefaultLargeChangeThreshold,
	}
}

// Scanner applies a classifier to files and diffs.
type Scanner struct {
	classifier *rules.Classifier
	opts       Options
	sentinels  map[string]bool
}

// New returns a Scanner using classifier c.
func New(c *rules.Classifier, opts Options) *Scanner {
	if opts.Lookahead < 0 {
		opts.Lookahead = 0
	}
	sentinels := make(map[string]bool, len(opts.Sentinels))
	for _, s := range opts.Sentinels {
		if s = strings.TrimSpace(s); s != "" {
			sentinels[filepath.Clean(s)] = true
		}
	}
	return &Scanner{classifier: c, opts: opts, sentinels: sentinels}
}

// ScanFiles scans every path in order and returns the combined findings.
func (s *Scanner) ScanFiles(paths []string) []finding.Finding {
	var findings []finding.Finding
	for _, p := range paths {
		findings = s.ScanFile(findings, p)
	}
	return findings
}

// ScanFile appends the findings for one file to dst and returns the result.
//
// A path that does not exist yields exactly one Missing File finding. A path
// that exists but cannot be read yields exactly one File Error finding naming
// the cause. Line rules run only on files that were read.
func (s *Scanner) ScanFile(dst []finding.Finding, path string) []finding.Finding {
	start := len(dst)

	data, err := readSource(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logging.Warn(fmt.Sprintf("File not found: %s", path))
		return append(dst, finding.Finding{
			ChangeType: finding.MissingFile,
			Source:     path,
			Message:    "File not found, skipped.",
			Risk:       finding.Medium,
			Suggestion: "Check the configured file list.",
		})
	case err != nil:
		logging.Warn(fmt.Sprintf("Cannot read %s: %v", path, err))
		return append(dst, finding.Finding{
			ChangeType: finding.FileError,
			Source:     path,
			Message:    fmt.Sprintf("Could not read file: %v", err),
			Risk:       finding.High,
			Suggestion: "Check file permissions and encoding.",
		})
	}

	lines := splitLines(string(data))
	for i, text := range lines {
		end := i + 1 + s.opts.Lookahead
		if end > len(lines) {
			end = len(lines)
		}
		var next []string
		if i+1 < end {
			next = lines[i+1 : end]
		}
		dst = s.classifier.Classify(dst, path, i+1, text, next)
	}
	logging.Debug(fmt.Sprintf("Scanned %s: %d line(s), %d finding(s)", path, len(lines), len(dst)-start))

	if s.sentinels[filepath.Clean(path)] && !finding.FromSource(dst[start:], path) {
		dst = append(dst, finding.Finding{
			ChangeType: finding.CodeQuality,
			Source:     path,
			Message:    "No issues found.",
			Risk:       finding.None,
		})
	}
	return dst
}

// DiffResult is the outcome of scanning a diff.
type DiffResult struct {
	Findings []finding.Finding
	Stats    diffscan.Stats
}

// ScanDiff classifies the added lines of a unified diff. A diff longer than
// the large-change threshold gets exactly one Large Change finding ahead of
// the line findings. A diff that cannot be parsed yields a Parse Error
// finding instead of line findings.
func (s *Scanner) ScanDiff(text string) DiffResult {
	var res DiffResult

	if s.opts.LargeChangeThreshold > 0 && len(text) > s.opts.LargeChangeThreshold {
		res.Findings = append(res.Findings, finding.Finding{
			ChangeType: finding.LargeChange,
			Source:     diffscan.BareSource,
			Message: fmt.Sprintf("Diff is %d bytes, above the %d-byte review threshold.",
				len(text), s.opts.LargeChangeThreshold),
			Risk:       finding.Medium,
			Suggestion: "Split the change into smaller, reviewable pieces.",
		})
	}

	lines, stats, err := diffscan.Parse(text, s.opts.Lookahead)
	if err != nil {
		logging.Warn(fmt.Sprintf("Diff could not be parsed: %v", err))
		res.Findings = append(res.Findings, finding.Finding{
			ChangeType: finding.ParseError,
			Source:     diffscan.BareSource,
			Message:    fmt.Sprintf("Diff could not be parsed: %v", err),
			Risk:       finding.Low,
			Suggestion: "Review the change manually.",
		})
		return res
	}
	res.Stats = stats

	for _, l := range lines {
		res.Findings = s.classifier.Classify(res.Findings, l.Source, l.Number, l.Text, l.Lookahead)
	}
	logging.Debug(fmt.Sprintf("Scanned diff: %d file(s), +%d/-%d line(s), %d finding(s)",
		stats.Files, stats.Added, stats.Removed, len(res.Findings)))
	return res
}

func readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return os.ReadFile(path)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

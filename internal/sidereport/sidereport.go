// Package sidereport reads the optional lint and dependency-audit JSON
// documents that are shown next to the findings in a report.
//
// Both inputs are optional. The Load functions never fail: a missing or
// malformed document yields an empty table.
package sidereport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CodexForgeBR/semantic-diff/internal/logging"
)

// LintIssue is one message from an ESLint JSON report.
type LintIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	RuleID   string `json:"rule_id,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// AuditIssue is one advisory from an npm audit JSON report.
type AuditIssue struct {
	Module         string `json:"module"`
	Title          string `json:"title"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation,omitempty"`
}

type eslintFile struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		Line     int    `json:"line"`
		Message  string `json:"message"`
		RuleID   string `json:"ruleId"`
		Severity int    `json:"severity"`
	} `json:"messages"`
}

type npmAudit struct {
	Advisories map[string]struct {
		ModuleName     string `json:"module_name"`
		Title          string `json:"title"`
		Severity       string `json:"severity"`
		Recommendation string `json:"recommendation"`
	} `json:"advisories"`
}

// ParseLint decodes an ESLint JSON report: an array of
// {filePath, messages:[{line, message, ruleId, severity}]}.
func ParseLint(b []byte) ([]LintIssue, error) {
	var files []eslintFile
	if err := json.Unmarshal(b, &files); err != nil {
		return nil, fmt.Errorf("unmarshal lint report: %w", err)
	}

	var out []LintIssue
	for _, f := range files {
		for _, m := range f.Messages {
			out = append(out, LintIssue{
				File:     filepath.ToSlash(f.FilePath),
				Line:     m.Line,
				RuleID:   m.RuleID,
				Severity: eslintSeverity(m.Severity),
				Message:  strings.TrimSpace(m.Message),
			})
		}
	}
	return out, nil
}

// ParseAudit decodes an npm audit JSON report with an advisories map.
// Issues are ordered by advisory id so output is stable.
func ParseAudit(b []byte) ([]AuditIssue, error) {
	var doc npmAudit
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal audit report: %w", err)
	}

	ids := make([]string, 0, len(doc.Advisories))
	for id := range doc.Advisories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]AuditIssue, 0, len(ids))
	for _, id := range ids {
		a := doc.Advisories[id]
		out = append(out, AuditIssue{
			Module:         a.ModuleName,
			Title:          a.Title,
			Severity:       a.Severity,
			Recommendation: a.Recommendation,
		})
	}
	return out, nil
}

// LoadLint reads path with ParseLint. Absence or a parse failure yields nil.
func LoadLint(path string) []LintIssue {
	b, ok := read(path, "lint report")
	if !ok {
		return nil
	}
	issues, err := ParseLint(b)
	if err != nil {
		logging.Warn(fmt.Sprintf("Ignoring lint report %s: %v", path, err))
		return nil
	}
	logging.Debug(fmt.Sprintf("Loaded %d lint issue(s) from %s", len(issues), path))
	return issues
}

// LoadAudit reads path with ParseAudit. Absence or a parse failure yields nil.
func LoadAudit(path string) []AuditIssue {
	b, ok := read(path, "audit report")
	if !ok {
		return nil
	}
	issues, err := ParseAudit(b)
	if err != nil {
		logging.Warn(fmt.Sprintf("Ignoring audit report %s: %v", path, err))
		return nil
	}
	logging.Debug(fmt.Sprintf("Loaded %d advisory(ies) from %s", len(issues), path))
	return issues
}

func read(path, what string) ([]byte, bool) {
	if path == "" {
		return nil, false
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug(fmt.Sprintf("No %s at %s", what, path))
		} else {
			logging.Warn(fmt.Sprintf("Cannot read %s %s: %v", what, path, err))
		}
		return nil, false
	}
	return b, true
}

func eslintSeverity(s int) string {
	switch s {
	case 2:
		return "error"
	case 1:
		return "warning"
	default:
		return "off"
	}
}

// Package finding defines the flat record every scanner rule produces and the
// ordinal risk scale used to summarize a report.
package finding

import (
	"fmt"
	"strings"
)

// RiskLevel is an ordinal severity. The zero value is None.
type RiskLevel int

const (
	None RiskLevel = iota
	Low
	Medium
	High
)

// Levels lists every risk level from highest to lowest, the order used by
// summaries.
var Levels = []RiskLevel{High, Medium, Low, None}

func (r RiskLevel) String() string {
	switch r {
	case None:
		return "None"
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
}

// ParseRiskLevel accepts a level name in any case.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return None, fmt.Errorf("unknown risk level %q", s)
	}
}

// MarshalText encodes the level by name so JSON output reads "High" rather than 3.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (r *RiskLevel) UnmarshalText(b []byte) error {
	lvl, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}

// Change type tags.
const (
	SecurityIssue        = "Security Issue"
	LogicalBug           = "Logical Bug"
	DebugCode            = "Debug Code"
	ErrorHandling        = "Error Handling"
	DestructiveOperation = "Destructive Operation"
	UnsafeFunction       = "Unsafe Function"
	LargeChange          = "Large Change"
	FileError            = "File Error"
	MissingFile          = "Missing File"
	CodeQuality          = "Code Quality"
	MisleadingComment    = "Misleading Comment"
	ParseError           = "Parse Error"
)

// Finding is one reported issue. Values are never modified after creation;
// pass them by value.
type Finding struct {
	RuleID     string    `json:"rule_id,omitempty"`
	ChangeType string    `json:"change_type"`
	Source     string    `json:"source"`
	Line       int       `json:"line,omitempty"` // 0 for findings about a whole source
	Message    string    `json:"message"`
	Risk       RiskLevel `json:"risk_level"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Detail renders the location-qualified message shown in reports, e.g.
// "src/app.js (line 12): Insecure HTTP URL used."
func (f Finding) Detail() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", f.Source, f.Line, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Source, f.Message)
}

// MaxRisk returns the highest risk among findings, or None when there are none.
func MaxRisk(findings []Finding) RiskLevel {
	max := None
	for _, f := range findings {
		if f.Risk > max {
			max = f.Risk
		}
	}
	return max
}

// CountByRisk tallies findings per level. Every level is present in the result.
func CountByRisk(findings []Finding) map[RiskLevel]int {
	counts := make(map[RiskLevel]int, len(Levels))
	for _, lvl := range Levels {
		counts[lvl] = 0
	}
	for _, f := range findings {
		counts[f.Risk]++
	}
	return counts
}

// FromSource reports whether any finding refers to source.
func FromSource(findings []Finding, source string) bool {
	for _, f := range findings {
		if f.Source == source {
			return true
		}
	}
	return false
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Results           []sarifResult          `json:"results"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	ShortDescription sarifMessage  `json:"shortDescription"`
	Help             *sarifMessage `json:"help,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// WriteSARIF renders r as a SARIF 2.1.0 log with a single run. The run's
// automationDetails.guid is the report id.
func WriteSARIF(w io.Writer, r *Report) error {
	results := make([]sarifResult, 0, len(r.Findings))
	rules := map[string]sarifRule{}

	for _, f := range r.Findings {
		id := ruleID(f)
		if _, ok := rules[id]; !ok {
			rule := sarifRule{
				ID:               id,
				Name:             f.ChangeType,
				ShortDescription: sarifMessage{Text: f.ChangeType},
			}
			if f.Suggestion != "" {
				rule.Help = &sarifMessage{Text: f.Suggestion}
			}
			rules[id] = rule
		}

		uri := filepath.ToSlash(f.Source)
		if strings.TrimSpace(uri) == "" {
			uri = "UNKNOWN"
		}
		start := f.Line
		if start <= 0 {
			start = 1
		}

		results = append(results, sarifResult{
			RuleID:  id,
			Level:   sarifLevel(f.Risk),
			Message: sarifMessage{Text: strings.TrimSpace(f.Message)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           sarifRegion{StartLine: start},
				},
			}},
		})
	}

	driverRules := make([]sarifRule, 0, len(rules))
	for _, rule := range rules {
		driverRules = append(driverRules, rule)
	}
	sort.Slice(driverRules, func(i, j int) bool { return driverRules[i].ID < driverRules[j].ID })

	log := sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    ToolName,
				Version: r.ToolVersion,
				Rules:   driverRules,
			}},
			AutomationDetails: sarifAutomationDetails{GUID: r.ID.String()},
			Results:           results,
		}},
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	return nil
}

// ruleID falls back to a slug of the change type for findings that do not
// come from a table rule, e.g. "Missing File" becomes "missing-file".
func ruleID(f finding.Finding) string {
	if f.RuleID != "" {
		return f.RuleID
	}
	return strings.ReplaceAll(strings.ToLower(f.ChangeType), " ", "-")
}

func sarifLevel(r finding.RiskLevel) string {
	switch r {
	case finding.High:
		return "error"
	case finding.Medium:
		return "warning"
	default:
		return "note"
	}
}

// Package rules holds the detection rule table and the classifier that
// evaluates it line by line.
//
// The built-in table is embedded from rules.yaml so it ships with the binary.
// Additional rules can be loaded from a file with the same schema; a rule whose
// id matches a built-in replaces it.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
)

//go:embed rules.yaml
var builtinRules []byte

// Definition is the on-disk form of a rule.
type Definition struct {
	ID           string `yaml:"id"`
	ChangeType   string `yaml:"change_type"`
	Risk         string `yaml:"risk"`
	Message      string `yaml:"message"`
	Suggestion   string `yaml:"suggestion"`
	Pattern      string `yaml:"pattern"`
	SkipComments bool   `yaml:"skip_comments"`
	UnlessNearby string `yaml:"unless_nearby"`
}

type ruleFile struct {
	Rules []Definition `yaml:"rules"`
}

// Rule is a compiled Definition.
type Rule struct {
	Definition
	risk    finding.RiskLevel
	pattern *regexp.Regexp
	unless  *regexp.Regexp
}

// Risk returns the parsed risk level.
func (r Rule) Risk() finding.RiskLevel {
	return r.risk
}

// Builtin returns the compiled embedded rule table.
func Builtin() ([]Rule, error) {
	rules, err := Parse(builtinRules)
	if err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	return rules, nil
}

// LoadFile reads and compiles a rule file.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Parse decodes a YAML rule document and compiles every rule. Rule ids must
// be unique within the document.
func Parse(data []byte) ([]Rule, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}

	seen := make(map[string]bool, len(doc.Rules))
	rules := make([]Rule, 0, len(doc.Rules))
	for i, def := range doc.Rules {
		r, err := Compile(def)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		rules = append(rules, r)
	}
	return rules, nil
}

// Compile validates a Definition and compiles its expressions.
func Compile(def Definition) (Rule, error) {
	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		return Rule{}, fmt.Errorf("missing id")
	}
	if strings.TrimSpace(def.ChangeType) == "" {
		return Rule{}, fmt.Errorf("%s: missing change_type", def.ID)
	}
	if def.Pattern == "" {
		return Rule{}, fmt.Errorf("%s: missing pattern", def.ID)
	}

	risk, err := finding.ParseRiskLevel(def.Risk)
	if err != nil {
		return Rule{}, fmt.Errorf("%s: %w", def.ID, err)
	}
	pattern, err := regexp.Compile(def.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("%s: compile pattern: %w", def.ID, err)
	}

	r := Rule{Definition: def, risk: risk, pattern: pattern}
	if def.UnlessNearby != "" {
		r.unless, err = regexp.Compile(def.UnlessNearby)
		if err != nil {
			return Rule{}, fmt.Errorf("%s: compile unless_nearby: %w", def.ID, err)
		}
	}
	return r, nil
}

// Merge appends extra to base. A rule in extra whose id already exists in
// base replaces the base rule in place.
func Merge(base, extra []Rule) []Rule {
	out := make([]Rule, len(base), len(base)+len(extra))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.ID] = i
	}
	for _, r := range extra {
		if i, ok := index[r.ID]; ok {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// Disable drops rules whose id is listed in ids. Unknown ids are ignored.
func Disable(rules []Rule, ids []string) []Rule {
	if len(ids) == 0 {
		return rules
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[strings.TrimSpace(id)] = true
	}

	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !drop[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Package config defines the semantic-diff configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < environment < CLI flag overrides.
package config

import (
	"fmt"
	"strings"
)

// WhitelistedVars lists every configuration variable name that may appear in
// config files. Variables not in this list are silently ignored during loading.
var WhitelistedVars = [14]string{
	"BASE_BRANCH",
	"TARGET_FILES",
	"SENTINEL_FILES",
	"LINT_REPORT",
	"AUDIT_REPORT",
	"FORMAT",
	"OUTPUT_FILE",
	"LARGE_CHANGE_THRESHOLD",
	"LOOKAHEAD_LINES",
	"PREVIEW_CHARS",
	"RULES_FILE",
	"DISABLED_RULES",
	"REPO_DIR",
	"VERBOSE",
}

// ProjectFile is the name of the per-repository config file.
const ProjectFile = ".semantic-diff.conf"

// Config holds every configuration field for the semantic-diff CLI.
type Config struct {
	// Input selection. An empty TargetFiles list means diff mode.
	BaseBranch    string
	TargetFiles   []string
	SentinelFiles []string
	RepoDir       string

	// Side reports.
	LintReport  string
	AuditReport string

	// Output.
	Format       string
	OutputFile   string
	PreviewChars int

	// Scanning.
	LargeChangeThreshold int
	LookaheadLines       int
	RulesFile            string
	DisabledRules        []string

	// Runtime flags.
	Verbose bool

	// CLI-only flags (not loaded from config files).
	ConfigFile string
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		BaseBranch:           "main",
		RepoDir:              ".",
		LintReport:           "eslint-report.json",
		AuditReport:          "npm-audit.json",
		Format:               "html",
		PreviewChars:         2000,
		LargeChangeThreshold: 10000,
		LookaheadLines:       5,
	}
}

// DiffMode reports whether the configuration scans a diff rather than a
// fixed file list.
func (c *Config) DiffMode() bool {
	return len(c.TargetFiles) == 0
}

// Validate checks numeric bounds and the base reference. The output format
// is checked where it is resolved.
func (c *Config) Validate() error {
	if c.DiffMode() && strings.TrimSpace(c.BaseBranch) == "" {
		return fmt.Errorf("BASE_BRANCH cannot be empty in diff mode")
	}
	if c.LargeChangeThreshold < 0 {
		return fmt.Errorf("LARGE_CHANGE_THRESHOLD must be >= 0, got %d", c.LargeChangeThreshold)
	}
	if c.LookaheadLines < 0 {
		return fmt.Errorf("LOOKAHEAD_LINES must be >= 0, got %d", c.LookaheadLines)
	}
	if c.PreviewChars < 0 {
		return fmt.Errorf("PREVIEW_CHARS must be >= 0, got %d", c.PreviewChars)
	}
	return nil
}

// Package cli provides flag binding and validation for the semantic-diff CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/semantic-diff/internal/config"
	"github.com/CodexForgeBR/semantic-diff/internal/report"
)

// BindFlags registers all CLI flags on the given cobra command.
// The flags directly modify fields in the provided config pointer.
// Call ValidateFlags after parsing to check flag values.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// Input
	flags.StringVar(&cfg.BaseBranch, "base", cfg.BaseBranch, "Base reference to diff against")
	flags.StringSliceVar(&cfg.TargetFiles, "files", nil, "Scan these files instead of a diff (comma-separated)")
	flags.StringSliceVar(&cfg.SentinelFiles, "sentinel", nil, "Files that always get a report row (comma-separated)")
	flags.StringVarP(&cfg.RepoDir, "dir", "C", cfg.RepoDir, "Repository working directory")

	// Side reports
	flags.StringVar(&cfg.LintReport, "lint-report", cfg.LintReport, "ESLint JSON report to include")
	flags.StringVar(&cfg.AuditReport, "audit-report", cfg.AuditReport, "npm audit JSON report to include")

	// Output
	flags.StringVar(&cfg.Format, "format", cfg.Format, "Output format: html, text, json, sarif or gha")
	flags.StringVarP(&cfg.OutputFile, "output", "o", "", "Output file, - for stdout (default: diff.html for html, stdout otherwise)")
	flags.IntVar(&cfg.PreviewChars, "preview-chars", cfg.PreviewChars, "Diff preview length in text output, 0 to omit")

	// Rules
	flags.IntVar(&cfg.LargeChangeThreshold, "large-change-threshold", cfg.LargeChangeThreshold, "Diff size in bytes that triggers a Large Change finding, 0 to disable")
	flags.IntVar(&cfg.LookaheadLines, "lookahead", cfg.LookaheadLines, "Lines searched for error handling after a network call")
	flags.StringVar(&cfg.RulesFile, "rules", "", "YAML file with additional rules")
	flags.StringSliceVar(&cfg.DisabledRules, "disable-rule", nil, "Rule ids to disable (repeatable)")

	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")

	// Feature Toggles
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")
}

// ValidateFlags checks flag values after parsing.
// Must be called after cmd.Execute() or cmd.ParseFlags().
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	// --config must exist if provided
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}

	// --rules must exist if provided; relative paths are read from --dir
	if cmd.Flags().Changed("rules") && cfg.RulesFile != "" {
		path := cfg.RulesFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.RepoDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("--rules: %w", err)
		}
	}

	if cmd.Flags().Changed("format") {
		if _, err := report.ParseFormat(cfg.Format); err != nil {
			return fmt.Errorf("--format: %w", err)
		}
	}

	if cmd.Flags().Changed("base") && strings.TrimSpace(cfg.BaseBranch) == "" {
		return fmt.Errorf("--base cannot be empty")
	}

	nonNegative := map[string]int{
		"preview-chars":          cfg.PreviewChars,
		"large-change-threshold": cfg.LargeChangeThreshold,
		"lookahead":              cfg.LookaheadLines,
	}
	for flag, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("--%s must be >= 0, got: %d", flag, v)
		}
	}

	return nil
}

// BuildOverrides creates a map of CLI flag overrides from the config.
// Uses cmd.Flags().Changed() to only include flags explicitly set by the user,
// ensuring config file values are not accidentally overridden by default values.
// Positional arguments are appended to the --files list.
func BuildOverrides(cmd *cobra.Command, cfg *config.Config, args []string) map[string]string {
	overrides := make(map[string]string)

	// String flags: only include if explicitly set via CLI
	stringFlags := map[string]struct {
		key string
		val string
	}{
		"base":         {"BASE_BRANCH", cfg.BaseBranch},
		"dir":          {"REPO_DIR", cfg.RepoDir},
		"lint-report":  {"LINT_REPORT", cfg.LintReport},
		"audit-report": {"AUDIT_REPORT", cfg.AuditReport},
		"format":       {"FORMAT", cfg.Format},
		"output":       {"OUTPUT_FILE", cfg.OutputFile},
		"rules":        {"RULES_FILE", cfg.RulesFile},
	}
	for flag, mapping := range stringFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	// Int flags
	intFlags := map[string]struct {
		key string
		val int
	}{
		"preview-chars":          {"PREVIEW_CHARS", cfg.PreviewChars},
		"large-change-threshold": {"LARGE_CHANGE_THRESHOLD", cfg.LargeChangeThreshold},
		"lookahead":              {"LOOKAHEAD_LINES", cfg.LookaheadLines},
	}
	for flag, mapping := range intFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = strconv.Itoa(mapping.val)
		}
	}

	// List flags
	listFlags := map[string]struct {
		key string
		val []string
	}{
		"sentinel":     {"SENTINEL_FILES", cfg.SentinelFiles},
		"disable-rule": {"DISABLED_RULES", cfg.DisabledRules},
	}
	for flag, mapping := range listFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = strings.Join(mapping.val, ",")
		}
	}

	if cmd.Flags().Changed("files") || len(args) > 0 {
		var files []string
		if cmd.Flags().Changed("files") {
			files = append(files, cfg.TargetFiles...)
		}
		files = append(files, args...)
		overrides["TARGET_FILES"] = strings.Join(files, ",")
	}

	// Bool flags
	if cmd.Flags().Changed("verbose") {
		overrides["VERBOSE"] = strconv.FormatBool(cfg.Verbose)
	}

	return overrides
}

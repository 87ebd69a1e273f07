package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvPrefix prefixes the environment form of every whitelisted variable,
// e.g. SEMANTIC_DIFF_FORMAT.
const EnvPrefix = "SEMANTIC_DIFF_"

// whitelistSet is a precomputed lookup table for fast whitelist membership checks.
var whitelistSet map[string]bool

func init() {
	whitelistSet = make(map[string]bool, len(WhitelistedVars))
	for _, v := range WhitelistedVars {
		whitelistSet[v] = true
	}
}

// GlobalPath returns the per-user config file location, or "" when the user
// config directory cannot be determined.
func GlobalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "semantic-diff", "config")
}

// LoadFile parses a KEY=VALUE config file at the given path.
//
// Lines are processed according to these rules:
//   - Empty lines and lines starting with # are skipped.
//   - Lines without an = sign are skipped.
//   - Leading and trailing whitespace is trimmed from both key and value.
//   - Keys not present in WhitelistedVars are silently ignored.
//
// Returns a map of whitelisted key-value pairs, or an error if the file
// cannot be opened.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first '=' only.
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := unquote(strings.TrimSpace(line[idx+1:]))

		if !whitelistSet[key] {
			continue
		}

		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return result, nil
}

// EnvOverrides collects configuration from the environment through lookup
// (os.LookupEnv in production).
//
// Every whitelisted key is read from its EnvPrefix form. The base branch is
// additionally taken from BASE_BRANCH, or from GITHUB_BASE_REF as set on
// pull_request workflows, when the prefixed form is absent.
func EnvOverrides(lookup func(string) (string, bool)) map[string]string {
	result := make(map[string]string)
	for _, key := range WhitelistedVars {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			result[key] = strings.TrimSpace(v)
		}
	}

	if _, ok := result["BASE_BRANCH"]; !ok {
		for _, name := range []string{"BASE_BRANCH", "GITHUB_BASE_REF"} {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				result["BASE_BRANCH"] = strings.TrimSpace(v)
				break
			}
		}
	}
	return result
}

// LoadWithPrecedence assembles a Config by merging sources in order of
// increasing priority:
//
//  1. Built-in defaults
//  2. Global config file (globalPath)
//  3. Project config file (projectPath)
//  4. Explicit config file (explicitPath)
//  5. Environment (env map, see EnvOverrides)
//  6. CLI overrides (cliOverrides map)
//
// Any path that is empty is silently skipped. Missing global and project
// files are not errors; a missing explicit file is.
func LoadWithPrecedence(globalPath, projectPath, explicitPath string, env, cliOverrides map[string]string) (*Config, error) {
	cfg := NewDefaultConfig()

	// Layer 2: global config file.
	if globalPath != "" {
		m, err := LoadFile(globalPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("global config: %w", err)
			}
			// Missing global config is not an error.
		} else {
			ApplyMapToConfig(cfg, m)
		}
	}

	// Layer 3: project config file.
	if projectPath != "" {
		m, err := LoadFile(projectPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("project config: %w", err)
			}
		} else {
			ApplyMapToConfig(cfg, m)
		}
	}

	// Layer 4: explicit config file (must exist if specified).
	if explicitPath != "" {
		m, err := LoadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("explicit config: %w", err)
		}
		ApplyMapToConfig(cfg, m)
	}

	// Layer 5: environment.
	if len(env) > 0 {
		ApplyMapToConfig(cfg, env)
	}

	// Layer 6: CLI overrides (highest priority).
	if len(cliOverrides) > 0 {
		ApplyMapToConfig(cfg, cliOverrides)
	}

	return cfg, nil
}

// ApplyMapToConfig sets fields on cfg from the key-value pairs in m.
// Keys must use the WhitelistedVars naming convention (e.g., "BASE_BRANCH").
// Unknown keys are silently ignored. Integer fields that fail to parse
// are silently ignored (the previous value is preserved).
func ApplyMapToConfig(cfg *Config, m map[string]string) {
	for key, value := range m {
		switch key {
		case "BASE_BRANCH":
			cfg.BaseBranch = value
		case "TARGET_FILES":
			cfg.TargetFiles = SplitList(value)
		case "SENTINEL_FILES":
			cfg.SentinelFiles = SplitList(value)
		case "LINT_REPORT":
			cfg.LintReport = value
		case "AUDIT_REPORT":
			cfg.AuditReport = value
		case "FORMAT":
			cfg.Format = strings.ToLower(value)
		case "OUTPUT_FILE":
			cfg.OutputFile = value
		case "LARGE_CHANGE_THRESHOLD":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.LargeChangeThreshold = v
			}
		case "LOOKAHEAD_LINES":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.LookaheadLines = v
			}
		case "PREVIEW_CHARS":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.PreviewChars = v
			}
		case "RULES_FILE":
			cfg.RulesFile = value
		case "DISABLED_RULES":
			cfg.DisabledRules = SplitList(value)
		case "REPO_DIR":
			cfg.RepoDir = value
		case "VERBOSE":
			cfg.Verbose = parseBool(value)
		}
	}
}

// SplitList splits a comma-separated value, trimming entries and dropping
// empty ones. It returns nil when nothing remains.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBool interprets common boolean representations.
// "true", "1", "yes" (case-insensitive) return true; everything else returns false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// unquote strips one pair of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

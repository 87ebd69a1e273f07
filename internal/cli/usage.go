// Package cli provides help text and usage formatting for the semantic-diff CLI.
package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `semantic-diff - Scan a diff or a file list for risky changes and report them

USAGE
  semantic-diff [files...] [flags]

  Without files, the checkout is diffed against the base reference and only
  added lines are scanned.

FLAGS
  Input:
    --base <ref>                           Base reference to diff against (default: main)
    --files <a,b,...>                      Scan these files instead of a diff
    --sentinel <a,b,...>                   Files that always get a report row
    -C, --dir <path>                       Repository working directory (default: .)

  Side Reports:
    --lint-report <path>                   ESLint JSON report (default: eslint-report.json)
    --audit-report <path>                  npm audit JSON report (default: npm-audit.json)

  Output:
    --format <html|text|json|sarif|gha>    Output format (default: html)
    -o, --output <path>                    Output file, - for stdout (default: diff.html for html, stdout otherwise)
    --preview-chars <int>                  Diff preview length in text output (default: 2000)

  Rules:
    --large-change-threshold <int>         Diff size in bytes for a Large Change finding (default: 10000)
    --lookahead <int>                      Lines searched for error handling after a network call (default: 5)
    --rules <path>                         YAML file with additional rules
    --disable-rule <id>                    Rule id to disable (repeatable)

  Configuration:
    --config <path>                        Path to additional config file
    -v, --verbose                          Enable debug logging

  Help & Version:
    -h, --help                             Show this help text
    --version                              Show version, commit, build date

CONFIGURATION
  Values are merged in this order, later sources winning:
    defaults, ~/.config/semantic-diff/config, .semantic-diff.conf,
    --config file, environment, flags.
  Files use KEY=VALUE lines. Every key can also be set in the environment
  as SEMANTIC_DIFF_<KEY>. BASE_BRANCH and GITHUB_BASE_REF are honored too.

EXIT CODES
  0   Success              Report written (findings do not change the exit code)
  1   Error                Invalid arguments, misconfiguration, report not writable
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Diff against main and write diff.html
  semantic-diff

  # Diff against the pull request base and print annotations
  semantic-diff --base origin/main --format gha

  # Scan a fixed list of files and print a text summary
  semantic-diff src/App.jsx src/pages/Login.jsx --format text

  # Export SARIF for code scanning
  semantic-diff --format sarif -o semantic-diff.sarif

For more information, see: https://github.com/CodexForgeBR/semantic-diff
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}

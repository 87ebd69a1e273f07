package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/semantic-diff/internal/banner"
	"github.com/CodexForgeBR/semantic-diff/internal/cli"
	"github.com/CodexForgeBR/semantic-diff/internal/config"
	"github.com/CodexForgeBR/semantic-diff/internal/exitcode"
	"github.com/CodexForgeBR/semantic-diff/internal/logging"
	"github.com/CodexForgeBR/semantic-diff/internal/report"
	"github.com/CodexForgeBR/semantic-diff/internal/rules"
	"github.com/CodexForgeBR/semantic-diff/internal/scan"
	"github.com/CodexForgeBR/semantic-diff/internal/sidereport"
	sighandler "github.com/CodexForgeBR/semantic-diff/internal/signal"
	"github.com/CodexForgeBR/semantic-diff/internal/vcs"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	err := newRootCmd(os.Stdout).Execute()
	os.Exit(exitCode(err))
}

// exitCode maps the result of a run to the process exit code. Interruptions
// are reported by the banner, so only other errors are logged here.
func exitCode(err error) int {
	code := exitcode.Success
	switch {
	case err == nil:
	case errors.Is(err, sighandler.ErrInterrupted):
		code = exitcode.Interrupted
	default:
		logging.Error(err.Error())
		code = exitcode.Error
	}
	logging.Debug(fmt.Sprintf("Exit %d (%s)", code, exitcode.Name(code)))
	return code
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	cfg := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:     "semantic-diff [files...]",
		Short:   "Scan a diff or a file list for risky changes",
		Long:    "semantic-diff scans the added lines of a git diff, or a configured list of files, for risky patterns and writes a risk report.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate flags after parsing
			if err := cli.ValidateFlags(cmd, cfg); err != nil {
				return err
			}
			return runScan(cmd, cfg, args, stdout)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Bind all CLI flags to the config
	cli.BindFlags(rootCmd, cfg)

	// Set custom help template
	cli.SetCustomHelp(rootCmd)

	return rootCmd
}

func runScan(cmd *cobra.Command, flagCfg *config.Config, args []string, stdout io.Writer) error {
	start := time.Now()

	// CLI flags are already bound to flagCfg, now load the file and env layers.
	// The project file lives in the directory being scanned.
	projectConfigPath := filepath.Join(flagCfg.RepoDir, config.ProjectFile)
	cfg, err := config.LoadWithPrecedence(
		config.GlobalPath(),
		projectConfigPath,
		flagCfg.ConfigFile,
		config.EnvOverrides(os.LookupEnv),
		cli.BuildOverrides(cmd, flagCfg, args),
	)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ConfigFile = flagCfg.ConfigFile

	logging.SetVerbose(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return err
	}
	logging.Debug(fmt.Sprintf("Loaded %d rules", len(classifier.Rules())))

	scanOpts := scan.DefaultOptions()
	scanOpts.Lookahead = cfg.LookaheadLines
	scanOpts.LargeChangeThreshold = cfg.LargeChangeThreshold
	scanOpts.Sentinels = resolvePaths(cfg.RepoDir, cfg.SentinelFiles)
	scanner := scan.New(classifier, scanOpts)

	opts := report.Options{
		ToolVersion: version,
		Base:        cfg.BaseBranch,
	}

	if cfg.DiffMode() {
		opts.Mode = report.ModeDiff
		banner.PrintStartupBanner(fmt.Sprintf("diff against %s", cfg.BaseBranch), len(classifier.Rules()), string(format))
		if logging.Verbose() {
			logging.Phase("Fetching diff")
		}
		logging.Info(fmt.Sprintf("Diffing %s against %s", cfg.RepoDir, cfg.BaseBranch))

		ctx, stop := sighandler.Notify(cmd.Context(), func(s os.Signal) {
			logging.Warn(fmt.Sprintf("Received %s, stopping git diff", s))
		})
		defer stop()

		git := &vcs.Git{Dir: cfg.RepoDir}
		text, err := git.Diff(ctx, cfg.BaseBranch)
		if sighandler.Interrupted(ctx) {
			banner.PrintInterruptedBanner("fetching diff")
			return sighandler.ErrInterrupted
		}

		switch {
		case err != nil:
			logging.Warn(err.Error())
			opts.Notice = fmt.Sprintf("Could not retrieve diff against %s: %s", cfg.BaseBranch, oneLine(err))
		case strings.TrimSpace(text) == "":
			opts.Notice = "No changes detected."
		default:
			if logging.Verbose() {
				logging.Phase("Scanning diff")
			}
			res := scanner.ScanDiff(text)
			logging.Info(fmt.Sprintf("Scanned %d added line(s) in %d file(s) from the diff", res.Stats.Added, res.Stats.Files))
			opts.Findings = res.Findings
			opts.Diff = text
		}
	} else {
		opts.Mode = report.ModeFiles
		banner.PrintStartupBanner("configured file list", len(classifier.Rules()), string(format))
		if logging.Verbose() {
			logging.Phase("Scanning files")
		}
		paths := resolvePaths(cfg.RepoDir, cfg.TargetFiles)
		logging.Info(fmt.Sprintf("Scanning %d configured file(s)", len(paths)))
		opts.Findings = scanner.ScanFiles(paths)
	}

	opts.Lint = sidereport.LoadLint(resolvePath(cfg.RepoDir, cfg.LintReport))
	opts.Audit = sidereport.LoadAudit(resolvePath(cfg.RepoDir, cfg.AuditReport))

	r := report.New(opts)

	output := cfg.OutputFile
	if output == "" {
		output = report.DefaultOutput(format)
	}
	if err := writeReport(stdout, output, r, format, report.RenderOptions{PreviewChars: cfg.PreviewChars}); err != nil {
		return err
	}

	if output != "-" {
		logging.Success(fmt.Sprintf("Report written to %s", output))
	}
	banner.PrintSummaryBanner(r.OverallRisk(), r.Counts(), output, time.Since(start))
	if r.NeedsManualReview() {
		logging.Warn("High-risk changes detected. Request a manual review before merging.")
	}
	return nil
}

// buildClassifier compiles the embedded rule table, appends the user rule
// file when configured and removes disabled rule ids.
func buildClassifier(cfg *config.Config) (*rules.Classifier, error) {
	table, err := rules.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.RulesFile != "" {
		path := resolvePath(cfg.RepoDir, cfg.RulesFile)
		extra, err := rules.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("rules file %s: %w", path, err)
		}
		table = rules.Merge(table, extra)
	}
	table = rules.Disable(table, cfg.DisabledRules)
	return rules.NewClassifier(table), nil
}

// writeReport renders r to output, where "-" means stdout.
func writeReport(stdout io.Writer, output string, r *report.Report, format report.Format, opts report.RenderOptions) error {
	if output == "-" {
		return report.Write(stdout, r, format, opts)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, r, format, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

// resolvePath anchors a relative path at the repository directory.
func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func resolvePaths(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(dir, p))
	}
	return out
}

// oneLine folds a multi-line error, such as one carrying git's stderr, onto a
// single line for the report notice.
func oneLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}

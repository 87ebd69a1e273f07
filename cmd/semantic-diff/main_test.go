package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/semantic-diff/internal/exitcode"
	"github.com/CodexForgeBR/semantic-diff/internal/logging"
	sighandler "github.com/CodexForgeBR/semantic-diff/internal/signal"
)

func init() {
	color.NoColor = true
}

type jsonDoc struct {
	Mode        string `json:"mode"`
	OverallRisk string `json:"overall_risk"`
	Notice      string `json:"notice"`
	Findings    []struct {
		RuleID     string `json:"rule_id"`
		ChangeType string `json:"change_type"`
		Source     string `json:"source"`
		Line       int    `json:"line"`
		Risk       string `json:"risk_level"`
	} `json:"findings"`
	Lint []struct {
		RuleID string `json:"rule_id"`
	} `json:"lint"`
}

// isolate keeps the user's global config and environment out of the run.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BASE_BRANCH", "")
	t.Setenv("GITHUB_BASE_REF", "")
	for _, key := range []string{"FORMAT", "OUTPUT_FILE", "TARGET_FILES", "BASE_BRANCH", "REPO_DIR", "DISABLED_RULES", "RULES_FILE"} {
		t.Setenv("SEMANTIC_DIFF_"+key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// captureStderr captures stderr output produced by fn.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stderr = old
	return <-outC
}

func decode(t *testing.T, out string) jsonDoc {
	t.Helper()
	var doc jsonDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestRun_FileModeJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "src/app.js", "const a = 1;\nconsole.log(a);\n")

	out, err := execute(t, "-C", dir, "--format", "json", "src/app.js")
	require.NoError(t, err)

	doc := decode(t, out)
	assert.Equal(t, "files", doc.Mode)
	assert.Equal(t, "Medium", doc.OverallRisk)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "debug-statement", doc.Findings[0].RuleID)
	assert.Equal(t, filepath.Join(dir, "src", "app.js"), doc.Findings[0].Source)
	assert.Equal(t, 2, doc.Findings[0].Line)
}

func TestRun_MissingFileIsAFinding(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := execute(t, "-C", dir, "--format", "json", "--files", "gone.js")
	require.NoError(t, err, "a missing source does not fail the run")

	doc := decode(t, out)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "Missing File", doc.Findings[0].ChangeType)
	assert.Equal(t, "Medium", doc.Findings[0].Risk)
}

func TestRun_DisabledRule(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "console.log(1);\n")

	out, err := execute(t, "-C", dir, "--format", "json", "--disable-rule", "debug-statement", "app.js")
	require.NoError(t, err)

	doc := decode(t, out)
	assert.Empty(t, doc.Findings)
	assert.Equal(t, "None", doc.OverallRisk)
}

func TestRun_Sentinel(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "src/pages/Dashboard.jsx", "export default function Dashboard() {}\n")

	out, err := execute(t, "-C", dir, "--format", "json",
		"--sentinel", "src/pages/Dashboard.jsx", "src/pages/Dashboard.jsx")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "Code Quality", doc.Findings[0].ChangeType)
	assert.Equal(t, "None", doc.Findings[0].Risk)
}

func TestRun_ProjectConfigAndFlagPrecedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "fetch('/api');\n")
	writeFile(t, dir, ".semantic-diff.conf", "FORMAT=text\nTARGET_FILES=app.js\n")

	out, err := execute(t, "-C", dir, "--format", "json")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Findings, 1, "TARGET_FILES comes from the project file")
	assert.Equal(t, "unhandled-network-call", doc.Findings[0].RuleID)
}

func TestRun_SideReportsRelativeToRepoDir(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "const ok = true;\n")
	writeFile(t, dir, "eslint-report.json", `[{"filePath":"app.js","messages":[{"line":1,"message":"x","ruleId":"no-unused-vars","severity":2}]}]`)

	out, err := execute(t, "-C", dir, "--format", "json", "app.js")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Lint, 1)
	assert.Equal(t, "no-unused-vars", doc.Lint[0].RuleID)
}

func TestRun_WritesOutputFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "el.innerHTML = value;\n")
	output := filepath.Join(t.TempDir(), "report.html")

	out, err := execute(t, "-C", dir, "-o", output, "app.js")
	require.NoError(t, err)
	assert.Empty(t, out, "nothing goes to stdout when writing a file")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Semantic Diff Report")
	assert.Contains(t, string(data), "Request a manual review")
}

func TestRun_UnwritableOutputFails(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "const a = 1;\n")

	_, err := execute(t, "-C", dir, "-o", filepath.Join(dir, "missing", "dir", "out.html"), "app.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create report")
	assert.Equal(t, exitcode.Error, exitCode(err))
}

func TestRun_DiffFailureIsANotice(t *testing.T) {
	isolate(t)
	dir := t.TempDir() // not a git repository

	out, err := execute(t, "-C", dir, "--format", "json", "--base", "origin/main")
	require.NoError(t, err)

	doc := decode(t, out)
	assert.Equal(t, "diff", doc.Mode)
	assert.Contains(t, doc.Notice, "Could not retrieve diff against origin/main: ")
	assert.Empty(t, doc.Findings)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format flag", []string{"--format", "pdf"}, "unknown format"},
		{"negative lookahead", []string{"--lookahead", "-1"}, "--lookahead must be >= 0"},
		{"missing rules file", []string{"--rules", filepath.Join(dir, "none.yaml")}, "--rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"-C", dir}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, exitcode.Error, exitCode(err))
		})
	}
}

func TestRun_InvalidFormatFromConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, ".semantic-diff.conf", "FORMAT=xml\n")

	_, err := execute(t, "-C", dir, "--files", "a.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRun_BadUserRule(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "rules.yaml", "rules:\n  - id: broken\n    change_type: Code Quality\n    risk: Low\n    message: x\n    pattern: '('\n")

	_, err := execute(t, "-C", dir, "--rules", filepath.Join(dir, "rules.yaml"), "--files", "a.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules file")
}

func TestRun_RulesFileFromProjectConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "// FIXME: tidy up\n")
	writeFile(t, dir, "rules/team.yaml", "rules:\n  - id: fixme-marker\n    change_type: Code Quality\n    risk: Low\n    message: Unresolved marker.\n    pattern: 'FIXME'\n")
	writeFile(t, dir, ".semantic-diff.conf", "RULES_FILE=rules/team.yaml\n")

	out, err := execute(t, "-C", dir, "--format", "json", "app.js")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "fixme-marker", doc.Findings[0].RuleID)
}

func TestRun_RelativeRulesFlag(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "app.js", "// FIXME\n")
	writeFile(t, dir, "team.yaml", "rules:\n  - id: fixme-marker\n    change_type: Code Quality\n    risk: Low\n    message: Unresolved marker.\n    pattern: 'FIXME'\n")

	out, err := execute(t, "-C", dir, "--rules", "team.yaml", "--format", "json", "app.js")
	require.NoError(t, err)

	doc := decode(t, out)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "fixme-marker", doc.Findings[0].RuleID)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitcode.Success, exitCode(nil))
	assert.Equal(t, exitcode.Interrupted, exitCode(fmt.Errorf("git diff: %w", sighandler.ErrInterrupted)))
	assert.Equal(t, exitcode.Error, exitCode(fmt.Errorf("boom")))
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "a.js")
	assert.Equal(t, "", resolvePath("/repo", ""))
	assert.Equal(t, abs, resolvePath("/repo", abs))
	assert.Equal(t, filepath.Join("/repo", "src", "a.js"), resolvePath("/repo", "src/a.js"))
	assert.Equal(t, filepath.Join("src", "a.js"), resolvePath(".", "src/a.js"))
	assert.Nil(t, resolvePaths(".", nil))
}

func TestRun_LogsScopeAndStages(t *testing.T) {
	isolate(t)
	defer logging.SetVerbose(false)
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "const a = 1;\n")
	writeFile(t, dir, "b.js", "const b = 2;\n")

	var err error
	logs := captureStderr(t, func() {
		_, err = execute(t, "-C", dir, "--format", "json", "-v", "a.js", "b.js")
	})
	require.NoError(t, err)

	assert.Contains(t, logs, "[INFO] Scanning 2 configured file(s)")
	assert.Contains(t, logs, "[PHASE] Scanning files")
}

func TestRun_DiffStagesLogged(t *testing.T) {
	isolate(t)
	defer logging.SetVerbose(false)
	dir := t.TempDir()

	var err error
	logs := captureStderr(t, func() {
		_, err = execute(t, "-C", dir, "--format", "json", "--base", "origin/main", "-v")
	})
	require.NoError(t, err)

	assert.Contains(t, logs, "[PHASE] Fetching diff")
	assert.Contains(t, logs, "against origin/main")
}

func TestExitCode_LogsNameWhenVerbose(t *testing.T) {
	logging.SetVerbose(true)
	defer logging.SetVerbose(false)

	logs := captureStderr(t, func() {
		assert.Equal(t, exitcode.Interrupted, exitCode(sighandler.ErrInterrupted))
	})
	assert.Contains(t, logs, "Exit 130 (Interrupted)")
}

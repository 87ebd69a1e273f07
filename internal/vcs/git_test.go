package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	g := &Git{}
	assert.Equal(t, []string{"diff", "--no-color", "--no-ext-diff", "origin/main"}, g.BuildArgs("origin/main"))
}

func TestDiff_EmptyBase(t *testing.T) {
	g := &Git{}
	_, err := g.Diff(context.Background(), "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base reference cannot be empty")
}

func TestDiff_MissingBinary(t *testing.T) {
	g := &Git{Binary: filepath.Join(t.TempDir(), "no-such-git")}
	_, err := g.Diff(context.Background(), "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git diff main")
}

// requireGit skips the test when git is not installed.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	base := []string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestDiff_AgainstBranch(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("const a = 1;\n"), 0644))
	runGit(t, dir, "add", "app.js")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	g := &Git{Dir: dir}

	out, err := g.Diff(context.Background(), "main")
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("const a = 1;\nconsole.log(a);\n"), 0644))

	out, err = g.Diff(context.Background(), "main")
	require.NoError(t, err)
	assert.Contains(t, out, "+++ b/app.js")
	assert.Contains(t, out, "+console.log(a);")
}

func TestDiff_UnknownBase(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")

	g := &Git{Dir: dir}
	_, err := g.Diff(context.Background(), "no-such-branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git diff no-such-branch")
}

func TestDiff_CancelledContext(t *testing.T) {
	requireGit(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &Git{Dir: t.TempDir()}
	_, err := g.Diff(ctx, "main")
	require.Error(t, err)
}

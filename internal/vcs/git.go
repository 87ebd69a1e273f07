// Package vcs obtains the unified diff to scan from git.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBase is the reference diffed against when none is configured.
const DefaultBase = "main"

// Git runs git in a working directory.
type Git struct {
	// Dir is the repository working directory. Empty means the current directory.
	Dir string
	// Binary overrides the git executable, mainly for tests.
	Binary string
}

// BuildArgs constructs the argument list for diffing the checkout against base.
func (g *Git) BuildArgs(base string) []string {
	return []string{"diff", "--no-color", "--no-ext-diff", base}
}

// Diff returns the unified diff between base and the current checkout,
// including uncommitted changes. An unchanged checkout yields "".
//
// The git process is killed when ctx is cancelled.
func (g *Git) Diff(ctx context.Context, base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("base reference cannot be empty")
	}

	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, g.BuildArgs(base)...)
	cmd.Dir = g.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git diff %s: %w\nOutput: %s", base, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

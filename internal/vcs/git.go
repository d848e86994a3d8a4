// Package vcs invokes git to record a completed bump: it checks the
// working tree is clean apart from the files the bump touches, commits
// them, and tags the commit.
package vcs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Error variables for vcs operations.
var (
	ErrGitUnavailable  = errors.New("git is not available on the system")
	ErrWorkingDirDirty = errors.New("working directory is dirty")
)

// Git runs git commands in a fixed working directory.
type Git struct {
	WorkDir string
}

// Available reports whether git can be invoked at all.
func (g *Git) Available() error {
	cmd := exec.Command("git", "--version")
	cmd.Dir = g.WorkDir

	if err := cmd.Run(); err != nil {
		return ErrGitUnavailable
	}

	return nil
}

// InRepo reports whether WorkDir is inside a git working tree. False
// also covers git not being installed at all.
func (g *Git) InRepo() bool {
	out, err := g.run("rev-parse", "--is-inside-work-tree")

	return err == nil && strings.TrimSpace(out) == "true"
}

// AssertNonDirty fails when the working tree has modifications outside
// the allowed paths. The files a bump is about to rewrite are expected
// to be listed in allowed so a pre-existing dirty tree is caught without
// blocking the bump's own edits.
func (g *Git) AssertNonDirty(allowed []string) error {
	out, err := g.run("status", "--porcelain")
	if err != nil {
		return err
	}

	allowedSet := make(map[string]struct{}, len(allowed))

	for _, f := range allowed {
		abs := f
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(g.WorkDir, f)
		}

		allowedSet[filepath.Clean(abs)] = struct{}{}
	}

	var disallowed []string

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		path := strings.TrimSpace(line[3:])

		// Renames are reported as "old -> new"; the destination is what
		// sits in the working tree.
		if _, dest, found := strings.Cut(path, " -> "); found {
			path = dest
		}

		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(g.WorkDir, path)
		}

		if _, ok := allowedSet[filepath.Clean(abs)]; !ok {
			disallowed = append(disallowed, path)
		}
	}

	if len(disallowed) > 0 {
		return fmt.Errorf("%w: uncommitted changes in %s (use --allow-dirty to override)",
			ErrWorkingDirDirty, strings.Join(disallowed, ", "))
	}

	return nil
}

// Commit stages the given paths and commits them with the message.
func (g *Git) Commit(paths []string, message string) error {
	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := g.run(addArgs...); err != nil {
		return err
	}

	_, err := g.run("commit", "-m", message)

	return err
}

// Tag creates a tag at HEAD. A non-empty message makes it an annotated
// tag; sign additionally signs it.
func (g *Git) Tag(name, message string, sign bool) error {
	args := []string{"tag"}

	if sign {
		args = append(args, "--sign")
	}

	if message != "" {
		args = append(args, "--message", message)
	}

	args = append(args, name)

	_, err := g.run(args...)

	return err
}

func (g *Git) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w, detail: %s",
			args[0], err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

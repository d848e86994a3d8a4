package vcs_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bumpv/internal/vcs"
)

// initRepo creates a throwaway git repository with one committed file.
// Tests are skipped when git is not installed.
func initRepo(t *testing.T) (string, *vcs.Git) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git := &vcs.Git{WorkDir: dir}

	run := func(args ...string) {
		t.Helper()

		cmd := exec.Command("git", args...)
		cmd.Dir = dir

		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte("1.2.0\n"), 0o600))
	run("add", "VERSION")
	run("commit", "-m", "init")

	return dir, git
}

func Test_AssertNonDirty_Passes_On_Clean_Tree(t *testing.T) {
	t.Parallel()

	_, git := initRepo(t)

	require.NoError(t, git.AssertNonDirty(nil))
}

func Test_AssertNonDirty_Fails_On_Unrelated_Modification(t *testing.T) {
	t.Parallel()

	dir, git := initRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o600))

	err := git.AssertNonDirty(nil)
	require.ErrorIs(t, err, vcs.ErrWorkingDirDirty)
	assert.Contains(t, err.Error(), "stray.txt")
}

func Test_AssertNonDirty_Ignores_Allowed_Paths(t *testing.T) {
	t.Parallel()

	dir, git := initRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte("1.2.1\n"), 0o600))

	require.NoError(t, git.AssertNonDirty([]string{"VERSION"}))
}

func Test_AssertNonDirty_Resolves_Renames_To_The_Destination(t *testing.T) {
	t.Parallel()

	dir, git := initRepo(t)

	mv := exec.Command("git", "mv", "VERSION", "RELEASE")
	mv.Dir = dir
	out, err := mv.CombinedOutput()
	require.NoError(t, err, "git mv: %s", out)

	require.NoError(t, git.AssertNonDirty([]string{"RELEASE"}))

	dirtyErr := git.AssertNonDirty(nil)
	require.ErrorIs(t, dirtyErr, vcs.ErrWorkingDirDirty)
	assert.Contains(t, dirtyErr.Error(), "RELEASE")
	assert.NotContains(t, dirtyErr.Error(), "->")
}

func Test_InRepo_Distinguishes_Repo_From_Plain_Directory(t *testing.T) {
	t.Parallel()

	_, git := initRepo(t)
	assert.True(t, git.InRepo())

	outside := &vcs.Git{WorkDir: t.TempDir()}
	assert.False(t, outside.InRepo())
}

func Test_Commit_And_Tag_Record_The_Bump(t *testing.T) {
	t.Parallel()

	dir, git := initRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte("1.2.1\n"), 0o600))
	require.NoError(t, git.Commit([]string{"VERSION"}, "Bump version: 1.2.0 → 1.2.1"))
	require.NoError(t, git.Tag("v1.2.1", "Bump version: 1.2.0 → 1.2.1", false))

	log := exec.Command("git", "log", "-1", "--pretty=%s")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "Bump version: 1.2.0 → 1.2.1", strings.TrimSpace(string(out)))

	tags := exec.Command("git", "tag", "--list")
	tags.Dir = dir
	out, err = tags.Output()
	require.NoError(t, err)
	assert.Equal(t, "v1.2.1", strings.TrimSpace(string(out)))
}

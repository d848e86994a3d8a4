package patch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bumpv/internal/patch"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func readBack(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func Test_Compute_And_Apply_Rewrites_Exact_Substring(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "setup.py", "name = 'pkg'\nVERSION = 1.2.0\n")

	plan, err := patch.Compute([]patch.Rule{{
		Path:    path,
		Search:  "VERSION = 1.2.0",
		Replace: "VERSION = 1.2.1",
	}})
	require.NoError(t, err)
	require.NoError(t, plan.Apply())

	assert.Equal(t, "name = 'pkg'\nVERSION = 1.2.1\n", readBack(t, path),
		"only the matched line may change")
}

func Test_Compute_Replaces_Every_Occurrence_And_Reports_Count(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "readme.md", "v 1.2.0 and again 1.2.0\n")

	plan, err := patch.Compute([]patch.Rule{{Path: path, Search: "1.2.0", Replace: "1.3.0"}})
	require.NoError(t, err)

	edits := plan.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, 2, edits[0].Occurrences)
	assert.True(t, edits[0].Changed)

	require.NoError(t, plan.Apply())
	assert.Equal(t, "v 1.3.0 and again 1.3.0\n", readBack(t, path))
}

func Test_Compute_Fails_With_SearchNotFound_When_Text_Absent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "nothing here\n")

	_, err := patch.Compute([]patch.Rule{{Path: path, Search: "1.2.0", Replace: "1.3.0"}})
	require.ErrorIs(t, err, patch.ErrSearchNotFound)
}

func Test_Compute_Rejects_An_Empty_Search_Text(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "abc")

	_, err := patch.Compute([]patch.Rule{{Path: path, Search: "", Replace: "X"}})
	require.ErrorIs(t, err, patch.ErrEmptySearch)

	assert.Equal(t, "abc", readBack(t, path))
}

func Test_Compute_Leaves_All_Files_Untouched_When_One_Rule_Fails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFixture(t, dir, "good.txt", "version 1.2.0\n")
	bad := writeFixture(t, dir, "bad.txt", "no version at all\n")

	_, err := patch.Compute([]patch.Rule{
		{Path: good, Search: "1.2.0", Replace: "1.3.0"},
		{Path: bad, Search: "1.2.0", Replace: "1.3.0"},
	})
	require.ErrorIs(t, err, patch.ErrSearchNotFound)

	assert.Equal(t, "version 1.2.0\n", readBack(t, good), "validation must precede all writes")
	assert.Equal(t, "no version at all\n", readBack(t, bad))
}

func Test_Compute_Applies_Sequential_Rules_On_Same_File_In_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "conf.ini", "current = 1.2.0\nfallback = 1.2.0\n")

	plan, err := patch.Compute([]patch.Rule{
		{Path: path, Search: "current = 1.2.0", Replace: "current = 1.3.0"},
		// Sees the first rule's edit: only the fallback line still matches.
		{Path: path, Search: "1.2.0", Replace: "2.0.0"},
	})
	require.NoError(t, err)

	edits := plan.Edits()
	require.Len(t, edits, 2)
	assert.Equal(t, 1, edits[1].Occurrences)

	require.NoError(t, plan.Apply())
	assert.Equal(t, "current = 1.3.0\nfallback = 2.0.0\n", readBack(t, path))
}

func Test_Compute_Matches_Multiline_Search_Text_Verbatim(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.rst", "Release\n=======\n1.2.0\n=======\n")

	plan, err := patch.Compute([]patch.Rule{{
		Path:    path,
		Search:  "=======\n1.2.0",
		Replace: "=======\n1.2.1",
	}})
	require.NoError(t, err)
	require.NoError(t, plan.Apply())

	assert.Equal(t, "Release\n=======\n1.2.1\n=======\n", readBack(t, path))
}

func Test_Compute_Treats_Search_As_Literal_Text_Not_A_Pattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "version 1x2x0 and 1.2.0\n")

	plan, err := patch.Compute([]patch.Rule{{Path: path, Search: "1.2.0", Replace: "9.9.9"}})
	require.NoError(t, err)

	edits := plan.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, 1, edits[0].Occurrences, "dots must not match arbitrary characters")

	require.NoError(t, plan.Apply())
	assert.Equal(t, "version 1x2x0 and 9.9.9\n", readBack(t, path))
}

func Test_Compute_Preserves_CRLF_Content_Outside_The_Match(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "win.txt", "a\r\nversion = 1.2.0\r\nb\r\n")

	plan, err := patch.Compute([]patch.Rule{{Path: path, Search: "1.2.0", Replace: "1.2.1"}})
	require.NoError(t, err)
	require.NoError(t, plan.Apply())

	assert.Equal(t, "a\r\nversion = 1.2.1\r\nb\r\n", readBack(t, path))
}

func Test_Compute_Reports_Unchanged_When_Search_Equals_Replace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "version 1.2.0\n")

	plan, err := patch.Compute([]patch.Rule{{Path: path, Search: "1.2.0", Replace: "1.2.0"}})
	require.NoError(t, err)

	edits := plan.Edits()
	require.Len(t, edits, 1)
	assert.False(t, edits[0].Changed)
	assert.Equal(t, 1, edits[0].Occurrences)
}

func Test_Compute_Fails_When_Target_File_Missing(t *testing.T) {
	t.Parallel()

	_, err := patch.Compute([]patch.Rule{{
		Path:    filepath.Join(t.TempDir(), "absent.txt"),
		Search:  "x",
		Replace: "y",
	}})
	require.Error(t, err)
}

func Test_Compute_Fails_When_No_Rules_Given(t *testing.T) {
	t.Parallel()

	_, err := patch.Compute(nil)
	require.ErrorIs(t, err, patch.ErrNoRules)
}

func Test_Edits_Returns_Rendered_Texts_For_Reporting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "VERSION = 1.2.0\n")

	plan, err := patch.Compute([]patch.Rule{{
		Path:    path,
		Search:  "VERSION = 1.2.0",
		Replace: "VERSION = 1.2.1",
	}})
	require.NoError(t, err)

	want := []patch.Edit{{
		Path:        path,
		Occurrences: 1,
		Changed:     true,
		Search:      "VERSION = 1.2.0",
		Replace:     "VERSION = 1.2.1",
	}}

	diff := cmp.Diff(want, plan.Edits())
	assert.Empty(t, diff)
}

func Test_WithLock_Serializes_Against_Itself(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	entered := false

	err := patch.WithLock(dir, func() error {
		entered = true

		// Reentrant acquisition from the same process would deadlock
		// until timeout; verify the timeout path instead of hanging.
		return nil
	})
	require.NoError(t, err)
	assert.True(t, entered)

	// Lock file is cleaned up on release.
	_, statErr := os.Stat(filepath.Join(dir, ".bumpv.lock"))
	assert.True(t, os.IsNotExist(statErr))
}

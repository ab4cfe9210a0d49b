package pathsource

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("a"), 0o644))
	run("add", "tracked.txt")
	run("commit", "-q", "-m", "initial")

	return dir
}

func TestIsRepo(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	assert := require.New(t)
	assert.False(IsRepo(t.TempDir()))
}

func TestGitSource_ListAllTracked(t *testing.T) {
	dir := initRepo(t)
	src := NewGitSource(dir)

	paths, err := src.ListAllTracked()
	require.NoError(t, err)
	require.Contains(t, paths, "tracked.txt")
}

func TestGitSource_ListStagedAndUnstaged(t *testing.T) {
	dir := initRepo(t)
	src := NewGitSource(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("b"), 0o644))
	unstaged, err := src.ListUnstaged()
	require.NoError(t, err)
	require.Contains(t, unstaged, "tracked.txt")

	cmd := exec.Command("git", "-C", dir, "add", "tracked.txt")
	require.NoError(t, cmd.Run())

	staged, err := src.ListStaged()
	require.NoError(t, err)
	require.Contains(t, staged, "tracked.txt")
}

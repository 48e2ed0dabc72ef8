//go:build basic

// Package integration contains end-to-end tests for the ecoscore binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/schema"
)

// noStores keeps basic tests away from the user's cache files.
var noStores = []string{"ECOSCORE_CACHE_BACKEND=none"}

// TestAnalyzeProject verifies unit discovery and failure accounting on a fixture tree.
func TestAnalyzeProject(t *testing.T) {
	root := writeFixture(t)
	outFile := filepath.Join(t.TempDir(), "project.json")

	_, err := runEcoscore(t, root, noStores, "analyze", ".", "--output", "json", "--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var project schema.ProjectResult
	require.NoError(t, json.Unmarshal(data, &project))

	statuses := make(map[string]schema.UnitStatus)
	for _, u := range project.Units {
		statuses[u.Path] = u.Status
	}
	assert.Equal(t, map[string]schema.UnitStatus{
		"pkg/broken.py":   schema.StatusParseError,
		"pkg/clean.py":    schema.StatusOK,
		"pkg/wasteful.py": schema.StatusOK,
	}, statuses)
	assert.Equal(t, 2, project.Analyzed)
	assert.Equal(t, 1, project.Failed)
	assert.Greater(t, project.ProjectScore, 0.0)
	assert.LessOrEqual(t, project.ProjectScore, 1.0)
	assert.NotEmpty(t, project.Suggestions)
}

// TestCheckExitStatus verifies that check fails only when targets are missed.
func TestCheckExitStatus(t *testing.T) {
	root := writeFixture(t)

	_, err := runEcoscore(t, root, append(noStores, "ECOSCORE_THRESHOLDS_ECO_SCORE=0", "ECOSCORE_THRESHOLDS_CATEGORY_SCORE=0"), "check", "pkg/clean.py")
	require.NoError(t, err)

	_, err = runEcoscore(t, root, append(noStores, "ECOSCORE_THRESHOLDS_ECO_SCORE=1", "ECOSCORE_THRESHOLDS_CATEGORY_SCORE=1"), "check", "pkg/wasteful.py")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}

// TestHistoryMatchesGitLog replays a file and compares the revisions against git log.
func TestHistoryMatchesGitLog(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	repo := t.TempDir()
	git := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = repo
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return strings.TrimSpace(string(out))
	}
	git("init", "-q")

	versions := []string{
		fixtureSources["pkg/clean.py"],
		fixtureSources["pkg/wasteful.py"],
		fixtureSources["pkg/broken.py"],
	}
	for i, src := range versions {
		require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte(src), 0o644))
		git("add", "app.py")
		git("commit", "-q", "-m", "v"+string(rune('1'+i)))
	}

	outFile := filepath.Join(t.TempDir(), "trend.json")
	_, err := runEcoscore(t, repo, noStores, "history", "app.py", "--commits", "5", "--output", "json", "--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var series schema.TrendSeries
	require.NoError(t, json.Unmarshal(data, &series))

	// Oldest first, one point per commit touching the file
	revs := strings.Fields(git("log", "--format=%H", "--reverse", "--", "app.py"))
	require.Len(t, series.Points, len(revs))
	for i, p := range series.Points {
		assert.Equal(t, revs[i], p.Revision)
	}
	assert.Equal(t, schema.StatusOK, series.Points[0].Status)
	assert.Equal(t, schema.StatusOK, series.Points[1].Status)
	assert.Equal(t, schema.StatusParseError, series.Points[2].Status)
	assert.Equal(t, 2, series.Populated())
}

// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/ecoscore/schema"
)

// RevisionRef identifies one commit that touched a path.
type RevisionRef struct {
	Hash string
	Time time.Time
}

// GitClient defines the git operations needed to replay the history of a source unit.
// This allows the core analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRevisionsForPath returns up to n commits touching path reachable from ref, newest first.
	GetRevisionsForPath(ctx context.Context, repoPath, path, ref string, n int) ([]RevisionRef, error)

	// ShowFileAtRevision returns the content of path at rev.
	// A path absent at rev yields ErrPathNotAtRevision.
	ShowFileAtRevision(ctx context.Context, repoPath, rev, path string) ([]byte, error)

	// ListFilesAtRevision returns the repo-relative paths of every file under dir at rev.
	ListFilesAtRevision(ctx context.Context, repoPath, rev, dir string) ([]string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cached analysis results.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking runs and storing unit scores.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordUnit stores the scores of one analyzed unit
	RecordUnit(runID int64, record schema.UnitScoreRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalUnits int, projectScore float64) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllUnitScores returns every recorded unit score
	GetAllUnitScores() ([]schema.UnitScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}

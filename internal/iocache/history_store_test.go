package iocache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/schema"
)

func newSQLiteHistoryStore(t *testing.T) (*HistoryStoreImpl, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl), dbPath
}

func sampleUnitRecord(runID int64, path string, score float64, at time.Time) schema.UnitScoreRecord {
	return schema.UnitScoreRecord{
		RunID:             runID,
		Path:              path,
		AnalysisTime:      at,
		Status:            string(schema.StatusOK),
		OverallScore:      score,
		EnergyEfficiency:  score,
		ResourceUsage:     1.0,
		CodeOptimizations: 0.9,
		CustomRules:       1.0,
		Suggestions:       2,
		EnergyKWhPerYear:  0.5,
		CO2KgPerYear:      0.2,
	}
}

func TestHistoryStoreLifecycle(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, map[string]any{"workers": 4, "target": "."})
	require.NoError(t, err)
	assert.Positive(t, runID)

	require.NoError(t, store.RecordUnit(runID, sampleUnitRecord(runID, "app/main.py", 0.8, start)))
	require.NoError(t, store.RecordUnit(runID, sampleUnitRecord(runID, "app/util.py", 0.6, start)))

	end := start.Add(1500 * time.Millisecond)
	require.NoError(t, store.EndRun(runID, end, 2, 0.7))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Len(t, run.RunUUID, 36)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, end.Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalUnits)
	require.NotNil(t, run.ProjectScore)
	assert.InDelta(t, 0.7, *run.ProjectScore, 1e-9)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"workers":4,"target":"."}`, *run.ConfigParams)

	scores, err := store.GetAllUnitScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "app/main.py", scores[0].Path)
	assert.Equal(t, "app/util.py", scores[1].Path)
	assert.InDelta(t, 0.6, scores[1].OverallScore, 1e-9)
	assert.Equal(t, int32(2), scores[0].Suggestions)
	assert.True(t, start.Equal(scores[0].AnalysisTime))
}

func TestHistoryStoreUnfinishedRun(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)

	_, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Nil(t, runs[0].ProjectScore)
}

func TestHistoryStoreDuplicateUnit(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)

	runID, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	rec := sampleUnitRecord(runID, "a.py", 1, time.Now())
	require.NoError(t, store.RecordUnit(runID, rec))
	assert.ErrorContains(t, store.RecordUnit(runID, rec), "a.py")
}

func TestHistoryStoreEndRunUnknown(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)

	err := store.EndRun(42, time.Now(), 0, 1)
	assert.ErrorContains(t, err, "run 42")
}

func TestHistoryStoreStatus(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, uint(2), status.SchemaVersion)
	assert.Zero(t, status.TotalRuns)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	id1, err := store.BeginRun(first, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordUnit(id1, sampleUnitRecord(id1, "a.py", 0.9, first)))
	require.NoError(t, store.EndRun(id1, first.Add(time.Second), 1, 0.9))

	id2, err := store.BeginRun(second, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordUnit(id2, sampleUnitRecord(id2, "a.py", 0.8, second)))
	require.NoError(t, store.RecordUnit(id2, sampleUnitRecord(id2, "b.py", 0.7, second)))
	require.NoError(t, store.EndRun(id2, second.Add(time.Second), 2, 0.75))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, id2, status.LastRunID)
	assert.True(t, second.Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 3, status.TotalUnitsAnalyzed)
	assert.Equal(t, int64(2), status.TableSizes[runsTable])
	assert.Equal(t, int64(3), status.TableSizes[unitScoresTable])
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordUnit(runID, schema.UnitScoreRecord{Path: "x.py"}))
	assert.NoError(t, store.EndRun(runID, time.Now(), 1, 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	_, err = store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMigrateHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	t.Run("up to latest", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMigrations(schema.SQLiteBackend, dbPath, -1, &out))
		assert.Contains(t, out.String(), "to version 2")
	})

	t.Run("already latest", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMigrations(schema.SQLiteBackend, dbPath, -1, &out))
		assert.Contains(t, out.String(), "already at the latest version")
	})

	t.Run("down to version 1", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMigrations(schema.SQLiteBackend, dbPath, 1, &out))
		assert.Contains(t, out.String(), "from version 2 to version 1")
	})

	t.Run("roll back everything", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runMigrations(schema.SQLiteBackend, dbPath, 0, &out))
		assert.Contains(t, out.String(), "rolled back")
	})

	t.Run("none backend", func(t *testing.T) {
		assert.Error(t, MigrateHistory(schema.NoneBackend, "", -1))
	})
}

func TestMigrationsDir(t *testing.T) {
	assert.Equal(t, "migrations/sqlite", migrationsDir(schema.SQLiteBackend))
	assert.Equal(t, "migrations/mysql", migrationsDir(schema.MySQLBackend))
	assert.Equal(t, "migrations/postgres", migrationsDir(schema.PostgreSQLBackend))

	for _, dir := range []string{"migrations/sqlite", "migrations/mysql", "migrations/postgres"} {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 4, dir)
	}
}

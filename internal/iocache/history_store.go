package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/schema"
)

// Table names for run history.
const (
	runsTable       = "ecoscore_runs"
	unitScoresTable = "ecoscore_unit_scores"
)

// unitScoreColumns lists the ecoscore_unit_scores columns in insert and select order.
const unitScoreColumns = `run_id, path, analysis_time, status, overall_score,
	energy_efficiency, resource_usage, code_optimizations, custom_rules,
	suggestions, energy_kwh_per_year, co2_kg_per_year`

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history database and migrates it to the latest schema.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	if err := runMigrations(backend, connStr, -1, io.Discard); err != nil {
		return nil, fmt.Errorf("failed to migrate history tables: %w", err)
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store is a no-op.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	runUUID := uuid.NewString()
	quotedTableName := quoteTableName(runsTable, hs.backend)

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, runUUID, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, runUUID, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordUnit stores the scores of one analyzed unit.
func (hs *HistoryStoreImpl) RecordUnit(runID int64, r schema.UnitScoreRecord) error {
	if hs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(unitScoresTable, hs.backend), unitScoreColumns, placeholders(hs.backend, 12))
	_, err := hs.db.Exec(query,
		runID, r.Path, formatTime(r.AnalysisTime, hs.backend), r.Status, r.OverallScore,
		r.EnergyEfficiency, r.ResourceUsage, r.CodeOptimizations, r.CustomRules,
		r.Suggestions, r.EnergyKWhPerYear, r.CO2KgPerYear,
	)
	if err != nil {
		return fmt.Errorf("failed to insert unit score for %s: %w", r.Path, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalUnits int, projectScore float64) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(hs.backend, 1))
	startTime, err := hs.scanTime(hs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	if hs.backend == schema.PostgreSQLBackend {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_units = $3, project_score = $4 WHERE run_id = $5`, quotedTableName)
	} else {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_units = ?, project_score = ? WHERE run_id = ?`, quotedTableName)
	}
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalUnits, projectScore, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	// Missing version table means no migration has been applied yet
	var version int64
	if err := hs.db.QueryRow("SELECT version FROM schema_migrations LIMIT 1").Scan(&version); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
	}

	if status.TotalRuns > 0 {
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		lastTime, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastTime

		oldestTime, err := hs.scanTime(hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestTime

		row = hs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_units), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalUnitsAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total units analyzed: %w", err)
		}
	}

	for _, table := range []string{runsTable, unitScoresTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, total_units, project_score, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		if hs.backend == schema.SQLiteBackend {
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &record.RunUUID, &startStr, &endStr, &record.RunDurationMs,
				&record.TotalUnits, &record.ProjectScore, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		} else {
			// MySQL and PostgreSQL store native datetimes
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.TotalUnits, &record.ProjectScore, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllUnitScores retrieves all unit scores from the store.
func (hs *HistoryStoreImpl) GetAllUnitScores() ([]schema.UnitScoreRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY run_id, path`, unitScoreColumns, quoteTableName(unitScoresTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unit scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.UnitScoreRecord
	for rows.Next() {
		var r schema.UnitScoreRecord
		var analysisTime any = &r.AnalysisTime
		var analysisTimeStr string
		if hs.backend == schema.SQLiteBackend {
			analysisTime = &analysisTimeStr
		}

		if err := rows.Scan(&r.RunID, &r.Path, analysisTime, &r.Status, &r.OverallScore,
			&r.EnergyEfficiency, &r.ResourceUsage, &r.CodeOptimizations, &r.CustomRules,
			&r.Suggestions, &r.EnergyKWhPerYear, &r.CO2KgPerYear); err != nil {
			return nil, fmt.Errorf("failed to scan unit score: %w", err)
		}
		if hs.backend == schema.SQLiteBackend {
			if r.AnalysisTime, err = time.Parse(time.RFC3339Nano, analysisTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
			}
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unit scores: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, which SQLite stores as RFC3339 text.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

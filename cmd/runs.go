package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/ecoscore/internal/contract"
	"github.com/huangsam/ecoscore/internal/iocache"
	"github.com/huangsam/ecoscore/schema"
)

// historyBackendFromViper reads the run history backend, treating an empty value as none.
func historyBackendFromViper() (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := historyBackendFromViper()
	if err != nil {
		return err
	}

	// No result cache for runs commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup resolves the backend without opening any store,
// so migrations can run against a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := historyBackendFromViper()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd manages the record of past analyze and check runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the recorded history of analysis runs",
	Long: `Manage the run history written by analyze and check when --history-backend is set.

Every recorded run stores its start and end time, the configuration used, the
project eco-score and one row per analyzed file with its overall and category
scores.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run history statistics
  export  - Export runs and file scores to Parquet
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Record runs in the default SQLite file
  ecoscore analyze src --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  ecoscore runs export --history-backend sqlite --output-file ecoscore`,
}

var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete all recorded runs and file scores.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  ecoscore runs export --history-backend sqlite --output-file backup
  ecoscore runs clear --history-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		dbFile := contract.GetHistoryDBFilePath()
		if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect != "" {
			dbFile = cfg.HistoryDBConnect
		}
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbFile, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the backend, connection state, number of recorded runs, run time range
and number of file score rows of the run history.`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get run history status", fmt.Errorf("history backend is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded runs and file scores to Parquet.

Two files are written next to the --output-file prefix:
- <prefix>.runs.parquet        - one row per run
- <prefix>.unit_scores.parquet - one row per analyzed file per run

Examples:
  ecoscore runs export --history-backend sqlite --output-file ecoscore
  duckdb -c "SELECT * FROM read_parquet('ecoscore.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  ecoscore runs migrate --history-backend sqlite

  # Roll back everything
  ecoscore runs migrate --history-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

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

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No history store for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on result cache management.
//
// Cache subcommands skip sharedSetup so they work without a target path
// or valid engine settings.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache",
	Long: `Manage the cache of per-file analysis results.

Results are keyed by the file content and the active settings, so unchanged
files are never re-parsed. Changing weights, thresholds, coefficients or custom
rules produces new keys automatically.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached results`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	Long: `Delete all cached analysis results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  ecoscore cache clear

  # Clear a PostgreSQL cache
  ECOSCORE_CACHE_BACKEND=postgresql ECOSCORE_CACHE_DB_CONNECT="host=... dbname=..." ecoscore cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release our own handle before the file or table goes away
		iocache.CloseStores()
		dbFile := contract.GetCacheDBFilePath()
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
			dbFile = cfg.CacheDBConnect
		}
		if err := iocache.ClearCache(cfg.CacheBackend, dbFile, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, connection state, entry count, entry time range and
approximate size of the result cache.

Examples:
  ecoscore cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetResultStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache backend is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

package cmd

import (
	"fmt"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/internal/iocache"
	"github.com/huangsam/grouppulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for snapshot store operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	setConfigFile()
	if err := readConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseBackend(viper.GetString("cache-backend"))
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the snapshot store only; the metrics store stays closed
	if err := iocache.InitStores(backend, connStr, schema.NoneBackend, ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on report snapshot management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage stored report snapshots",
	Long: `Manage the report snapshot store.

Every scored (group, date) is stored as an immutable snapshot keyed by its report ID.
Later runs serve the snapshot unchanged, so a report keeps the thresholds it was
scored with. Clear the store to rescore with the current thresholds.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status - Show snapshot statistics and connection info
  clear  - Remove all snapshots`,
}

// cacheClearCmd clears the snapshot store.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all report snapshots",
	Long: `Delete all report snapshots from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot table

Examples:
  grouppulse cache clear
  GROUPPULSE_CACHE_BACKEND=mysql GROUPPULSE_CACHE_DB_CONNECT="..." grouppulse cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		path := cfg.CacheDBConnect
		if path == "" {
			path = contract.GetCacheDBFilePath()
		}
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows snapshot store status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show the backend, number of stored snapshots, the newest and oldest
snapshot timestamps and the table size.

Examples:
  grouppulse cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetReportCache()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("no snapshot store configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

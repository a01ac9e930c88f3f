package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/internal/iocache"
	"github.com/huangsam/grouppulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNoMetricsStore is returned by store commands when the metrics backend is none.
var errNoMetricsStore = errors.New("no metrics store configured: set --metrics-backend")

// metricsBackendFromConfig reads and validates the metrics backend settings.
func metricsBackendFromConfig() (schema.DatabaseBackend, string, error) {
	setConfigFile()
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backend, err := contract.ParseBackend(viper.GetString("metrics-backend"))
	if err != nil {
		return "", "", fmt.Errorf("metrics: %w", err)
	}
	connStr := viper.GetString("metrics-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// storeSetup loads minimal configuration needed for metrics store operations.
func storeSetup() error {
	backend, connStr, err := metricsBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize the metrics store only (no snapshot store for store commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize metrics store: %w", err)
	}

	cfg.MetricsBackend = backend
	cfg.MetricsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads the backend settings without opening the store,
// so migrations can run on a fresh or outdated database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := metricsBackendFromConfig()
	if err != nil {
		return err
	}
	cfg.MetricsBackend = backend
	cfg.MetricsDBConnect = connStr
	return nil
}

// storeCmd focused on the metrics store.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the metrics store (daily records and run history)",
	Long: `Manage the metrics store that holds ingested daily records and the history of scoring runs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show record counts, run counts and table sizes
  clear   - Remove all records and run history
  export  - Export everything to Parquet
  migrate - Run schema migrations`,
}

// storeClearCmd clears the metrics store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all daily records and run history",
	Long: `Delete all daily records, run history and the schema version.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables

Examples:
  # Export before clearing
  grouppulse store export --output-file backup
  grouppulse store clear`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		path := cfg.MetricsDBConnect
		if path == "" {
			path = contract.GetMetricsDBFilePath()
		}
		if err := iocache.ClearMetrics(cfg.MetricsBackend, path, cfg.MetricsDBConnect); err != nil {
			contract.LogFatal("Failed to clear metrics store", err)
		}
		fmt.Println("Metrics store cleared successfully.")
	},
}

// storeStatusCmd shows metrics store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display metrics store statistics and connection details",
	Long: `Show the backend, number of daily records and groups, run history and table sizes.

Examples:
  grouppulse store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetMetricsStore()
		if store == nil {
			contract.LogFatal("Failed to get metrics status", errNoMetricsStore)
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get metrics status", err)
		}
		iocache.PrintMetricsStatus(status)
	},
}

// storeExportCmd exports the metrics store to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily records and run history to Parquet",
	Long: `Export the metrics store to two Parquet files:
  <output-file>.daily_metrics.parquet
  <output-file>.analysis_runs.parquet

Requires: --output-file parameter

Examples:
  grouppulse store export --output-file grouppulse-data
  duckdb -c "SELECT * FROM read_parquet('grouppulse-data.daily_metrics.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteMetricsExport(rootCtx, storeManager.GetMetricsStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export metrics store", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the metrics store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the metrics store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  grouppulse store migrate
  grouppulse store migrate --target-version 1
  grouppulse store migrate --target-version 0`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateMetrics(cfg.MetricsBackend, cfg.MetricsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

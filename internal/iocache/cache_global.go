package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/jmoiron/sqlx"
)

// reportCacheTable is the name of the table for report snapshots.
const reportCacheTable = "grouppulse_report_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for report snapshots.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetMetricsDBFilePath returns the path to the SQLite DB file for the metrics warehouse.
func GetMetricsDBFilePath() string {
	return contract.GetMetricsDBFilePath()
}

// InitStores initializes the global manager with the snapshot store and the warehouse.
// An empty backend skips that store. The none warehouse backend leaves the manager
// without a warehouse, so a source must be supplied with UseInput.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, metricsBackend schema.DatabaseBackend, metricsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var err error

		var reportStore contract.CacheStore
		if cacheBackend != "" {
			reportStore, err = NewCacheStore(reportCacheTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize report snapshots: %w", err)
				return
			}
		}

		var metricsStore contract.MetricsStore
		if metricsBackend != "" && metricsBackend != schema.NoneBackend {
			metricsStore, err = NewMetricsStore(metricsBackend, metricsConnStr)
			if err != nil {
				if reportStore != nil {
					_ = reportStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize metrics warehouse: %w", err)
				return
			}
		}

		Manager.Lock()
		Manager.reports = reportStore
		Manager.metrics = metricsStore
		Manager.Unlock()
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// UseInput loads a JSON or CSV file into a MemorySource and makes it the global scoring source.
func UseInput(path string) error {
	records, err := LoadRecordsFile(path)
	if err != nil {
		return err
	}
	Manager.SetSource(NewMemorySource(records))
	return nil
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.reports != nil {
			_ = Manager.reports.Close()
		}
		if Manager.metrics != nil {
			_ = Manager.metrics.Close()
		}
	})
}

// ClearCache clears report snapshots for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, reportCacheTable)
}

// ClearMetrics clears the metrics warehouse for the specified backend, including its schema version.
func ClearMetrics(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, dailyMetricsTable, analysisRunsTable, migrationsTable)
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sqlx.Connect(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}

package iocache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/jmoiron/sqlx"
)

// cacheEntry is one row of the snapshot table.
type cacheEntry struct {
	Key       string `db:"cache_key"`
	Value     []byte `db:"cache_value"`
	Version   int    `db:"cache_version"`
	Timestamp int64  `db:"cache_timestamp"`
}

// CacheStoreImpl handles durable storage of report snapshots using various database backends.
type CacheStoreImpl struct {
	db        *sqlx.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string

	// memory backs the none backend so snapshots stay immutable for the life of the process
	mu     sync.RWMutex
	memory map[string]cacheEntry
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore initializes and returns a new CacheStore based on the backend type.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		return &CacheStoreImpl{
			tableName: tableName,
			backend:   backend,
			memory:    make(map[string]cacheEntry),
		}, nil
	}

	db, err := openDB(backend, connStr, GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schema
	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &CacheStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(64) PRIMARY KEY,
				cache_value LONGBLOB NOT NULL,
				cache_version INT NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BYTEA NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				cache_value BLOB NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves a snapshot by key. A miss returns sql.ErrNoRows.
func (ps *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ps.db == nil {
		ps.mu.RLock()
		defer ps.mu.RUnlock()
		entry, ok := ps.memory[key]
		if !ok {
			return nil, 0, 0, sql.ErrNoRows
		}
		return entry.Value, entry.Version, entry.Timestamp, nil
	}

	var entry cacheEntry
	query := ps.db.Rebind(fmt.Sprintf(`SELECT cache_key, cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = ?`,
		quoteTableName(ps.tableName, ps.backend)))
	if err := ps.db.Get(&entry, query, key); err != nil {
		return nil, 0, 0, err
	}
	return entry.Value, entry.Version, entry.Timestamp, nil
}

// Set inserts or replaces a snapshot.
func (ps *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	entry := cacheEntry{Key: key, Value: value, Version: version, Timestamp: timestamp}
	if ps.db == nil {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		ps.memory[key] = entry
		return nil
	}

	_, err := ps.db.NamedExec(ps.getUpsertQuery(), entry)
	return err
}

// getUpsertQuery returns the named UPSERT query for the backend.
func (ps *CacheStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp)
			VALUES (:cache_key, :cache_value, :cache_version, :cache_timestamp) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp)
			VALUES (:cache_key, :cache_value, :cache_version, :cache_timestamp)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp)
			VALUES (:cache_key, :cache_value, :cache_version, :cache_timestamp)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (ps *CacheStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ps *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}

	if ps.db == nil {
		ps.mu.RLock()
		status.TotalEntries = len(ps.memory)
		ps.mu.RUnlock()
		return status, nil
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)

	if err := ps.db.Get(&status.TotalEntries, fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var bounds struct {
		Oldest int64 `db:"oldest"`
		Newest int64 `db:"newest"`
	}
	boundsQuery := fmt.Sprintf("SELECT MIN(cache_timestamp) AS oldest, MAX(cache_timestamp) AS newest FROM %s", quotedTableName)
	if err := ps.db.Get(&bounds, boundsQuery); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.OldestEntryTime = time.Unix(bounds.Oldest, 0)
	status.LastEntryTime = time.Unix(bounds.Newest, 0)

	status.TableSizeBytes = tableSizeBytes(ps.db, ps.backend, ps.connStr, ps.tableName, status.TotalEntries)
	return status, nil
}

// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// MetricsSource is the read side of the ingestion collaborator.
// Implementations must be deterministic: the same query always yields the same records.
type MetricsSource interface {
	// FetchDailyMetrics returns the record for one group on one day.
	// It returns schema.ErrUnknownGroup when no such record exists.
	FetchDailyMetrics(ctx context.Context, groupID string, date time.Time) (schema.DailyRecord, error)

	// FetchRange returns every record with a date in [start, end], ordered by date then group.
	// An empty groupID selects all groups. Zero start or end leaves that side unbounded.
	FetchRange(ctx context.Context, groupID string, start, end time.Time) ([]schema.DailyRecord, error)

	// FetchByReportID resolves a deterministic report ID back to its daily record.
	FetchByReportID(ctx context.Context, reportID string) (schema.DailyRecord, error)

	// ListGroups returns every group that has at least one record.
	ListGroups(ctx context.Context) ([]schema.GroupInfo, error)
}

// MetricsStore is the durable metrics warehouse. It also tracks analysis runs.
type MetricsStore interface {
	MetricsSource

	// UpsertDailyMetrics writes records keyed by (group, date) and returns how many were written
	UpsertDailyMetrics(ctx context.Context, records []schema.DailyRecord) (int, error)

	// BeginRun creates a new analysis run and returns its unique ID
	BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the analysis run with completion data
	EndRun(runID int64, endTime time.Time, totalReports int) error

	// GetStatus returns status information about the metrics store
	GetStatus() (schema.MetricsStatus, error)

	// GetAllDailyMetrics returns every stored record for export
	GetAllDailyMetrics(ctx context.Context) ([]schema.DailyRecord, error)

	// GetAllAnalysisRuns returns every tracked run for export
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// Close closes the underlying connection
	Close() error
}

// CacheStore defines the interface for report snapshot storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// StoreManager defines the interface for managing stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	// GetReportCache returns the snapshot store, or nil when disabled
	GetReportCache() CacheStore

	// GetMetricsStore returns the warehouse, or nil when disabled
	GetMetricsStore() MetricsStore

	// GetSource returns the source that scoring reads from
	GetSource() MetricsSource
}

package schema

import "time"

// CacheStatus represents the status of the report snapshot store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// MetricsStatus represents the status of the metrics warehouse.
type MetricsStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalGroups   int              `json:"total_groups"`
	TotalDays     int              `json:"total_days"`
	OldestDate    time.Time        `json:"oldest_date"`
	NewestDate    time.Time        `json:"newest_date"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	TotalReports  int              `json:"total_reports"`
	SchemaVersion uint             `json:"schema_version"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// AnalysisRunRecord represents a row from the grouppulse_analysis_runs table.
type AnalysisRunRecord struct {
	RunID         int64
	Command       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	TotalReports  *int
	ConfigParams  *string
}

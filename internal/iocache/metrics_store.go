package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/jmoiron/sqlx"
)

// Table names for the metrics warehouse.
const (
	dailyMetricsTable = "grouppulse_daily_metrics"
	analysisRunsTable = "grouppulse_analysis_runs"
)

const dailyMetricsColumns = `group_id, metric_date, report_id, group_name, total_messages, total_members,
	active_speakers, active_hours, total_hours, top20_percentage, median_response_interval,
	topic_relevance, atmosphere, summary, detail_json, ingested_at`

// dailyMetricsRow is the storage layout of one schema.DailyRecord.
type dailyMetricsRow struct {
	GroupID                string  `db:"group_id"`
	MetricDate             string  `db:"metric_date"`
	ReportID               string  `db:"report_id"`
	GroupName              string  `db:"group_name"`
	TotalMessages          int     `db:"total_messages"`
	TotalMembers           int     `db:"total_members"`
	ActiveSpeakers         int     `db:"active_speakers"`
	ActiveHours            int     `db:"active_hours"`
	TotalHours             int     `db:"total_hours"`
	Top20Percentage        float64 `db:"top20_percentage"`
	MedianResponseInterval float64 `db:"median_response_interval"`
	TopicRelevance         float64 `db:"topic_relevance"`
	Atmosphere             float64 `db:"atmosphere"`
	Summary                string  `db:"summary"`
	DetailJSON             string  `db:"detail_json"`
	IngestedAt             int64   `db:"ingested_at"`
}

func toRow(rec schema.DailyRecord, ingestedAt time.Time) (dailyMetricsRow, error) {
	detail, err := json.Marshal(rec.Detail)
	if err != nil {
		return dailyMetricsRow{}, fmt.Errorf("failed to marshal detail: %w", err)
	}
	date := schema.NormalizeDate(rec.Date)
	return dailyMetricsRow{
		GroupID:                rec.GroupID,
		MetricDate:             date.Format(schema.DateFormat),
		ReportID:               schema.ReportID(rec.GroupID, date),
		GroupName:              rec.GroupName,
		TotalMessages:          rec.Metrics.TotalMessages,
		TotalMembers:           rec.Metrics.TotalMembers,
		ActiveSpeakers:         rec.Metrics.ActiveSpeakers,
		ActiveHours:            rec.Metrics.ActiveHours,
		TotalHours:             rec.Metrics.TotalHours,
		Top20Percentage:        rec.Metrics.Top20Percentage,
		MedianResponseInterval: rec.Metrics.MedianResponseInterval,
		TopicRelevance:         rec.Semantic.TopicRelevance,
		Atmosphere:             rec.Semantic.Atmosphere,
		Summary:                rec.Summary,
		DetailJSON:             string(detail),
		IngestedAt:             ingestedAt.Unix(),
	}, nil
}

func (r dailyMetricsRow) toRecord() (schema.DailyRecord, error) {
	date, err := schema.ParseDate(r.MetricDate)
	if err != nil {
		return schema.DailyRecord{}, fmt.Errorf("failed to parse metric_date %q: %w", r.MetricDate, err)
	}
	rec := schema.DailyRecord{
		GroupID:   r.GroupID,
		GroupName: r.GroupName,
		Date:      date,
		Metrics: schema.BaseMetrics{
			TotalMessages:          r.TotalMessages,
			TotalMembers:           r.TotalMembers,
			ActiveSpeakers:         r.ActiveSpeakers,
			ActiveHours:            r.ActiveHours,
			TotalHours:             r.TotalHours,
			Top20Percentage:        r.Top20Percentage,
			MedianResponseInterval: r.MedianResponseInterval,
		},
		Semantic: schema.SemanticScores{TopicRelevance: r.TopicRelevance, Atmosphere: r.Atmosphere},
		Summary:  r.Summary,
	}
	if r.DetailJSON != "" {
		if err := json.Unmarshal([]byte(r.DetailJSON), &rec.Detail); err != nil {
			return schema.DailyRecord{}, fmt.Errorf("failed to parse detail of %s on %s: %w", r.GroupID, r.MetricDate, err)
		}
	}
	return rec, nil
}

// analysisRunRow is the storage layout of one analysis run.
type analysisRunRow struct {
	RunID         int64          `db:"run_id"`
	Command       string         `db:"command"`
	StartTimeMs   int64          `db:"start_time_ms"`
	EndTimeMs     sql.NullInt64  `db:"end_time_ms"`
	RunDurationMs sql.NullInt64  `db:"run_duration_ms"`
	TotalReports  sql.NullInt64  `db:"total_reports"`
	ConfigParams  sql.NullString `db:"config_params"`
}

// MetricsStoreImpl implements the MetricsStore interface.
type MetricsStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.MetricsStore = &MetricsStoreImpl{} // Compile-time check

// NewMetricsStore opens the warehouse and migrates it to the latest schema.
func NewMetricsStore(backend schema.DatabaseBackend, connStr string) (contract.MetricsStore, error) {
	if backend == schema.NoneBackend {
		return nil, errors.New("the none backend has no metrics warehouse")
	}

	db, err := openDB(backend, connStr, GetMetricsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := migrateOnOpen(db, backend, connStr); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate metrics warehouse: %w", err)
	}

	return &MetricsStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// migrateOnOpen brings a freshly opened warehouse to the latest version.
// SQLite migrates through the store's own handle so in-memory databases work;
// the server backends use a dedicated handle that the migrator may close.
func migrateOnOpen(db *sqlx.DB, backend schema.DatabaseBackend, connStr string) error {
	if backend == schema.SQLiteBackend {
		m, err := newMigrator(db.DB, backend)
		if err != nil {
			return err
		}
		_, err = applyMigrations(m, -1)
		return err
	}

	migrationDB, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	m, err := newMigrator(migrationDB.DB, backend)
	if err != nil {
		_ = migrationDB.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()
	_, err = applyMigrations(m, -1)
	return err
}

// getUpsertQuery returns the named UPSERT query for daily metrics.
func (ms *MetricsStoreImpl) getUpsertQuery() string {
	table := quoteTableName(dailyMetricsTable, ms.backend)
	values := `(:group_id, :metric_date, :report_id, :group_name, :total_messages, :total_members,
		:active_speakers, :active_hours, :total_hours, :top20_percentage, :median_response_interval,
		:topic_relevance, :atmosphere, :summary, :detail_json, :ingested_at)`

	updated := []string{
		"group_name", "total_messages", "total_members", "active_speakers", "active_hours", "total_hours",
		"top20_percentage", "median_response_interval", "topic_relevance", "atmosphere", "summary",
		"detail_json", "ingested_at",
	}
	sets := make([]string, 0, len(updated))

	switch ms.backend {
	case schema.MySQLBackend:
		for _, col := range updated {
			sets = append(sets, fmt.Sprintf("%s = new.%s", col, col))
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s AS new ON DUPLICATE KEY UPDATE %s",
			table, dailyMetricsColumns, values, strings.Join(sets, ", "))
	default: // SQLite and PostgreSQL
		for _, col := range updated {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (group_id, metric_date) DO UPDATE SET %s",
			table, dailyMetricsColumns, values, strings.Join(sets, ", "))
	}
}

// UpsertDailyMetrics validates and writes records in one transaction.
func (ms *MetricsStoreImpl) UpsertDailyMetrics(ctx context.Context, records []schema.DailyRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now()
	rows := make([]dailyMetricsRow, 0, len(records))
	for _, rec := range records {
		if err := validateRecord(rec); err != nil {
			return 0, err
		}
		row, err := toRow(rec, now)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	tx, err := ms.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	query := ms.getUpsertQuery()
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to upsert %s on %s: %w", row.GroupID, row.MetricDate, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit metrics: %w", err)
	}
	return len(rows), nil
}

// selectRecords runs a daily metrics query and converts the rows.
func (ms *MetricsStoreImpl) selectRecords(ctx context.Context, where string, args ...any) ([]schema.DailyRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", dailyMetricsColumns, quoteTableName(dailyMetricsTable, ms.backend))
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY metric_date, group_id"

	var rows []dailyMetricsRow
	if err := ms.db.SelectContext(ctx, &rows, ms.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}

	records := make([]schema.DailyRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchDailyMetrics returns the record for one group on one day.
func (ms *MetricsStoreImpl) FetchDailyMetrics(ctx context.Context, groupID string, date time.Time) (schema.DailyRecord, error) {
	day := schema.NormalizeDate(date).Format(schema.DateFormat)
	records, err := ms.selectRecords(ctx, "group_id = ? AND metric_date = ?", groupID, day)
	if err != nil {
		return schema.DailyRecord{}, err
	}
	if len(records) == 0 {
		return schema.DailyRecord{}, fmt.Errorf("%w: %s on %s", schema.ErrUnknownGroup, groupID, day)
	}
	return records[0], nil
}

// FetchRange returns every record of groupID (or all groups) within [start, end].
func (ms *MetricsStoreImpl) FetchRange(ctx context.Context, groupID string, start, end time.Time) ([]schema.DailyRecord, error) {
	var conds []string
	var args []any
	if groupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, groupID)
	}
	if !start.IsZero() {
		conds = append(conds, "metric_date >= ?")
		args = append(args, schema.NormalizeDate(start).Format(schema.DateFormat))
	}
	if !end.IsZero() {
		conds = append(conds, "metric_date <= ?")
		args = append(args, schema.NormalizeDate(end).Format(schema.DateFormat))
	}
	return ms.selectRecords(ctx, strings.Join(conds, " AND "), args...)
}

// FetchByReportID resolves a report ID through the unique report_id column.
func (ms *MetricsStoreImpl) FetchByReportID(ctx context.Context, reportID string) (schema.DailyRecord, error) {
	records, err := ms.selectRecords(ctx, "report_id = ?", reportID)
	if err != nil {
		return schema.DailyRecord{}, err
	}
	if len(records) == 0 {
		return schema.DailyRecord{}, fmt.Errorf("%w: no report with id %s", schema.ErrUnknownGroup, reportID)
	}
	return records[0], nil
}

// ListGroups summarizes every group in the warehouse.
func (ms *MetricsStoreImpl) ListGroups(ctx context.Context) ([]schema.GroupInfo, error) {
	query := fmt.Sprintf(`SELECT group_id, MAX(group_name) AS group_name, COUNT(*) AS days,
		MIN(metric_date) AS first_date, MAX(metric_date) AS last_date
		FROM %s GROUP BY group_id ORDER BY group_id`, quoteTableName(dailyMetricsTable, ms.backend))

	var rows []struct {
		GroupID   string `db:"group_id"`
		GroupName string `db:"group_name"`
		Days      int    `db:"days"`
		FirstDate string `db:"first_date"`
		LastDate  string `db:"last_date"`
	}
	if err := ms.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]schema.GroupInfo, 0, len(rows))
	for _, row := range rows {
		first, err := schema.ParseDate(row.FirstDate)
		if err != nil {
			return nil, err
		}
		last, err := schema.ParseDate(row.LastDate)
		if err != nil {
			return nil, err
		}
		groups = append(groups, schema.GroupInfo{
			GroupID:   row.GroupID,
			GroupName: row.GroupName,
			Days:      row.Days,
			FirstDate: first,
			LastDate:  last,
		})
	}
	return groups, nil
}

// GetAllDailyMetrics returns every stored record.
func (ms *MetricsStoreImpl) GetAllDailyMetrics(ctx context.Context) ([]schema.DailyRecord, error) {
	return ms.selectRecords(ctx, "")
}

// BeginRun creates a new analysis run and returns its unique ID.
func (ms *MetricsStoreImpl) BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	table := quoteTableName(analysisRunsTable, ms.backend)
	args := []any{command, startTime.UnixMilli(), string(configJSON)}

	var runID int64
	switch ms.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time_ms, config_params) VALUES ($1, $2, $3) RETURNING run_id`, table)
		err = ms.db.QueryRowx(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time_ms, config_params) VALUES (?, ?, ?)`, table)
		var result sql.Result
		result, err = ms.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return runID, nil
}

// EndRun updates the analysis run with completion data.
func (ms *MetricsStoreImpl) EndRun(runID int64, endTime time.Time, totalReports int) error {
	table := quoteTableName(analysisRunsTable, ms.backend)

	var startMs int64
	if err := ms.db.Get(&startMs, ms.db.Rebind(fmt.Sprintf(`SELECT start_time_ms FROM %s WHERE run_id = ?`, table)), runID); err != nil {
		return fmt.Errorf("failed to get start time for run %d: %w", runID, err)
	}

	endMs := endTime.UnixMilli()
	update := ms.db.Rebind(fmt.Sprintf(`UPDATE %s SET end_time_ms = ?, run_duration_ms = ?, total_reports = ? WHERE run_id = ?`, table))
	if _, err := ms.db.Exec(update, endMs, endMs-startMs, totalReports, runID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (ms *MetricsStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	query := fmt.Sprintf(`SELECT run_id, command, start_time_ms, end_time_ms, run_duration_ms, total_reports, config_params
		FROM %s ORDER BY run_id`, quoteTableName(analysisRunsTable, ms.backend))

	var rows []analysisRunRow
	if err := ms.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}

	results := make([]schema.AnalysisRunRecord, 0, len(rows))
	for _, row := range rows {
		record := schema.AnalysisRunRecord{
			RunID:     row.RunID,
			Command:   row.Command,
			StartTime: time.UnixMilli(row.StartTimeMs).UTC(),
		}
		if row.EndTimeMs.Valid {
			end := time.UnixMilli(row.EndTimeMs.Int64).UTC()
			record.EndTime = &end
		}
		if row.RunDurationMs.Valid {
			d := row.RunDurationMs.Int64
			record.RunDurationMs = &d
		}
		if row.TotalReports.Valid {
			n := int(row.TotalReports.Int64)
			record.TotalReports = &n
		}
		if row.ConfigParams.Valid {
			p := row.ConfigParams.String
			record.ConfigParams = &p
		}
		results = append(results, record)
	}
	return results, nil
}

// GetStatus returns status information about the metrics warehouse.
func (ms *MetricsStoreImpl) GetStatus() (schema.MetricsStatus, error) {
	status := schema.MetricsStatus{
		Backend:    string(ms.backend),
		Connected:  ms.db != nil,
		TableSizes: make(map[string]int64),
	}

	metricsTable := quoteTableName(dailyMetricsTable, ms.backend)
	runsTable := quoteTableName(analysisRunsTable, ms.backend)

	var daily struct {
		Groups int            `db:"total_groups"`
		Days   int            `db:"total_days"`
		Oldest sql.NullString `db:"oldest"`
		Newest sql.NullString `db:"newest"`
	}
	dailyQuery := fmt.Sprintf(`SELECT COUNT(DISTINCT group_id) AS total_groups, COUNT(*) AS total_days,
		MIN(metric_date) AS oldest, MAX(metric_date) AS newest FROM %s`, metricsTable)
	if err := ms.db.Get(&daily, dailyQuery); err != nil {
		return status, fmt.Errorf("failed to get daily metrics summary: %w", err)
	}
	status.TotalGroups = daily.Groups
	status.TotalDays = daily.Days
	if daily.Oldest.Valid {
		status.OldestDate, _ = schema.ParseDate(daily.Oldest.String)
	}
	if daily.Newest.Valid {
		status.NewestDate, _ = schema.ParseDate(daily.Newest.String)
	}

	if err := ms.db.Get(&status.TotalRuns, fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if status.TotalRuns > 0 {
		var last struct {
			RunID   int64 `db:"run_id"`
			StartMs int64 `db:"start_time_ms"`
		}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time_ms FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := ms.db.Get(&last, lastQuery); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = last.RunID
		status.LastRunTime = time.UnixMilli(last.StartMs)

		reportsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_reports), 0) FROM %s", runsTable)
		if err := ms.db.Get(&status.TotalReports, reportsQuery); err != nil {
			return status, fmt.Errorf("failed to get total reports: %w", err)
		}
	}

	var version sql.NullInt64
	versionQuery := fmt.Sprintf("SELECT MAX(version) FROM %s", quoteTableName(migrationsTable, ms.backend))
	if err := ms.db.Get(&version, versionQuery); err == nil && version.Valid {
		status.SchemaVersion = uint(version.Int64)
	}

	status.TableSizes[dailyMetricsTable] = int64(status.TotalDays)
	status.TableSizes[analysisRunsTable] = int64(status.TotalRuns)
	return status, nil
}

// Close closes the underlying connection.
func (ms *MetricsStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

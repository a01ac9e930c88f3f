// Package parquet provides data structures and functions for exporting grouppulse
// reports and warehouse data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/grouppulse/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single scoring run with metadata.
// This struct maps to the grouppulse_analysis_runs database table.
type AnalysisRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Command is the surface that triggered the run (reports, trend, serve, ...)
	Command string `parquet:"command,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// TotalReports is the number of reports built in this run (nullable)
	TotalReports *int32 `parquet:"total_reports,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DailyMetrics represents one group on one day as stored in the warehouse.
// This struct maps to the grouppulse_daily_metrics database table.
type DailyMetrics struct {
	GroupID                string    `parquet:"group_id,snappy"`
	GroupName              string    `parquet:"group_name,snappy"`
	MetricDate             time.Time `parquet:"metric_date,snappy"`
	ReportID               string    `parquet:"report_id,snappy"`
	TotalMessages          int32     `parquet:"total_messages,snappy"`
	TotalMembers           int32     `parquet:"total_members,snappy"`
	ActiveSpeakers         int32     `parquet:"active_speakers,snappy"`
	ActiveHours            int32     `parquet:"active_hours,snappy"`
	TotalHours             int32     `parquet:"total_hours,snappy"`
	Top20Percentage        float64   `parquet:"top20_percentage,snappy"`
	MedianResponseInterval float64   `parquet:"median_response_interval,snappy"`
	TopicRelevance         float64   `parquet:"topic_relevance,snappy"`
	Atmosphere             float64   `parquet:"atmosphere,snappy"`
	Summary                *string   `parquet:"summary,optional,snappy"`
}

// ReportRow represents one aggregated row of the reporting view.
type ReportRow struct {
	GroupID               string    `parquet:"group_id,snappy"`
	GroupName             string    `parquet:"group_name,snappy"`
	Granularity           string    `parquet:"granularity,snappy"`
	Period                string    `parquet:"period,snappy"`
	PeriodStart           time.Time `parquet:"period_start,snappy"`
	PeriodEnd             time.Time `parquet:"period_end,snappy"`
	Days                  int32     `parquet:"days,snappy"`
	MessageCount          int64     `parquet:"message_count,snappy"`
	ActiveSpeakers        int32     `parquet:"active_speakers,snappy"`
	Scored                bool      `parquet:"scored,snappy"`
	OverallScore          *int32    `parquet:"overall_score,optional,snappy"`
	SpeakerPenetration    float64   `parquet:"speaker_penetration,snappy"`
	AvgMessagesPerSpeaker float64   `parquet:"avg_messages_per_speaker,snappy"`
	ResponseSpeed         float64   `parquet:"response_speed,snappy"`
	TimeDistribution      float64   `parquet:"time_distribution,snappy"`
	TopicRelevance        float64   `parquet:"topic_relevance,snappy"`
	Atmosphere            float64   `parquet:"atmosphere,snappy"`
	IsNewGroup            bool      `parquet:"is_new_group,snappy"`
	IsMicroGroup          bool      `parquet:"is_micro_group,snappy"`
	HasConflictRisk       bool      `parquet:"has_conflict_risk,snappy"`
	RiskMessage           *string   `parquet:"risk_message,optional,snappy"`
	Summary               *string   `parquet:"summary,optional,snappy"`
	LatestReportID        string    `parquet:"latest_report_id,snappy"`
}

// writeParquet writes rows to outputPath using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDailyMetricsParquet writes a slice of DailyMetrics structs to a Parquet file.
func WriteDailyMetricsParquet(data []DailyMetrics, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteReportRowsParquet writes a slice of ReportRow structs to a Parquet file.
func WriteReportRowsParquet(data []ReportRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		var total *int32
		if record.TotalReports != nil {
			n := int32(*record.TotalReports)
			total = &n
		}
		result[i] = AnalysisRun{
			RunID:         record.RunID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalReports:  total,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertDailyRecords converts warehouse records to DailyMetrics for Parquet export.
func ConvertDailyRecords(records []schema.DailyRecord) []DailyMetrics {
	result := make([]DailyMetrics, len(records))
	for i, rec := range records {
		result[i] = DailyMetrics{
			GroupID:                rec.GroupID,
			GroupName:              rec.GroupName,
			MetricDate:             schema.NormalizeDate(rec.Date),
			ReportID:               schema.ReportID(rec.GroupID, rec.Date),
			TotalMessages:          int32(rec.Metrics.TotalMessages),
			TotalMembers:           int32(rec.Metrics.TotalMembers),
			ActiveSpeakers:         int32(rec.Metrics.ActiveSpeakers),
			ActiveHours:            int32(rec.Metrics.ActiveHours),
			TotalHours:             int32(rec.Metrics.TotalHours),
			Top20Percentage:        rec.Metrics.Top20Percentage,
			MedianResponseInterval: rec.Metrics.MedianResponseInterval,
			TopicRelevance:         rec.Semantic.TopicRelevance,
			Atmosphere:             rec.Semantic.Atmosphere,
			Summary:                optionalString(rec.Summary),
		}
	}
	return result
}

// ConvertReportRows converts aggregated rows for Parquet export.
// Unscored rows carry a null overall score.
func ConvertReportRows(rows []schema.ReportRow) []ReportRow {
	result := make([]ReportRow, len(rows))
	for i, row := range rows {
		var overall *int32
		if row.Scored {
			v := int32(row.OverallScore)
			overall = &v
		}
		result[i] = ReportRow{
			GroupID:               row.GroupID,
			GroupName:             row.GroupName,
			Granularity:           string(row.Granularity),
			Period:                row.Label,
			PeriodStart:           row.PeriodStart,
			PeriodEnd:             row.PeriodEnd,
			Days:                  int32(row.Days),
			MessageCount:          int64(row.MessageCount),
			ActiveSpeakers:        int32(row.ActiveSpeakers),
			Scored:                row.Scored,
			OverallScore:          overall,
			SpeakerPenetration:    row.Breakdown.SpeakerPenetration,
			AvgMessagesPerSpeaker: row.Breakdown.AvgMessagesPerSpeaker,
			ResponseSpeed:         row.Breakdown.ResponseSpeed,
			TimeDistribution:      row.Breakdown.TimeDistribution,
			TopicRelevance:        row.Breakdown.TopicRelevance,
			Atmosphere:            row.Breakdown.Atmosphere,
			IsNewGroup:            row.Risk.IsNewGroup,
			IsMicroGroup:          row.Risk.IsMicroGroup,
			HasConflictRisk:       row.Risk.HasConflictRisk,
			RiskMessage:           optionalString(row.Risk.RiskMessage),
			Summary:               optionalString(row.Summary),
			LatestReportID:        row.LatestReportID,
		}
	}
	return result
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

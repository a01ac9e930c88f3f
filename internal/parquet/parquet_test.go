package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/grouppulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file back into T.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err, "Should be able to open output file")
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:    "analysis runs",
			model:   new(AnalysisRun),
			columns: []string{"run_id", "command", "start_time", "end_time", "run_duration_ms", "total_reports", "config_params"},
		},
		{
			name:  "daily metrics",
			model: new(DailyMetrics),
			columns: []string{
				"group_id", "group_name", "metric_date", "report_id", "total_messages", "total_members",
				"active_speakers", "active_hours", "total_hours", "top20_percentage",
				"median_response_interval", "topic_relevance", "atmosphere", "summary",
			},
		},
		{
			name:  "report rows",
			model: new(ReportRow),
			columns: []string{
				"group_id", "granularity", "period", "period_start", "period_end", "days",
				"message_count", "active_speakers", "scored", "overall_score", "has_conflict_risk",
				"risk_message", "latest_report_id",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "Column %s should exist in schema", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis_runs.parquet")

	start := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int64(1500)
	reports := 12
	params := `{"granularity":"week"}`
	records := []schema.AnalysisRunRecord{
		{RunID: 1, Command: "reports", StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalReports: &reports, ConfigParams: &params},
		{RunID: 2, Command: "trend", StartTime: start.Add(time.Hour)}, // still running
	}

	data := ConvertAnalysisRunRecords(records)
	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	readData := readAll[AnalysisRun](t, outputPath)
	require.Len(t, readData, 2)

	assert.Equal(t, int64(1), readData[0].RunID)
	assert.Equal(t, "reports", readData[0].Command)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, end, *readData[0].EndTime, time.Millisecond)
	require.NotNil(t, readData[0].TotalReports)
	assert.Equal(t, int32(12), *readData[0].TotalReports)
	require.NotNil(t, readData[0].ConfigParams)
	assert.Equal(t, params, *readData[0].ConfigParams)

	assert.Nil(t, readData[1].EndTime, "EndTime should be nil")
	assert.Nil(t, readData[1].RunDurationMs, "RunDurationMs should be nil")
	assert.Nil(t, readData[1].TotalReports, "TotalReports should be nil")
	assert.Nil(t, readData[1].ConfigParams, "ConfigParams should be nil")
}

func TestWriteDailyMetricsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "daily_metrics.parquet")
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []schema.DailyRecord{
		{
			GroupID:   "g1",
			GroupName: "Gophers",
			Date:      date,
			Metrics:   schema.BaseMetrics{TotalMessages: 100, TotalMembers: 50, ActiveSpeakers: 25, ActiveHours: 10, TotalHours: 12, MedianResponseInterval: 150},
			Semantic:  schema.SemanticScores{TopicRelevance: 80, Atmosphere: 20},
			Summary:   "busy day",
		},
		{GroupID: "g2", Date: date, Metrics: schema.BaseMetrics{TotalMessages: 1}},
	}

	require.NoError(t, WriteDailyMetricsParquet(ConvertDailyRecords(records), outputPath))

	readData := readAll[DailyMetrics](t, outputPath)
	require.Len(t, readData, 2)
	assert.Equal(t, "g1", readData[0].GroupID)
	assert.Equal(t, schema.ReportID("g1", date), readData[0].ReportID)
	assert.Equal(t, int32(100), readData[0].TotalMessages)
	assert.Equal(t, 150.0, readData[0].MedianResponseInterval)
	require.NotNil(t, readData[0].Summary)
	assert.Equal(t, "busy day", *readData[0].Summary)
	assert.Nil(t, readData[1].Summary)
}

func TestWriteReportRowsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "rows.parquet")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []schema.ReportRow{
		{
			GroupID: "g1", Granularity: schema.WeekGranularity, Label: "2024-W01",
			PeriodStart: start, PeriodEnd: start.AddDate(0, 0, 6), Days: 7, MessageCount: 280,
			Scored: true, OverallScore: 54,
			Risk: schema.RiskStatus{HasConflictRisk: true, RiskMessage: "low atmosphere"},
		},
		{GroupID: "g2", Granularity: schema.WeekGranularity, Label: "2024-W01", PeriodStart: start, Days: 3},
	}

	require.NoError(t, WriteReportRowsParquet(ConvertReportRows(rows), outputPath))

	readData := readAll[ReportRow](t, outputPath)
	require.Len(t, readData, 2)
	require.NotNil(t, readData[0].OverallScore)
	assert.Equal(t, int32(54), *readData[0].OverallScore)
	assert.Equal(t, int64(280), readData[0].MessageCount)
	assert.True(t, readData[0].HasConflictRisk)
	assert.Equal(t, "week", readData[0].Granularity)
	assert.Nil(t, readData[1].OverallScore, "unscored rows have no overall score")
	assert.Nil(t, readData[1].RiskMessage)
}

func TestWriteParquetEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteReportRowsParquet([]ReportRow{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "An empty file still carries a footer")
	assert.Empty(t, readAll[ReportRow](t, outputPath))
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteAnalysisRunsParquet(nil, "/nonexistent/directory/runs.parquet")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

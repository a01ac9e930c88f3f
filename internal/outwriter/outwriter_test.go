package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(schema.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func outputConfig(t *testing.T, mode schema.OutputMode, file string) *contract.Config {
	t.Helper()
	return &contract.Config{
		Output:       mode,
		OutputFile:   filepath.Join(t.TempDir(), file),
		Precision:    1,
		Width:        120,
		Granularity:  schema.DayGranularity,
		Workers:      2,
		CacheBackend: schema.NoneBackend,
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

var exampleBreakdown = schema.ScoreBreakdown{
	SpeakerPenetration:    50,
	AvgMessagesPerSpeaker: 20,
	ResponseSpeed:         50,
	TimeDistribution:      83,
	TopicRelevance:        80,
	Atmosphere:            20,
}

func sampleRows() []schema.ReportRow {
	return []schema.ReportRow{
		{
			GroupID: "g1", GroupName: "Book club", Granularity: schema.DayGranularity,
			PeriodStart: day("2024-03-10"), PeriodEnd: day("2024-03-10"), Label: "2024-03-10",
			Days: 1, MessageCount: 100, ActiveSpeakers: 5, Scored: true, OverallScore: 54,
			Breakdown: exampleBreakdown, Risk: schema.RiskStatus{HasConflictRisk: true},
			LatestReportID: "r1", LatestDate: day("2024-03-10"),
		},
		{
			GroupID: "g2", GroupName: "Ops", Granularity: schema.DayGranularity,
			PeriodStart: day("2024-03-10"), PeriodEnd: day("2024-03-10"), Label: "2024-03-10",
			Days: 1, MessageCount: 3, ActiveSpeakers: 1, Scored: false,
			Risk:           schema.RiskStatus{IsNewGroup: true, IsMicroGroup: true},
			LatestReportID: "r2", LatestDate: day("2024-03-10"),
		},
	}
}

func sampleView() schema.GroupReportView {
	report := schema.AnalysisReport{
		ID: "r1", GroupID: "g1", GroupName: "Book club", Date: day("2024-03-10"),
		Metrics: schema.BaseMetrics{
			TotalMessages: 100, TotalMembers: 10, ActiveSpeakers: 5,
			ActiveHours: 20, TotalHours: 24, Top20Percentage: 40, MedianResponseInterval: 150,
		},
		Scored: true, Breakdown: exampleBreakdown, OverallScore: 54,
		Risk: schema.RiskStatus{HasConflictRisk: true, RiskMessage: "Atmosphere score is 20, below the meltdown threshold of 30"},
		Detail: schema.ReportDetail{
			MemberStats:    []schema.MemberStat{{Name: "ann", Messages: 10}, {Name: "bob", Messages: 60}},
			HourlyActivity: []int{1, 0, 3},
			MessageTypes:   map[string]int{"text": 90, "image": 10},
		},
		Thresholds:        schema.DefaultThresholds(),
		ThresholdsVersion: 1,
	}
	return schema.GroupReportView{
		Report:        report,
		Contributions: report.Breakdown.Contributions(),
		Trend: schema.TrendResult{
			GroupID: "g1", Metric: schema.TrendOverall, LookbackDays: 7,
			Start: day("2024-03-09"), End: day("2024-03-10"),
			Points: []schema.TrendPoint{
				{Date: day("2024-03-09")},
				{Date: day("2024-03-10"), Value: 54, Scored: true},
			},
		},
	}
}

func TestPrintReportRows(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := outputConfig(t, schema.JSONOut, "rows.json")
		require.NoError(t, PrintReportRows(sampleRows(), cfg, time.Second))

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &got))
		require.Len(t, got, 2)
		assert.Equal(t, schema.WatchLabel, got[0]["health_label"])
		assert.Equal(t, float64(54), got[0]["overall_score"])
		assert.Equal(t, schema.ExcludedLabel, got[1]["health_label"])
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputConfig(t, schema.CSVOut, "rows.csv")
		require.NoError(t, PrintReportRows(sampleRows(), cfg, time.Second))

		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Len(t, records[0], 21)
		assert.Equal(t, "54", records[1][9])
		assert.Equal(t, "conflict", records[1][17])
		assert.Equal(t, "-", records[2][9])
		assert.Equal(t, "new|micro", records[2][17])
	})

	t.Run("text with detail and explain", func(t *testing.T) {
		cfg := outputConfig(t, schema.TextOut, "rows.txt")
		cfg.Detail = true
		cfg.Explain = true
		require.NoError(t, PrintReportRows(sampleRows(), cfg, time.Second))

		out := readOutput(t, cfg)
		assert.Contains(t, out, "Book club")
		assert.Contains(t, out, "83.0")
		assert.Contains(t, out, "topic_relevance > penetration > time_distribution")
		assert.Contains(t, out, "Not scored")
		assert.Contains(t, out, "Showing 2 day rows (total messages: 103)")
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := outputConfig(t, schema.ParquetOut, "rows.parquet")
		require.NoError(t, PrintReportRows(sampleRows(), cfg, time.Second))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestPrintGroupReport(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cfg := outputConfig(t, schema.TextOut, "report.txt")
		cfg.Explain = true
		require.NoError(t, PrintGroupReport(sampleView(), cfg, time.Millisecond))

		out := readOutput(t, cfg)
		assert.Contains(t, out, "Group: Book club (g1)")
		assert.Contains(t, out, "Thresholds v1")
		assert.Contains(t, out, "meltdown")
		assert.Contains(t, out, "Top factors: topic_relevance > penetration > time_distribution")
		assert.Contains(t, out, "Hourly activity: 00:1 01:0 02:3")
		assert.Less(t, strings.Index(out, "bob"), strings.Index(out, "ann"), "members sorted by messages")
		assert.Contains(t, out, "image")
		assert.Contains(t, out, "Trend (overall, last 7 days)")
	})

	t.Run("text unscored", func(t *testing.T) {
		view := sampleView()
		view.Report.Scored = false
		cfg := outputConfig(t, schema.TextOut, "report.txt")
		require.NoError(t, PrintGroupReport(view, cfg, time.Millisecond))
		assert.Contains(t, readOutput(t, cfg), "Not scored")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputConfig(t, schema.CSVOut, "report.csv")
		require.NoError(t, PrintGroupReport(sampleView(), cfg, time.Millisecond))

		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 7)
		assert.Equal(t, []string{"r1", "g1", "2024-03-10", "54", schema.WatchLabel, "penetration", "50.0", "0.21", "10.5"}, records[1])
	})

	t.Run("json", func(t *testing.T) {
		cfg := outputConfig(t, schema.JSONOut, "report.json")
		require.NoError(t, PrintGroupReport(sampleView(), cfg, time.Millisecond))

		var got struct {
			HealthLabel string                `json:"health_label"`
			Report      schema.AnalysisReport `json:"report"`
			Trend       schema.TrendResult    `json:"trend"`
			Contrib     map[string]float64    `json:"contributions"`
		}
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &got))
		assert.Equal(t, schema.WatchLabel, got.HealthLabel)
		assert.Equal(t, 54, got.Report.OverallScore)
		assert.Len(t, got.Trend.Points, 2)
		assert.InDelta(t, 22.4, got.Contrib["topic_relevance"], 1e-9)
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := outputConfig(t, schema.ParquetOut, "report.parquet")
		err := PrintGroupReport(sampleView(), cfg, time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only supported for report rows")
	})
}

func TestPrintTrend(t *testing.T) {
	result := sampleView().Trend

	t.Run("text", func(t *testing.T) {
		cfg := outputConfig(t, schema.TextOut, "trend.txt")
		require.NoError(t, PrintTrend(result, cfg, time.Millisecond))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "Trend: overall for g1 (2024-03-09 → 2024-03-10)")
		assert.Contains(t, out, "54.0")
		assert.Contains(t, out, "Showing 2 days over a 7 day lookback")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := outputConfig(t, schema.CSVOut, "trend.csv")
		require.NoError(t, PrintTrend(result, cfg, time.Millisecond))
		assert.Equal(t,
			"group_id,metric,date,value,scored\ng1,overall,2024-03-09,0.0,false\ng1,overall,2024-03-10,54.0,true\n",
			readOutput(t, cfg))
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := outputConfig(t, schema.ParquetOut, "trend.parquet")
		require.Error(t, PrintTrend(result, cfg, time.Millisecond))
	})
}

func TestTrendRows(t *testing.T) {
	fmtFloat, _ := createFormatters(0)
	rows := trendRows(sampleView().Trend, fmtFloat)
	assert.Equal(t, [][]string{{"2024-03-09", "-"}, {"2024-03-10", "54"}}, rows)
}

func TestPrintGroups(t *testing.T) {
	groups := []schema.GroupInfo{
		{GroupID: "g1", GroupName: "Book club", Days: 3, FirstDate: day("2024-03-08"), LastDate: day("2024-03-10"), Scored: true},
		{GroupID: "g2", GroupName: "Ops", Days: 1, FirstDate: day("2024-03-10"), LastDate: day("2024-03-10")},
	}

	cfg := outputConfig(t, schema.CSVOut, "groups.csv")
	require.NoError(t, PrintGroups(groups, cfg, time.Millisecond))
	assert.Equal(t,
		"group_id,group_name,days,first_date,last_date,scored\ng1,Book club,3,2024-03-08,2024-03-10,true\ng2,Ops,1,2024-03-10,2024-03-10,false\n",
		readOutput(t, cfg))

	cfg = outputConfig(t, schema.TextOut, "groups.txt")
	require.NoError(t, PrintGroups(groups, cfg, time.Millisecond))
	assert.Contains(t, readOutput(t, cfg), "Showing 2 groups")

	cfg = outputConfig(t, schema.ParquetOut, "groups.parquet")
	assert.Error(t, PrintGroups(groups, cfg, time.Millisecond))
}

func TestPrintMetricsDefinitions(t *testing.T) {
	weights := schema.DefaultDimensionWeights()

	cfg := outputConfig(t, schema.TextOut, "metrics.txt")
	require.NoError(t, PrintMetricsDefinitions(weights, cfg))
	out := readOutput(t, cfg)
	assert.Contains(t, out, "Score = round(0.6*(0.35*penetration+0.25*avg_messages+0.20*response_speed+0.20*time_distribution) + 0.4*(0.70*topic_relevance+0.30*atmosphere))")
	assert.Contains(t, out, "Healthy >= 80")

	cfg = outputConfig(t, schema.CSVOut, "metrics.csv")
	require.NoError(t, PrintMetricsDefinitions(weights, cfg))
	records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, []string{"topic_relevance", "Topic relevance", "semantic", "0.70", "0.28"}, records[5][:5])

	cfg = outputConfig(t, schema.JSONOut, "metrics.json")
	require.NoError(t, PrintMetricsDefinitions(weights, cfg))
	var model metricsRenderModel
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &model))
	assert.Len(t, model.Dimensions, 6)
	assert.InDelta(t, 0.6, model.StatisticalWeight, 1e-9)
}

func TestPrintThresholds(t *testing.T) {
	scoring := schema.GroupScoringConfig{Mode: schema.ParticipateExclude, GroupIDs: []string{"g2", "g3"}}

	cfg := outputConfig(t, schema.CSVOut, "th.csv")
	require.NoError(t, PrintThresholds(schema.DefaultThresholds(), 3, scoring, cfg))
	out := readOutput(t, cfg)
	assert.Contains(t, out, "version,3\n")
	assert.Contains(t, out, "atmosphere_meltdown_threshold,30\n")
	assert.Contains(t, out, "scoring_groups,\"g2,g3\"\n")

	cfg = outputConfig(t, schema.TextOut, "th.txt")
	require.NoError(t, PrintThresholds(schema.DefaultThresholds(), 3, scoring, cfg))
	out = readOutput(t, cfg)
	assert.Contains(t, out, "Thresholds (version 3)")
	assert.Contains(t, out, "exclude")

	cfg = outputConfig(t, schema.JSONOut, "th.json")
	require.NoError(t, PrintThresholds(schema.DefaultThresholds(), 3, scoring, cfg))
	var got thresholdsRenderModel
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &got))
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, scoring, got.Scoring)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		detail  bool
		explain bool
		want    int
	}{
		{"narrow clamps to minimum", 60, false, false, 12},
		{"wide clamps to maximum", 300, false, false, 40},
		{"plain", 100, false, false, 20},
		{"detail eats space", 150, true, false, 22},
		{"explain on top", 200, true, true, 37},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width, Detail: tt.detail, Explain: tt.explain}
			assert.Equal(t, tt.want, getMaxTableNameWidth(cfg))
		})
	}
}

func TestFormatBound(t *testing.T) {
	assert.Equal(t, "beginning", formatBound(time.Time{}, "beginning"))
	assert.Equal(t, "2024-03-10", formatBound(day("2024-03-10"), "latest"))
}

func TestPrintCheckResult(t *testing.T) {
	failed := schema.CheckResult{
		MinScore: 60, FailOnConflict: true, TotalGroups: 8, CheckedGroups: 7,
		Violations: []schema.CheckViolation{
			{GroupID: "g1", GroupName: "Book club", Date: day("2024-03-10"), Score: 54, Reason: "score 54 < minimum 60"},
			{GroupID: "g1", GroupName: "Book club", Date: day("2024-03-10"), Score: 54, Reason: "conflict risk"},
		},
	}
	for i := range 5 {
		failed.Violations = append(failed.Violations, schema.CheckViolation{GroupID: "g" + strconv.Itoa(i+2), Score: 10, Reason: "score 10 < minimum 60"})
	}

	cfg := outputConfig(t, schema.TextOut, "check.txt")
	require.NoError(t, PrintCheckResult(failed, cfg, time.Millisecond))
	out := readOutput(t, cfg)
	assert.Contains(t, out, "Health check failed: 7 violation(s)")
	assert.Contains(t, out, "Book club on 2024-03-10: conflict risk")
	assert.Contains(t, out, "... and 2 more")
	assert.Contains(t, out, "7 scored of 8")

	passed := schema.CheckResult{MinScore: 40, TotalGroups: 1, CheckedGroups: 1, MinObserved: 54, AvgObserved: 54, Passed: true}
	cfg = outputConfig(t, schema.TextOut, "check.txt")
	require.NoError(t, PrintCheckResult(passed, cfg, time.Millisecond))
	assert.Contains(t, readOutput(t, cfg), "All groups passed (min=54, avg=54.0)")

	cfg = outputConfig(t, schema.CSVOut, "check.csv")
	require.NoError(t, PrintCheckResult(failed, cfg, time.Millisecond))
	records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 8)
	assert.Equal(t, []string{"g1", "Book club", "2024-03-10", "54", "conflict risk"}, records[2])
}

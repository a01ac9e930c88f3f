package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/grouppulse/internal/iocache"
	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleSource holds g1 for a full ISO week and g2 for a single day.
func sampleSource() *iocache.MemorySource {
	var records []schema.DailyRecord
	for _, d := range []string{"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-10"} {
		records = append(records, exampleRecord("g1", d))
	}
	small := exampleRecord("g2", "2024-03-10")
	small.Metrics.TotalMessages = 2
	small.Metrics.TotalMembers = 2
	records = append(records, small)
	return iocache.NewMemorySource(records)
}

func sampleManager() *iocache.CacheStoreManager {
	return iocache.NewStoreManager(nil, nil, sampleSource())
}

func TestGetPeriodReportsResults(t *testing.T) {
	ctx := t.Context()

	t.Run("week rows per group", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Granularity = schema.WeekGranularity
		rows, err := GetPeriodReportsResults(ctx, cfg, sampleManager())
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byGroup := map[string]schema.ReportRow{}
		for _, r := range rows {
			byGroup[r.GroupID] = r
		}
		assert.Equal(t, 4, byGroup["g1"].Days)
		assert.Equal(t, 400, byGroup["g1"].MessageCount)
		assert.Equal(t, 54, byGroup["g1"].OverallScore)
		assert.Equal(t, "2024-W10", byGroup["g1"].Label)
		assert.True(t, byGroup["g2"].Risk.IsNewGroup)
		assert.True(t, byGroup["g2"].Risk.IsMicroGroup)
	})

	t.Run("date range and group filter", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		cfg.StartTime = day("2024-03-05")
		cfg.EndTime = day("2024-03-06")
		rows, err := GetPeriodReportsResults(ctx, cfg, sampleManager())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2024-03-05", rows[0].Label)
	})

	t.Run("unknown group yields no rows", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "nope"
		rows, err := GetPeriodReportsResults(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("no source", func(t *testing.T) {
		_, err := GetPeriodReportsResults(ctx, testConfig(t), iocache.NewStoreManager(nil, nil, nil))
		assert.ErrorIs(t, err, errNoSource)
		_, err = GetPeriodReportsResults(ctx, testConfig(t), nil)
		assert.ErrorIs(t, err, errNoSource)
	})
}

func TestGetGroupReportResult(t *testing.T) {
	ctx := t.Context()

	t.Run("latest day by default", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		view, err := GetGroupReportResult(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.Equal(t, day("2024-03-10"), view.Report.Date)
		assert.Equal(t, 54, view.Report.OverallScore)
		assert.True(t, view.Report.Risk.HasConflictRisk)
		assert.InDelta(t, 22.4, view.Contributions[schema.BreakdownTopicRelevance], 1e-9)

		// 03-03..03-10 holds four days of data
		assert.Equal(t, day("2024-03-03"), view.Trend.Start)
		assert.Len(t, view.Trend.Points, 4)
	})

	t.Run("explicit date", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		cfg.ReportDate = day("2024-03-05")
		view, err := GetGroupReportResult(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.Equal(t, schema.ReportID("g1", day("2024-03-05")), view.Report.ID)
		assert.Len(t, view.Trend.Points, 2)
	})

	t.Run("by report id", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ReportID = schema.ReportID("g2", day("2024-03-10"))
		view, err := GetGroupReportResult(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.Equal(t, "g2", view.Report.GroupID)
		assert.Equal(t, "g2", view.Trend.GroupID)
	})

	t.Run("unknown group", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "nope"
		_, err := GetGroupReportResult(ctx, cfg, sampleManager())
		assert.ErrorIs(t, err, schema.ErrUnknownGroup)
	})

	t.Run("unknown date", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		cfg.ReportDate = day("2023-01-01")
		_, err := GetGroupReportResult(ctx, cfg, sampleManager())
		assert.ErrorIs(t, err, schema.ErrUnknownGroup)
	})

	t.Run("unknown report id", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ReportID = "missing"
		_, err := GetGroupReportResult(ctx, cfg, sampleManager())
		assert.ErrorIs(t, err, schema.ErrUnknownGroup)
	})

	t.Run("no group or id", func(t *testing.T) {
		_, err := GetGroupReportResult(ctx, testConfig(t), sampleManager())
		require.Error(t, err)
	})

	t.Run("served from snapshot by id", func(t *testing.T) {
		cache, err := iocache.NewCacheStore("snapshots", schema.NoneBackend, "")
		require.NoError(t, err)
		mgr := iocache.NewStoreManager(cache, nil, sampleSource())

		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		first, err := GetGroupReportResult(ctx, cfg, mgr)
		require.NoError(t, err)

		byID := testConfig(t)
		byID.ReportID = first.Report.ID
		second, err := GetGroupReportResult(ctx, byID, mgr)
		require.NoError(t, err)
		assert.Equal(t, first.Report.GeneratedAt, second.Report.GeneratedAt)
	})
}

func TestGetTrendResults(t *testing.T) {
	ctx := t.Context()

	t.Run("messages metric", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		cfg.TrendMetric = schema.TrendMessages
		cfg.LookbackDays = 5
		result, err := GetTrendResults(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.Equal(t, day("2024-03-05"), result.Start)
		assert.Equal(t, day("2024-03-10"), result.End)
		assert.Equal(t, "Group g1", result.GroupName)
		require.Len(t, result.Points, 3)
		for _, p := range result.Points {
			assert.InDelta(t, 100.0, p.Value, 1e-9)
		}
	})

	t.Run("explicit end", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "g1"
		cfg.TrendEnd = day("2024-03-05")
		result, err := GetTrendResults(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.Len(t, result.Points, 2)
	})

	t.Run("unknown group is empty", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GroupFilter = "nope"
		result, err := GetTrendResults(ctx, cfg, sampleManager())
		require.NoError(t, err)
		assert.NotNil(t, result.Points)
		assert.Empty(t, result.Points)
	})

	t.Run("group required", func(t *testing.T) {
		_, err := GetTrendResults(ctx, testConfig(t), sampleManager())
		require.Error(t, err)
	})
}

func TestGetGroupsResults(t *testing.T) {
	cfg := testConfig(t)
	_, err := cfg.Scoring.Update(schema.GroupScoringConfig{Mode: schema.ParticipateExclude, GroupIDs: []string{"g2"}})
	require.NoError(t, err)

	groups, err := GetGroupsResults(t.Context(), cfg, sampleManager())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].GroupID)
	assert.True(t, groups[0].Scored)
	assert.Equal(t, 4, groups[0].Days)
	assert.False(t, groups[1].Scored)
}

func TestScoreRecord(t *testing.T) {
	cfg := testConfig(t)
	view, err := ScoreRecord(cfg, exampleRecord("adhoc", "2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 54, view.Report.OverallScore)
	assert.True(t, view.Report.Risk.HasConflictRisk)
	assert.Equal(t, int64(1), view.Report.ThresholdsVersion)
	assert.NotNil(t, view.Trend.Points)

	bad := exampleRecord("adhoc", "2024-03-10")
	bad.Semantic.Atmosphere = 101
	_, err = ScoreRecord(cfg, bad)
	assert.ErrorIs(t, err, schema.ErrInvalidMetric)
}

func TestExecuteCommandsWriteJSON(t *testing.T) {
	ctx := WithSuppressHeader(t.Context())
	mgr := sampleManager()

	tests := []struct {
		name string
		run  func(out string) error
		key  string
	}{
		{"reports", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			return ExecutePeriodReports(ctx, cfg, mgr)
		}, ""},
		{"report", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			cfg.GroupFilter = "g1"
			return ExecuteGroupReport(ctx, cfg, mgr)
		}, "report"},
		{"trend", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			cfg.GroupFilter = "g1"
			return ExecuteTrend(ctx, cfg, mgr)
		}, "points"},
		{"groups", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			return ExecuteGroups(ctx, cfg, mgr)
		}, ""},
		{"score", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			return ExecuteScore(ctx, cfg, exampleRecord("adhoc", "2024-03-10"))
		}, "contributions"},
		{"metrics", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			return ExecuteMetrics(ctx, cfg)
		}, "formula"},
		{"thresholds", func(out string) error {
			cfg := testConfig(t)
			cfg.OutputFile = out
			return ExecuteThresholds(ctx, cfg)
		}, "thresholds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), tt.name+".json")
			require.NoError(t, tt.run(out))

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			var decoded any
			require.NoError(t, json.Unmarshal(data, &decoded))
			if tt.key != "" {
				assert.Contains(t, decoded, tt.key)
			} else {
				assert.NotEmpty(t, decoded)
			}
		})
	}
}

func TestExecuteIngest(t *testing.T) {
	ctx := t.Context()

	records := []schema.DailyRecord{exampleRecord("g1", "2024-03-10"), exampleRecord("g1", "2024-03-11")}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Run("stores records", func(t *testing.T) {
		store, err := iocache.NewMetricsStore(schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		mgr := iocache.NewStoreManager(nil, store, nil)

		require.NoError(t, ExecuteIngest(ctx, mgr, path))

		groups, err := GetGroupsResults(ctx, testConfig(t), mgr)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, 2, groups[0].Days)
	})

	t.Run("requires a warehouse", func(t *testing.T) {
		require.Error(t, ExecuteIngest(ctx, iocache.NewStoreManager(nil, nil, nil), path))
		require.Error(t, ExecuteIngest(ctx, nil, path))
	})

	t.Run("bad file", func(t *testing.T) {
		store, err := iocache.NewMetricsStore(schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		require.Error(t, ExecuteIngest(ctx, iocache.NewStoreManager(nil, store, nil), filepath.Join(t.TempDir(), "missing.json")))
	})
}

func TestGetPeriodReportsResultsRanked(t *testing.T) {
	cfg := testConfig(t)
	cfg.RankByScore = true
	cfg.Limit = 1
	cfg.StartTime = day("2024-03-10")

	rows, err := GetPeriodReportsResults(t.Context(), cfg, sampleManager())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Scored)
}

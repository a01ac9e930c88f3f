package core

import (
	"testing"
	"time"

	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportEndToEnd(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))
	rec := schema.DailyRecord{
		GroupID:   "g1",
		GroupName: "Gophers",
		Date:      time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC),
		Metrics:   exampleMetrics(),
		Semantic:  schema.SemanticScores{TopicRelevance: 80, Atmosphere: 20},
		Summary:   "Lively debate about generics",
	}

	report, err := BuildReport(rec, schema.DefaultThresholds(), 3, schema.DefaultScoringConfig(), now)
	require.NoError(t, err)

	assert.Equal(t, schema.ReportID("g1", rec.Date), report.ID)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), report.Date)
	assert.True(t, report.Scored)
	assert.Equal(t, 54, report.OverallScore)
	assert.True(t, report.Risk.HasConflictRisk)
	assert.True(t, report.Downweighted)
	assert.False(t, report.Provisional)
	assert.Equal(t, int64(3), report.ThresholdsVersion)
	assert.Equal(t, schema.DefaultThresholds(), report.Thresholds)
	assert.Equal(t, time.UTC, report.GeneratedAt.Location())
	assert.Equal(t, "Lively debate about generics", report.Summary)
}

func TestBuildReportProvisional(t *testing.T) {
	rec := schema.DailyRecord{
		GroupID:  "tiny",
		Date:     time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Metrics:  schema.BaseMetrics{TotalMessages: 3, TotalMembers: 2, ActiveSpeakers: 2, ActiveHours: 1, TotalHours: 24},
		Semantic: schema.SemanticScores{TopicRelevance: 70, Atmosphere: 70},
	}
	report, err := BuildReport(rec, schema.DefaultThresholds(), 1, schema.DefaultScoringConfig(), time.Now())
	require.NoError(t, err)

	assert.True(t, report.Provisional)
	assert.True(t, report.Risk.IsNewGroup)
	assert.True(t, report.Risk.IsMicroGroup)
	assert.False(t, report.Downweighted)
}

func TestBuildReportRejectsInvalidMetrics(t *testing.T) {
	rec := schema.DailyRecord{
		GroupID: "g1",
		Date:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Metrics: schema.BaseMetrics{TotalMessages: -5},
	}

	// Excluded groups are validated too.
	cfg := schema.GroupScoringConfig{Mode: schema.ParticipateExclude, GroupIDs: []string{"g1"}}
	_, err := BuildReport(rec, schema.DefaultThresholds(), 1, cfg, time.Now())
	assert.ErrorIs(t, err, schema.ErrInvalidMetric)
	assert.Contains(t, err.Error(), "2024-03-10")
}

func TestBuildReportConflictFollowsAtmosphereScore(t *testing.T) {
	th := schema.DefaultThresholds()
	base := schema.BaseMetrics{TotalMessages: 100, TotalMembers: 50, ActiveSpeakers: 25, ActiveHours: 10, TotalHours: 12, MedianResponseInterval: 150}

	tests := []struct {
		name       string
		metrics    schema.BaseMetrics
		atmosphere float64
		score      float64
		conflict   bool
	}{
		{"rounds up to the threshold", base, 29.6, 30, false},
		{"half rounds up to the threshold", base, 29.5, 30, false},
		{"rounds down below the threshold", base, 29.4, 29, true},
		{"silent day scores zero atmosphere", schema.BaseMetrics{TotalMembers: 50, TotalHours: 24}, 80, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := schema.DailyRecord{
				GroupID:  "g1",
				Date:     time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				Metrics:  tt.metrics,
				Semantic: schema.SemanticScores{TopicRelevance: 80, Atmosphere: tt.atmosphere},
			}
			report, err := BuildReport(rec, th, 1, schema.DefaultScoringConfig(), time.Now())
			require.NoError(t, err)

			assert.Equal(t, tt.score, report.Breakdown.Atmosphere)
			assert.Equal(t, tt.conflict, report.Risk.HasConflictRisk)
			assert.Equal(t, report.Breakdown.Atmosphere < th.AtmosphereMeltdownThreshold, report.Risk.HasConflictRisk)
			assert.Equal(t, report.Risk.HasConflictRisk, report.Downweighted)
		})
	}
}

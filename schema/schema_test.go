package schema

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseMetricsValidate(t *testing.T) {
	tests := []struct {
		name    string
		metrics BaseMetrics
		wantErr bool
	}{
		{"zero value", BaseMetrics{}, false},
		{"typical", BaseMetrics{TotalMessages: 200, TotalMembers: 20, ActiveSpeakers: 10, ActiveHours: 20, TotalHours: 24, Top20Percentage: 55, MedianResponseInterval: 150}, false},
		{"negative members", BaseMetrics{TotalMembers: -1}, true},
		{"negative messages", BaseMetrics{TotalMessages: -3}, true},
		{"negative hours", BaseMetrics{ActiveHours: -1}, true},
		{"nan interval", BaseMetrics{MedianResponseInterval: math.NaN()}, true},
		{"infinite interval", BaseMetrics{MedianResponseInterval: math.Inf(1)}, true},
		{"negative top20", BaseMetrics{Top20Percentage: -0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.metrics.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMetric)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSemanticScoresValidate(t *testing.T) {
	assert.NoError(t, SemanticScores{TopicRelevance: 0, Atmosphere: 100}.Validate())
	assert.ErrorIs(t, SemanticScores{TopicRelevance: 101}.Validate(), ErrInvalidMetric)
	assert.ErrorIs(t, SemanticScores{Atmosphere: -1}.Validate(), ErrInvalidMetric)
	assert.ErrorIs(t, SemanticScores{Atmosphere: math.NaN()}.Validate(), ErrInvalidMetric)
}

func TestScoreThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	mutate := func(f func(*ScoreThresholds)) ScoreThresholds {
		th := DefaultThresholds()
		f(&th)
		return th
	}

	tests := []struct {
		name string
		th   ScoreThresholds
	}{
		{"zero target", mutate(func(t *ScoreThresholds) { t.AvgMessagesPerSpeakerTarget = 0 })},
		{"negative base", mutate(func(t *ScoreThresholds) { t.ResponseSpeedBase = -10 })},
		{"nan base", mutate(func(t *ScoreThresholds) { t.ResponseSpeedBase = math.NaN() })},
		{"zero meltdown", mutate(func(t *ScoreThresholds) { t.AtmosphereMeltdownThreshold = 0 })},
		{"meltdown over 100", mutate(func(t *ScoreThresholds) { t.AtmosphereMeltdownThreshold = 101 })},
		{"negative cold start", mutate(func(t *ScoreThresholds) { t.ColdStartMessageThreshold = -1 })},
		{"negative micro", mutate(func(t *ScoreThresholds) { t.MicroGroupMemberThreshold = -1 })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.th.Validate(), ErrConfigurationOutOfRange)
		})
	}
}

func TestGroupScoringConfig(t *testing.T) {
	assert.NoError(t, DefaultScoringConfig().Validate())
	assert.ErrorIs(t, GroupScoringConfig{Mode: "some"}.Validate(), ErrConfigurationOutOfRange)

	cfg := GroupScoringConfig{Mode: ParticipateInclude, GroupIDs: []string{"g1", "g2"}}
	assert.True(t, cfg.Contains("g2"))
	assert.False(t, cfg.Contains("g3"))
}

func TestReportIDIsDeterministic(t *testing.T) {
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 10, 18, 45, 0, 0, time.UTC)

	id := ReportID("g1", d)
	assert.Equal(t, id, ReportID("g1", later))
	assert.NotEqual(t, id, ReportID("g2", d))
	assert.NotEqual(t, id, ReportID("g1", d.AddDate(0, 0, 1)))
	assert.Len(t, id, 36)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/07/2024")
	assert.Error(t, err)
}

func TestDefaultDimensionWeightsSumToOne(t *testing.T) {
	var total float64
	for _, w := range DefaultDimensionWeights() {
		total += w.Effective()
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

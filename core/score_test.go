package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleMetrics is a healthy mid-size day used across the scoring tests.
func exampleMetrics() schema.BaseMetrics {
	return schema.BaseMetrics{
		TotalMessages:          100,
		TotalMembers:           50,
		ActiveSpeakers:         25,
		ActiveHours:            10,
		TotalHours:             12,
		MedianResponseInterval: 150,
	}
}

func TestComputeBreakdownExample(t *testing.T) {
	b, err := ComputeBreakdown(exampleMetrics(), schema.SemanticScores{TopicRelevance: 80, Atmosphere: 20}, schema.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, 50.0, b.SpeakerPenetration)
	assert.Equal(t, 20.0, b.AvgMessagesPerSpeaker)
	assert.Equal(t, 50.0, b.ResponseSpeed)
	assert.Equal(t, 83.0, b.TimeDistribution)
	assert.Equal(t, 80.0, b.TopicRelevance)
	assert.Equal(t, 20.0, b.Atmosphere)

	assert.Equal(t, 54, CompositeScore(b))
}

func TestComputeBreakdownEdgeCases(t *testing.T) {
	th := schema.DefaultThresholds()
	sem := schema.SemanticScores{TopicRelevance: 90, Atmosphere: 90}

	tests := []struct {
		name     string
		metrics  schema.BaseMetrics
		expected schema.ScoreBreakdown
	}{
		{
			name:     "silent day",
			metrics:  schema.BaseMetrics{TotalMembers: 40, TotalHours: 24, MedianResponseInterval: 10},
			expected: schema.ScoreBreakdown{},
		},
		{
			name: "no members",
			metrics: schema.BaseMetrics{
				TotalMessages: 10, ActiveSpeakers: 2, ActiveHours: 2, TotalHours: 24,
			},
			expected: schema.ScoreBreakdown{
				SpeakerPenetration:    0,
				AvgMessagesPerSpeaker: 25,
				ResponseSpeed:         100,
				TimeDistribution:      8,
				TopicRelevance:        90,
				Atmosphere:            90,
			},
		},
		{
			name: "no speakers and no hours",
			metrics: schema.BaseMetrics{
				TotalMessages: 40, TotalMembers: 10, MedianResponseInterval: 0,
			},
			expected: schema.ScoreBreakdown{
				SpeakerPenetration:    0,
				AvgMessagesPerSpeaker: 100,
				ResponseSpeed:         100,
				TimeDistribution:      0,
				TopicRelevance:        90,
				Atmosphere:            90,
			},
		},
		{
			name: "slow replies clamp to zero",
			metrics: schema.BaseMetrics{
				TotalMessages: 30, TotalMembers: 10, ActiveSpeakers: 3, ActiveHours: 24, TotalHours: 24,
				MedianResponseInterval: 900,
			},
			expected: schema.ScoreBreakdown{
				SpeakerPenetration:    30,
				AvgMessagesPerSpeaker: 50,
				ResponseSpeed:         0,
				TimeDistribution:      100,
				TopicRelevance:        90,
				Atmosphere:            90,
			},
		},
		{
			name: "inconsistent counts clamp to 100",
			metrics: schema.BaseMetrics{
				TotalMessages: 500, TotalMembers: 5, ActiveSpeakers: 10, ActiveHours: 30, TotalHours: 24,
			},
			expected: schema.ScoreBreakdown{
				SpeakerPenetration:    100,
				AvgMessagesPerSpeaker: 100,
				ResponseSpeed:         100,
				TimeDistribution:      100,
				TopicRelevance:        90,
				Atmosphere:            90,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ComputeBreakdown(tt.metrics, sem, th)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b)
		})
	}
}

func TestComputeBreakdownZeroMessagesIsZeroOverall(t *testing.T) {
	b, err := ComputeBreakdown(schema.BaseMetrics{TotalMembers: 100}, schema.SemanticScores{TopicRelevance: 100, Atmosphere: 100}, schema.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, schema.ScoreBreakdown{}, b)
	assert.Equal(t, 0, CompositeScore(b))
}

func TestComputeBreakdownRejectsInvalidInput(t *testing.T) {
	th := schema.DefaultThresholds()
	sem := schema.SemanticScores{TopicRelevance: 50, Atmosphere: 50}

	t.Run("negative count", func(t *testing.T) {
		m := exampleMetrics()
		m.ActiveSpeakers = -1
		_, err := ComputeBreakdown(m, sem, th)
		assert.ErrorIs(t, err, schema.ErrInvalidMetric)
	})

	t.Run("nan interval", func(t *testing.T) {
		m := exampleMetrics()
		m.MedianResponseInterval = math.NaN()
		_, err := ComputeBreakdown(m, sem, th)
		assert.ErrorIs(t, err, schema.ErrInvalidMetric)
	})

	t.Run("semantic out of range", func(t *testing.T) {
		_, err := ComputeBreakdown(exampleMetrics(), schema.SemanticScores{TopicRelevance: 101}, th)
		assert.ErrorIs(t, err, schema.ErrInvalidMetric)
	})

	t.Run("zero base", func(t *testing.T) {
		bad := th
		bad.ResponseSpeedBase = 0
		_, err := ComputeBreakdown(exampleMetrics(), sem, bad)
		assert.ErrorIs(t, err, schema.ErrConfigurationOutOfRange)
	})
}

// TestCompositeScoreWeightedSum samples random sub-scores and checks the weighted-sum identity.
func TestCompositeScoreWeightedSum(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for range 2000 {
		b := schema.ScoreBreakdown{
			SpeakerPenetration:    rng.Float64() * 100,
			AvgMessagesPerSpeaker: rng.Float64() * 100,
			ResponseSpeed:         rng.Float64() * 100,
			TimeDistribution:      rng.Float64() * 100,
			TopicRelevance:        rng.Float64() * 100,
			Atmosphere:            rng.Float64() * 100,
		}
		want := math.Round(0.6*(0.35*b.SpeakerPenetration+0.25*b.AvgMessagesPerSpeaker+0.20*b.ResponseSpeed+0.20*b.TimeDistribution) +
			0.4*(0.70*b.TopicRelevance+0.30*b.Atmosphere))

		got := CompositeScore(b)
		assert.Equal(t, int(want), got, "breakdown %+v", b)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestCompositeScoreBounds(t *testing.T) {
	assert.Equal(t, 0, CompositeScore(schema.ScoreBreakdown{}))
	assert.Equal(t, 100, CompositeScore(schema.ScoreBreakdown{
		SpeakerPenetration: 100, AvgMessagesPerSpeaker: 100, ResponseSpeed: 100,
		TimeDistribution: 100, TopicRelevance: 100, Atmosphere: 100,
	}))
}

func TestContributionsSumToOverall(t *testing.T) {
	b, err := ComputeBreakdown(exampleMetrics(), schema.SemanticScores{TopicRelevance: 80, Atmosphere: 20}, schema.DefaultThresholds())
	require.NoError(t, err)

	contrib := b.Contributions()
	require.Len(t, contrib, 6)

	var sum float64
	for _, v := range contrib {
		sum += v
	}
	assert.InDelta(t, 54.26, sum, 0.001)
	assert.InDelta(t, 0.6*0.35*50, contrib[schema.BreakdownPenetration], 1e-9)
	assert.InDelta(t, 0.4*0.30*20, contrib[schema.BreakdownAtmosphere], 1e-9)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(math.NaN()))
	assert.Equal(t, 0.0, clampScore(-3))
	assert.Equal(t, 100.0, clampScore(250))
	assert.Equal(t, 42.5, clampScore(42.5))
}

package core

import (
	"fmt"
	"math"

	"github.com/huangsam/grouppulse/schema"
)

// clampScore bounds v to [0,100]. NaN collapses to 0 so it can never surface as a score.
func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// ComputeBreakdown derives the six sub-scores of one day.
// The four statistical sub-scores come from m and th; the two semantic ones are copied from sem.
// Every sub-score is rounded to an integer. Invalid input fails fast with no partial result.
func ComputeBreakdown(m schema.BaseMetrics, sem schema.SemanticScores, th schema.ScoreThresholds) (schema.ScoreBreakdown, error) {
	if err := m.Validate(); err != nil {
		return schema.ScoreBreakdown{}, err
	}
	if err := sem.Validate(); err != nil {
		return schema.ScoreBreakdown{}, err
	}
	if err := th.Validate(); err != nil {
		return schema.ScoreBreakdown{}, fmt.Errorf("cannot score with thresholds: %w", err)
	}

	// A silent day has nothing to score.
	if m.TotalMessages == 0 {
		return schema.ScoreBreakdown{}, nil
	}

	var penetration float64
	if m.TotalMembers > 0 {
		penetration = float64(m.ActiveSpeakers) / float64(m.TotalMembers) * 100
	}

	perSpeaker := float64(m.TotalMessages) / float64(max(m.ActiveSpeakers, 1))
	avgMessages := math.Min(perSpeaker/th.AvgMessagesPerSpeakerTarget, 1) * 100

	responseSpeed := (1 - m.MedianResponseInterval/th.ResponseSpeedBase) * 100

	timeDistribution := float64(m.ActiveHours) / float64(max(m.TotalHours, 1)) * 100

	return schema.ScoreBreakdown{
		SpeakerPenetration:    math.Round(clampScore(penetration)),
		AvgMessagesPerSpeaker: math.Round(clampScore(avgMessages)),
		ResponseSpeed:         math.Round(clampScore(responseSpeed)),
		TimeDistribution:      math.Round(clampScore(timeDistribution)),
		TopicRelevance:        math.Round(clampScore(sem.TopicRelevance)),
		Atmosphere:            math.Round(clampScore(sem.Atmosphere)),
	}, nil
}

// CompositeScore folds a breakdown into the overall score.
//
//	overall = round(0.6*(0.35A + 0.25B + 0.20C + 0.20D) + 0.4*(0.70E + 0.30F))
func CompositeScore(b schema.ScoreBreakdown) int {
	const (
		wPenetration = 0.35
		wAvgMessages = 0.25
		wResponse    = 0.20
		wTime        = 0.20

		wTopic      = 0.70
		wAtmosphere = 0.30
	)

	statistical := wPenetration*b.SpeakerPenetration +
		wAvgMessages*b.AvgMessagesPerSpeaker +
		wResponse*b.ResponseSpeed +
		wTime*b.TimeDistribution
	semantic := wTopic*b.TopicRelevance + wAtmosphere*b.Atmosphere

	overall := schema.StatisticalWeight*statistical + schema.SemanticWeight*semantic
	return int(math.Round(clampScore(overall)))
}

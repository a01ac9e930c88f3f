package core

import (
	"slices"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// TrendWindow returns the reports dated within [end-lookbackDays, end], oldest first.
// A lookback of 7 therefore spans eight calendar days.
func TrendWindow(reports []schema.AnalysisReport, end time.Time, lookbackDays int) []schema.AnalysisReport {
	end = schema.NormalizeDate(end)
	start := end.AddDate(0, 0, -lookbackDays)

	window := make([]schema.AnalysisReport, 0, lookbackDays+1)
	for _, r := range reports {
		d := schema.NormalizeDate(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		window = append(window, r)
	}
	slices.SortStableFunc(window, func(a, b schema.AnalysisReport) int {
		return a.Date.Compare(b.Date)
	})
	return window
}

// TrendValue extracts one chartable value from a report.
// Score metrics read 0 for unscored reports; callers check TrendPoint.Scored.
func TrendValue(r schema.AnalysisReport, metric schema.TrendMetric) float64 {
	switch metric {
	case schema.TrendMessages:
		return float64(r.Metrics.TotalMessages)
	case schema.TrendSpeakers:
		return float64(r.Metrics.ActiveSpeakers)
	case schema.TrendPenetration:
		return r.Breakdown.SpeakerPenetration
	case schema.TrendAvgMessages:
		return r.Breakdown.AvgMessagesPerSpeaker
	case schema.TrendResponseSpeed:
		return r.Breakdown.ResponseSpeed
	case schema.TrendTimeDistribution:
		return r.Breakdown.TimeDistribution
	case schema.TrendTopicRelevance:
		return r.Breakdown.TopicRelevance
	case schema.TrendAtmosphere:
		return r.Breakdown.Atmosphere
	default:
		return float64(r.OverallScore)
	}
}

// TrendSeries maps a window of reports onto points of one metric.
func TrendSeries(window []schema.AnalysisReport, metric schema.TrendMetric) []schema.TrendPoint {
	points := make([]schema.TrendPoint, 0, len(window))
	for _, r := range window {
		points = append(points, schema.TrendPoint{
			Date:   r.Date,
			Value:  TrendValue(r, metric),
			Scored: r.Scored,
		})
	}
	return points
}

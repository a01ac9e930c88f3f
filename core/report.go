package core

import (
	"fmt"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// BuildReport turns one daily record into an immutable report.
// The thresholds snapshot and its version are stamped on the report so later
// threshold changes can be told apart from the values the report was scored with.
func BuildReport(rec schema.DailyRecord, th schema.ScoreThresholds, version int64, scoring schema.GroupScoringConfig, now time.Time) (schema.AnalysisReport, error) {
	if err := rec.Metrics.Validate(); err != nil {
		return schema.AnalysisReport{}, fmt.Errorf("group %s on %s: %w", rec.GroupID, rec.Date.Format(schema.DateFormat), err)
	}

	date := schema.NormalizeDate(rec.Date)
	report := schema.AnalysisReport{
		ID:                schema.ReportID(rec.GroupID, date),
		GroupID:           rec.GroupID,
		GroupName:         rec.GroupName,
		Date:              date,
		Metrics:           rec.Metrics,
		Summary:           rec.Summary,
		Detail:            rec.Detail,
		Thresholds:        th,
		ThresholdsVersion: version,
		GeneratedAt:       now.UTC(),
	}

	if !ShouldScore(rec.GroupID, scoring) {
		report.Risk = EvaluateRisk(rec.Metrics, 0, th, false)
		report.Provisional = report.Risk.IsNewGroup || report.Risk.IsMicroGroup
		return report, nil
	}

	breakdown, err := ComputeBreakdown(rec.Metrics, rec.Semantic, th)
	if err != nil {
		return schema.AnalysisReport{}, fmt.Errorf("group %s on %s: %w", rec.GroupID, date.Format(schema.DateFormat), err)
	}

	report.Scored = true
	report.Breakdown = breakdown
	report.OverallScore = CompositeScore(breakdown)
	report.Risk = EvaluateRisk(rec.Metrics, breakdown.Atmosphere, th, true)
	report.Downweighted = report.Risk.HasConflictRisk
	report.Provisional = report.Risk.IsNewGroup || report.Risk.IsMicroGroup
	return report, nil
}

package core

import (
	"encoding/json"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// loadSnapshot returns a previously produced report. Snapshots never expire:
// a report is served as first produced until the store is cleared.
func loadSnapshot(store contract.CacheStore, id string) (schema.AnalysisReport, bool) {
	data, version, _, err := store.Get(id)
	if err != nil {
		return schema.AnalysisReport{}, false // Cache miss
	}
	if version != schema.ReportSnapshotVersion {
		return schema.AnalysisReport{}, false // Layout changed since it was written
	}
	var report schema.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return schema.AnalysisReport{}, false
	}
	return report, true
}

// participationMatches reports whether a snapshot agrees with the current
// participation filter. Thresholds stay frozen on a snapshot; participation does not.
func participationMatches(report schema.AnalysisReport, scoring schema.GroupScoringConfig) bool {
	return report.Scored == ShouldScore(report.GroupID, scoring)
}

// saveSnapshot persists a freshly produced report.
func saveSnapshot(store contract.CacheStore, report schema.AnalysisReport) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := store.Set(report.ID, data, schema.ReportSnapshotVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store report snapshot", err)
	}
}

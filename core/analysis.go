package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// errNoSource is returned when neither --input nor a metrics backend is configured.
var errNoSource = errors.New("no metrics source configured: pass --input or enable a metrics backend")

// sourceFor returns the configured metrics source.
func sourceFor(mgr contract.StoreManager) (contract.MetricsSource, error) {
	if mgr == nil || mgr.GetSource() == nil {
		return nil, errNoSource
	}
	return mgr.GetSource(), nil
}

// buildReports turns daily records into reports using a worker pool.
// Thresholds and participation are snapshotted once so every report of a run
// is scored against the same configuration. Previously produced reports are
// served from the snapshot store unchanged.
func buildReports(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, records []schema.DailyRecord) ([]schema.AnalysisReport, error) {
	if len(records) == 0 {
		return []schema.AnalysisReport{}, nil
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	var metricsStore contract.MetricsStore
	if mgr != nil {
		metricsStore = mgr.GetMetricsStore()
	}
	if metricsStore != nil {
		configParams := map[string]any{
			"group":       cfg.GroupFilter,
			"granularity": string(cfg.Granularity),
			"workers":     cfg.Workers,
			"records":     len(records),
		}
		var err error
		runID, err = metricsStore.BeginRun(commandFromContext(ctx), time.Now(), configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Snapshot configuration ---
	th, version := cfg.Thresholds.Snapshot()
	scoring, _ := cfg.Scoring.Snapshot()
	var cache contract.CacheStore
	if mgr != nil {
		cache = mgr.GetReportCache()
	}

	// --- 2. Score in parallel ---
	reports := make([]schema.AnalysisReport, len(records))
	errs := make([]error, len(records))
	idxCh := make(chan int, len(records))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for idx := range idxCh {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				reports[idx], errs[idx] = buildOne(records[idx], th, version, scoring, cache)
			}
		})
	}

	for i := range records {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	// --- 3. End Run Tracking ---
	if metricsStore != nil && runID > 0 {
		if err := metricsStore.EndRun(runID, time.Now(), len(reports)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return reports, nil
}

// buildOne serves a snapshot when one exists, otherwise scores and stores the record.
// A scored snapshot of a group that is now excluded is answered with an unscored
// report without overwriting the snapshot.
func buildOne(rec schema.DailyRecord, th schema.ScoreThresholds, version int64, scoring schema.GroupScoringConfig, cache contract.CacheStore) (schema.AnalysisReport, error) {
	id := schema.ReportID(rec.GroupID, rec.Date)
	if cache != nil {
		if report, ok := loadSnapshot(cache, id); ok {
			if participationMatches(report, scoring) {
				return report, nil
			}
			if report.Scored {
				return BuildReport(rec, th, version, scoring, time.Now())
			}
		}
	}

	report, err := BuildReport(rec, th, version, scoring, time.Now())
	if err != nil {
		return schema.AnalysisReport{}, err
	}
	if cache != nil {
		saveSnapshot(cache, report)
	}
	return report, nil
}

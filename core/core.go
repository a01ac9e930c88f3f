// Package core has core logic for scoring, risk evaluation and period aggregation.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/internal/iocache"
	"github.com/huangsam/grouppulse/internal/outwriter"
	"github.com/huangsam/grouppulse/schema"
)

// ExecutePeriodReports builds and aggregates reports, then prints the rows.
// It serves as the main entry point for the 'reports' command.
func ExecutePeriodReports(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		outwriter.LogReportsHeader(cfg)
	}
	rows, err := GetPeriodReportsResults(WithCommand(ctx, "reports"), cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintReportRows(rows, cfg, time.Since(start))
}

// GetPeriodReportsResults returns aggregated rows for cfg's group filter, granularity and date range.
// An unknown group or an empty range yields no rows.
func GetPeriodReportsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.ReportRow, error) {
	src, err := sourceFor(mgr)
	if err != nil {
		return nil, err
	}
	records, err := src.FetchRange(ctx, cfg.GroupFilter, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	reports, err := buildReports(ctx, cfg, mgr, records)
	if err != nil {
		return nil, err
	}
	rows := AggregateReports(reports, cfg.Granularity)
	if cfg.RankByScore {
		return RankRows(rows, cfg.Limit), nil
	}
	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}
	return rows, nil
}

// ExecuteGroupReport prints the detail view of a single report.
func ExecuteGroupReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	view, err := GetGroupReportResult(WithCommand(ctx, "report"), cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintGroupReport(view, cfg, time.Since(start))
}

// GetGroupReportResult resolves one report by cfg.ReportID, or by cfg.GroupFilter and cfg.ReportDate.
// A zero ReportDate selects the latest day on record for the group.
func GetGroupReportResult(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.GroupReportView, error) {
	report, err := resolveReport(ctx, cfg, mgr)
	if err != nil {
		return schema.GroupReportView{}, err
	}

	trendCfg := cfg.Clone()
	trendCfg.GroupFilter = report.GroupID
	trendCfg.TrendEnd = report.Date
	trend, err := GetTrendResults(ctx, trendCfg, mgr)
	if err != nil {
		return schema.GroupReportView{}, err
	}

	return schema.GroupReportView{
		Report:        report,
		Contributions: report.Breakdown.Contributions(),
		Trend:         trend,
	}, nil
}

// resolveReport finds the record behind a detail request and scores it.
func resolveReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.AnalysisReport, error) {
	if cfg.ReportID != "" && mgr != nil {
		if cache := mgr.GetReportCache(); cache != nil {
			scoring, _ := cfg.Scoring.Snapshot()
			if report, ok := loadSnapshot(cache, cfg.ReportID); ok && participationMatches(report, scoring) {
				return report, nil
			}
		}
	}

	src, err := sourceFor(mgr)
	if err != nil {
		return schema.AnalysisReport{}, err
	}

	var rec schema.DailyRecord
	switch {
	case cfg.ReportID != "":
		rec, err = src.FetchByReportID(ctx, cfg.ReportID)
	case cfg.GroupFilter == "":
		return schema.AnalysisReport{}, errors.New("a group or a report id is required")
	default:
		date := cfg.ReportDate
		if date.IsZero() {
			info, found, lerr := findGroup(ctx, src, cfg.GroupFilter)
			if lerr != nil {
				return schema.AnalysisReport{}, lerr
			}
			if !found {
				return schema.AnalysisReport{}, fmt.Errorf("%w: %s", schema.ErrUnknownGroup, cfg.GroupFilter)
			}
			date = info.LastDate
		}
		rec, err = src.FetchDailyMetrics(ctx, cfg.GroupFilter, date)
	}
	if err != nil {
		return schema.AnalysisReport{}, err
	}

	reports, err := buildReports(ctx, cfg, mgr, []schema.DailyRecord{rec})
	if err != nil {
		return schema.AnalysisReport{}, err
	}
	return reports[0], nil
}

// findGroup looks a group up in the source's group listing.
func findGroup(ctx context.Context, src contract.MetricsSource, groupID string) (schema.GroupInfo, bool, error) {
	groups, err := src.ListGroups(ctx)
	if err != nil {
		return schema.GroupInfo{}, false, fmt.Errorf("failed to list groups: %w", err)
	}
	for _, g := range groups {
		if g.GroupID == groupID {
			return g, true, nil
		}
	}
	return schema.GroupInfo{}, false, nil
}

// ExecuteTrend prints the trailing trend of one group.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := GetTrendResults(WithCommand(ctx, "trend"), cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintTrend(result, cfg, time.Since(start))
}

// GetTrendResults returns the [end-lookback, end] window of cfg.TrendMetric for cfg.GroupFilter.
// A zero TrendEnd selects the latest day on record. An unknown group yields an empty series.
func GetTrendResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.TrendResult, error) {
	if cfg.GroupFilter == "" {
		return schema.TrendResult{}, errors.New("a group is required for trend queries")
	}
	result := schema.TrendResult{
		GroupID:      cfg.GroupFilter,
		Metric:       cfg.TrendMetric,
		LookbackDays: cfg.LookbackDays,
		Points:       []schema.TrendPoint{},
	}

	src, err := sourceFor(mgr)
	if err != nil {
		return result, err
	}

	end := cfg.TrendEnd
	if end.IsZero() {
		info, found, err := findGroup(ctx, src, cfg.GroupFilter)
		if err != nil {
			return result, err
		}
		if !found {
			return result, nil
		}
		end = info.LastDate
	}
	end = schema.NormalizeDate(end)
	result.End = end
	result.Start = end.AddDate(0, 0, -cfg.LookbackDays)

	records, err := src.FetchRange(ctx, cfg.GroupFilter, result.Start, result.End)
	if err != nil {
		return result, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	reports, err := buildReports(ctx, cfg, mgr, records)
	if err != nil {
		return result, err
	}

	window := TrendWindow(reports, end, cfg.LookbackDays)
	if len(window) > 0 {
		result.GroupName = window[len(window)-1].GroupName
	}
	result.Points = TrendSeries(window, cfg.TrendMetric)
	return result, nil
}

// ScoreRecord scores an ad-hoc record against the current thresholds without storing it.
func ScoreRecord(cfg *contract.Config, rec schema.DailyRecord) (schema.GroupReportView, error) {
	th, version := cfg.Thresholds.Snapshot()
	scoring, _ := cfg.Scoring.Snapshot()
	report, err := BuildReport(rec, th, version, scoring, time.Now())
	if err != nil {
		return schema.GroupReportView{}, err
	}
	return schema.GroupReportView{
		Report:        report,
		Contributions: report.Breakdown.Contributions(),
		Trend:         schema.TrendResult{Points: []schema.TrendPoint{}},
	}, nil
}

// ExecuteScore prints the breakdown of an ad-hoc record.
func ExecuteScore(_ context.Context, cfg *contract.Config, rec schema.DailyRecord) error {
	start := time.Now()
	view, err := ScoreRecord(cfg, rec)
	if err != nil {
		return err
	}
	return outwriter.PrintGroupReport(view, cfg, time.Since(start))
}

// ExecuteGroups prints the groups known to the source and whether they are scored.
func ExecuteGroups(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	groups, err := GetGroupsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintGroups(groups, cfg, time.Since(start))
}

// GetGroupsResults lists the groups of the source with their participation status.
func GetGroupsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.GroupInfo, error) {
	src, err := sourceFor(mgr)
	if err != nil {
		return nil, err
	}
	groups, err := src.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	scoring, _ := cfg.Scoring.Snapshot()
	for i := range groups {
		groups[i].Scored = ShouldScore(groups[i].GroupID, scoring)
	}
	return groups, nil
}

// ExecuteMetrics prints the weight table and formulas.
func ExecuteMetrics(_ context.Context, cfg *contract.Config) error {
	return outwriter.PrintMetricsDefinitions(schema.DefaultDimensionWeights(), cfg)
}

// ExecuteThresholds prints the effective thresholds and participation config.
func ExecuteThresholds(_ context.Context, cfg *contract.Config) error {
	th, version := cfg.Thresholds.Snapshot()
	scoring, _ := cfg.Scoring.Snapshot()
	return outwriter.PrintThresholds(th, version, scoring, cfg)
}

// ExecuteIngest validates a JSON or CSV file of daily records and upserts it into the metrics warehouse.
func ExecuteIngest(ctx context.Context, mgr contract.StoreManager, path string) error {
	var store contract.MetricsStore
	if mgr != nil {
		store = mgr.GetMetricsStore()
	}
	if store == nil {
		return errors.New("ingest requires a metrics backend other than none")
	}

	records, err := iocache.LoadRecordsFile(path)
	if err != nil {
		return err
	}
	n, err := store.UpsertDailyMetrics(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to store metrics: %w", err)
	}
	fmt.Printf("📥 Ingested %d daily records from %s\n", n, path)
	return nil
}

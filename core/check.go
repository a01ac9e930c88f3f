package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/internal/outwriter"
	"github.com/huangsam/grouppulse/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when at least one group violates the gate.
var ErrCheckFailed = errors.New("health check failed")

// ExecuteCheck runs the check command for alerting pipelines.
// It scores the latest day of every group in range and fails when a scored group
// falls below cfg.CheckMinScore or, with cfg.CheckFailOnConflict, carries conflict risk.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	result, err := GetCheckResult(WithCommand(ctx, "check"), cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.PrintCheckResult(result, cfg, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s)", ErrCheckFailed, len(result.Violations))
	}
	return nil
}

// GetCheckResult evaluates the gate without printing.
func GetCheckResult(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.CheckResult, error) {
	result := schema.CheckResult{
		MinScore:       cfg.CheckMinScore,
		FailOnConflict: cfg.CheckFailOnConflict,
		Passed:         true,
		Violations:     []schema.CheckViolation{},
	}

	src, err := sourceFor(mgr)
	if err != nil {
		return result, err
	}
	records, err := src.FetchRange(ctx, cfg.GroupFilter, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return result, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	reports, err := buildReports(ctx, cfg, mgr, latestPerGroup(records))
	if err != nil {
		return result, err
	}

	result.TotalGroups = len(reports)
	total := 0
	for _, r := range reports {
		if !r.Scored {
			continue
		}
		if result.CheckedGroups == 0 || r.OverallScore < result.MinObserved {
			result.MinObserved = r.OverallScore
		}
		result.CheckedGroups++
		total += r.OverallScore

		if r.OverallScore < cfg.CheckMinScore {
			result.Violations = append(result.Violations, checkViolation(r,
				fmt.Sprintf("score %d < minimum %d", r.OverallScore, cfg.CheckMinScore)))
		}
		if cfg.CheckFailOnConflict && r.Risk.HasConflictRisk {
			result.Violations = append(result.Violations, checkViolation(r, "conflict risk"))
		}
	}
	if result.CheckedGroups > 0 {
		result.AvgObserved = float64(total) / float64(result.CheckedGroups)
	}

	slices.SortStableFunc(result.Violations, func(a, b schema.CheckViolation) int {
		return cmp.Compare(a.Score, b.Score)
	})
	result.Passed = len(result.Violations) == 0
	return result, nil
}

// latestPerGroup keeps the most recent record of each group, ordered by group ID.
func latestPerGroup(records []schema.DailyRecord) []schema.DailyRecord {
	latest := make(map[string]schema.DailyRecord)
	for _, rec := range records {
		if cur, ok := latest[rec.GroupID]; !ok || rec.Date.After(cur.Date) {
			latest[rec.GroupID] = rec
		}
	}
	out := make([]schema.DailyRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b schema.DailyRecord) int {
		return cmp.Compare(a.GroupID, b.GroupID)
	})
	return out
}

func checkViolation(r schema.AnalysisReport, reason string) schema.CheckViolation {
	return schema.CheckViolation{
		GroupID:   r.GroupID,
		GroupName: r.GroupName,
		Date:      r.Date,
		Score:     r.OverallScore,
		Reason:    reason,
	}
}

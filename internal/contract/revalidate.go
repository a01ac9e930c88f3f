package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// RevalidateReports applies request-level report parameters to a cloned config.
// Empty values keep the config's existing settings.
func RevalidateReports(cfg *Config, group, granularity, start, end string) error {
	if group != "" {
		cfg.GroupFilter = strings.TrimSpace(group)
	}
	if granularity != "" {
		g := schema.Granularity(strings.ToLower(granularity))
		if _, ok := schema.ValidGranularities[g]; !ok {
			return fmt.Errorf("invalid granularity '%s'. must be day, week, month", granularity)
		}
		cfg.Granularity = g
	}

	now := time.Now()
	if start != "" {
		t, err := ParseDateInput(start, now)
		if err != nil {
			return fmt.Errorf("invalid start date '%s': %w", start, err)
		}
		cfg.StartTime = t
	}
	if end != "" {
		t, err := ParseDateInput(end, now)
		if err != nil {
			return fmt.Errorf("invalid end date '%s': %w", end, err)
		}
		cfg.EndTime = t
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)",
			cfg.StartTime.Format(schema.DateFormat), cfg.EndTime.Format(schema.DateFormat))
	}
	return nil
}

// RevalidateReportTarget selects the report of the detail view, by id or by group and date.
func RevalidateReportTarget(cfg *Config, group, date, id string) error {
	cfg.ReportID = strings.TrimSpace(id)
	cfg.GroupFilter = strings.TrimSpace(group)
	cfg.ReportDate = time.Time{}
	if cfg.ReportID == "" && cfg.GroupFilter == "" {
		return errors.New("a group or a report id is required")
	}
	if date == "" {
		return nil
	}
	t, err := ParseDateInput(date, time.Now())
	if err != nil {
		return fmt.Errorf("invalid report date '%s': %w", date, err)
	}
	cfg.ReportDate = t
	return nil
}

// RevalidateTrend applies request-level trend parameters. A lookback of 0 keeps the default.
func RevalidateTrend(cfg *Config, group, end, metric string, lookback int) error {
	cfg.GroupFilter = strings.TrimSpace(group)
	if cfg.GroupFilter == "" {
		return errors.New("a group is required for trend queries")
	}
	if metric != "" {
		m := schema.TrendMetric(strings.ToLower(metric))
		if _, ok := schema.ValidTrendMetrics[m]; !ok {
			return fmt.Errorf("invalid trend metric '%s'", metric)
		}
		cfg.TrendMetric = m
	}
	if cfg.TrendMetric == "" {
		cfg.TrendMetric = schema.TrendOverall
	}

	switch {
	case lookback < 0 || lookback > MaxLookbackDays:
		return fmt.Errorf("lookback must be between 1 and %d days (received %d)", MaxLookbackDays, lookback)
	case lookback > 0:
		cfg.LookbackDays = lookback
	case cfg.LookbackDays == 0:
		cfg.LookbackDays = schema.DefaultTrendLookbackDays
	}

	cfg.TrendEnd = time.Time{}
	if end != "" {
		t, err := ParseDateInput(end, time.Now())
		if err != nil {
			return fmt.Errorf("invalid end date '%s': %w", end, err)
		}
		cfg.TrendEnd = t
	}
	return nil
}

package core

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// PeriodStart returns the first day of the period that contains date.
// Weeks start on Monday: a Sunday belongs to the week of the previous Monday.
func PeriodStart(date time.Time, g schema.Granularity) time.Time {
	d := schema.NormalizeDate(date)
	switch g {
	case schema.WeekGranularity:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case schema.MonthGranularity:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// PeriodEnd returns the last day of the period that starts at start.
func PeriodEnd(start time.Time, g schema.Granularity) time.Time {
	switch g {
	case schema.WeekGranularity:
		return start.AddDate(0, 0, 6)
	case schema.MonthGranularity:
		return start.AddDate(0, 1, -1)
	default:
		return start
	}
}

// PeriodLabel renders a period for display: 2024-03-10, 2024-W10 or 2024-03.
func PeriodLabel(start time.Time, g schema.Granularity) string {
	switch g {
	case schema.WeekGranularity:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case schema.MonthGranularity:
		return start.Format("2006-01")
	default:
		return start.Format(schema.DateFormat)
	}
}

type periodKey struct {
	groupID string
	start   time.Time
}

// periodBucket holds one report per day; a later report for the same day replaces the earlier one.
type periodBucket struct {
	byDate map[time.Time]schema.AnalysisReport
}

// AggregateReports rolls daily reports up to the requested granularity.
// Each (group, date) counts once, the last report for it winning. Message counts
// are summed and active speakers averaged; every other field is taken from the
// most recent day of the period. Rows are sorted by period start
// descending, then by group ID. Empty input yields an empty result.
func AggregateReports(reports []schema.AnalysisReport, g schema.Granularity) []schema.ReportRow {
	buckets := make(map[periodKey]*periodBucket)
	for _, r := range reports {
		key := periodKey{groupID: r.GroupID, start: PeriodStart(r.Date, g)}
		b, ok := buckets[key]
		if !ok {
			b = &periodBucket{byDate: make(map[time.Time]schema.AnalysisReport)}
			buckets[key] = b
		}
		b.byDate[schema.NormalizeDate(r.Date)] = r
	}

	rows := make([]schema.ReportRow, 0, len(buckets))
	for key, b := range buckets {
		var latest schema.AnalysisReport
		var latestDate time.Time
		var messages, speakersSum int
		for date, r := range b.byDate {
			messages += r.Metrics.TotalMessages
			speakersSum += r.Metrics.ActiveSpeakers
			if latestDate.IsZero() || date.After(latestDate) {
				latest, latestDate = r, date
			}
		}
		days := len(b.byDate)
		rows = append(rows, schema.ReportRow{
			GroupID:        key.groupID,
			GroupName:      latest.GroupName,
			Granularity:    g,
			PeriodStart:    key.start,
			PeriodEnd:      PeriodEnd(key.start, g),
			Label:          PeriodLabel(key.start, g),
			Days:           days,
			MessageCount:   messages,
			ActiveSpeakers: int(math.Round(float64(speakersSum) / float64(days))),
			Scored:         latest.Scored,
			OverallScore:   latest.OverallScore,
			Breakdown:      latest.Breakdown,
			Risk:           latest.Risk,
			Downweighted:   latest.Downweighted,
			Provisional:    latest.Provisional,
			Summary:        latest.Summary,
			LatestReportID: latest.ID,
			LatestDate:     latest.Date,
		})
	}

	slices.SortFunc(rows, func(a, b schema.ReportRow) int {
		if c := b.PeriodStart.Compare(a.PeriodStart); c != 0 {
			return c
		}
		return cmp.Compare(a.GroupID, b.GroupID)
	})
	return rows
}

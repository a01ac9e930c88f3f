package core

import (
	"cmp"
	"slices"

	"github.com/huangsam/grouppulse/schema"
)

// RankRows orders rows from least to most healthy and returns the first limit rows.
// Unscored rows sort last. A limit of 0 or less keeps every row.
func RankRows(rows []schema.ReportRow, limit int) []schema.ReportRow {
	slices.SortStableFunc(rows, func(a, b schema.ReportRow) int {
		if a.Scored != b.Scored {
			if a.Scored {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.OverallScore, b.OverallScore); c != 0 {
			return c
		}
		return cmp.Compare(a.GroupID, b.GroupID)
	})
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

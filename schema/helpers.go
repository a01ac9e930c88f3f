package schema

import (
	"time"

	"github.com/google/uuid"
)

// reportNamespace scopes the deterministic report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/huangsam/grouppulse/reports"))

// NormalizeDate truncates t to midnight UTC of its calendar date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReportID derives the stable identifier of the report for (groupID, date).
// The same pair always maps to the same ID, across processes and backends.
func ReportID(groupID string, date time.Time) string {
	key := groupID + "|" + NormalizeDate(date).Format(DateFormat)
	return uuid.NewSHA1(reportNamespace, []byte(key)).String()
}

// ParseDate parses a calendar date in DateFormat as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 months ago", "1 week ago", "3 days ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 weeks ago" into a calendar date in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "today" {
		return schema.NormalizeDate(now), nil
	}
	if s == "yesterday" {
		return schema.NormalizeDate(now.AddDate(0, 0, -1)), nil
	}

	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	// 1: Value (e.g., "2")
	// 2: Unit (e.g., "week")
	value, _ := strconv.Atoi(matches[1])

	var t time.Time
	switch matches[2] {
	case "year":
		t = now.AddDate(-value, 0, 0)
	case "month":
		t = now.AddDate(0, -value, 0)
	case "week":
		t = now.AddDate(0, 0, -7*value)
	default: // day
		t = now.AddDate(0, 0, -value)
	}
	return schema.NormalizeDate(t), nil
}

// ParseDateInput accepts YYYY-MM-DD, RFC3339 or a relative expression and returns midnight UTC.
func ParseDateInput(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := schema.ParseDate(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return schema.NormalizeDate(t.UTC()), nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, RFC3339 or 'N [units] ago': %w", err)
	}
	return t, nil
}

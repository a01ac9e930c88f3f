package contract

import (
	"testing"
	"time"
)

// FuzzParseDateInput fuzzes date parsing with arbitrary strings.
func FuzzParseDateInput(f *testing.F) {
	for _, seed := range []string{"2024-01-01", "3 days ago", "today", "", "2024-13-40", "99999 years ago"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseDateInput(s, fixedNow)
		if err != nil {
			return
		}
		if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
			t.Errorf("ParseDateInput(%q) = %v, want midnight UTC", s, got)
		}
	})
}

// FuzzParseThresholdsString ensures override parsing never panics.
func FuzzParseThresholdsString(f *testing.F) {
	for _, seed := range []string{"meltdown:30", "avg-target:25,micro:3", ":", ",,", "cold_start:abc"} {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, s string) {
		_, _ = parseThresholdsString(s)
	})
}

//go:build basic

// Package integration contains integration tests for grouppulse.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database tests need Docker: go test -tags database ./integration
package integration

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inMemoryArgs scores the fixture file without touching any database.
func inMemoryArgs(t *testing.T, args ...string) []string {
	t.Helper()
	return append(args,
		"--input", writeFixture(t),
		"--cache-backend", "none",
		"--metrics-backend", "none",
	)
}

// TestReportsVerification checks the scored rows of the fixture through JSON output.
func TestReportsVerification(t *testing.T) {
	out, err := runCommand(t, inMemoryArgs(t, "reports", "--start", "2024-03-10", "--end", "2024-03-10", "--output", "json")...)
	require.NoError(t, err)

	var rows []struct {
		GroupID      string `json:"group_id"`
		OverallScore int    `json:"overall_score"`
		HealthLabel  string `json:"health_label"`
		Risk         struct {
			HasConflictRisk bool `json:"has_conflict_risk"`
		} `json:"risk"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)

	byGroup := map[string]int{}
	for _, r := range rows {
		byGroup[r.GroupID] = r.OverallScore
		if r.GroupID == "g1" {
			assert.True(t, r.Risk.HasConflictRisk)
		}
	}
	assert.Equal(t, 54, byGroup["g1"])
	assert.Greater(t, byGroup["g2"], byGroup["g1"])
}

// TestWeeklyCSV checks that both days of g1 fold into one ISO week row.
func TestWeeklyCSV(t *testing.T) {
	out, err := runCommand(t, inMemoryArgs(t, "reports", "g1", "--granularity", "week", "--output", "csv")...)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "period", records[0][0])
	assert.Equal(t, "2024-W10", records[1][0])
	assert.Equal(t, "2", records[1][5]) // days
}

// TestCheckExitCode checks that the health gate fails the process.
func TestCheckExitCode(t *testing.T) {
	out, err := runCommand(t, inMemoryArgs(t, "check", "--min-score", "60")...)
	require.Error(t, err)
	assert.Contains(t, out, "Health check failed")

	_, err = runCommand(t, inMemoryArgs(t, "check", "--min-score", "10")...)
	require.NoError(t, err)
}

// TestThresholdOverride checks that an invalid override is rejected before scoring.
func TestThresholdOverride(t *testing.T) {
	out, err := runCommand(t, inMemoryArgs(t, "thresholds", "--thresholds-override", "meltdown:150")...)
	require.Error(t, err)
	assert.Contains(t, out, "configuration out of range")
}

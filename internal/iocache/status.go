package iocache

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/grouppulse/schema"
)

// PrintCacheStatus prints report snapshot store status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Snapshot Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		if status.TotalEntries > 0 {
			fmt.Printf("In-Memory Entries: %d\n", status.TotalEntries)
		}
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintMetricsStatus prints warehouse status information.
func PrintMetricsStatus(status schema.MetricsStatus) {
	fmt.Printf("Metrics Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	fmt.Printf("Groups: %d\n", status.TotalGroups)
	fmt.Printf("Daily Records: %d\n", status.TotalDays)
	if status.TotalDays > 0 {
		fmt.Printf("Date Range: %s to %s\n", status.OldestDate.Format(schema.DateFormat), status.NewestDate.Format(schema.DateFormat))
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Total Reports Built: %d\n", status.TotalReports)
	}
	fmt.Println("Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}

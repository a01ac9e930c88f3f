package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/internal/parquet"
)

// ExecuteMetricsExport exports the warehouse to <outputFile>.daily_metrics.parquet
// and <outputFile>.analysis_runs.parquet.
func ExecuteMetricsExport(ctx context.Context, store contract.MetricsStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("export requires a metrics backend other than none")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get metrics status: %w", err)
	}
	if status.TotalDays == 0 && status.TotalRuns == 0 {
		return errors.New("no metrics data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Daily records: %d\n", status.TotalDays)
	fmt.Printf("Analysis runs: %d\n", status.TotalRuns)

	records, err := store.GetAllDailyMetrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve daily metrics: %w", err)
	}
	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}

	dailyFile := outputFile + ".daily_metrics.parquet"
	if err := parquet.WriteDailyMetricsParquet(parquet.ConvertDailyRecords(records), dailyFile); err != nil {
		return fmt.Errorf("failed to write daily metrics: %w", err)
	}
	fmt.Printf("Exported %d daily records to: %s\n", len(records), dailyFile)

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	fmt.Printf("Exported %d analysis runs to: %s\n", len(runs), runsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	return nil
}

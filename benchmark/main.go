// Package main provides a performance benchmarking tool for the GroupPulse CLI.
// It generates synthetic datasets of daily group metrics, measures execution times
// of the reporting commands against them, running each test multiple times,
// treating the first successful run as cold and averaging the rest as warm,
// and writes CSV output for performance analysis and documentation.
//
// Prerequisites:
// - grouppulse binary installed and available in PATH
//
// Usage: go run benchmark/main.go [days]
//
//	days: Number of days of history per group (default 90)
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	Days        int
	NoCacheRuns int
	CacheRuns   int
	GroupCounts []int
	Commands    map[string][]string
}

// datasetRecord mirrors the JSON ingestion layout.
type datasetRecord struct {
	GroupID   string         `json:"group_id"`
	GroupName string         `json:"group_name"`
	Date      string         `json:"date"`
	Metrics   map[string]any `json:"metrics"`
	Semantic  map[string]any `json:"semantic"`
}

func main() {
	days := 90
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [days]\n", os.Args[0])
		os.Exit(1)
	}
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Invalid days %q\n", os.Args[1])
			os.Exit(1)
		}
		days = n
	}

	workDir, err := os.MkdirTemp("", "grouppulse-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		Workers:     14,
		Days:        days,
		NoCacheRuns: 3,
		CacheRuns:   4,
		GroupCounts: []int{10, 100, 1000},
		Commands: map[string][]string{
			"reports-day":   {"reports", "--granularity", "day"},
			"reports-week":  {"reports", "--granularity", "week", "--rank"},
			"reports-month": {"reports", "--granularity", "month"},
			"check":         {"check", "--min-score", "0"},
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the grouppulse binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("grouppulse"); err != nil {
		return fmt.Errorf("grouppulse binary not found in PATH")
	}
	return nil
}

// generateDataset writes groups*days random daily records ending today.
func generateDataset(path string, groups, days int) error {
	rng := rand.New(rand.NewPCG(uint64(groups), uint64(days)))
	end := time.Now().UTC()
	records := make([]datasetRecord, 0, groups*days)

	for g := range groups {
		members := 5 + rng.IntN(500)
		for d := range days {
			speakers := rng.IntN(members + 1)
			messages := speakers * (1 + rng.IntN(40))
			records = append(records, datasetRecord{
				GroupID:   fmt.Sprintf("g%04d", g),
				GroupName: fmt.Sprintf("Group %d", g),
				Date:      end.AddDate(0, 0, -d).Format("2006-01-02"),
				Metrics: map[string]any{
					"total_messages":           messages,
					"total_members":            members,
					"active_speakers":          speakers,
					"active_hours":             rng.IntN(25),
					"total_hours":              24,
					"top20_percentage":         rng.Float64() * 100,
					"median_response_interval": rng.Float64() * 900,
				},
				Semantic: map[string]any{
					"topic_relevance": rng.Float64() * 100,
					"atmosphere":      rng.Float64() * 100,
				},
			})
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// runBenchmarks executes all benchmark tests across the configured dataset sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %d days, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.GroupCounts), config.Days, config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, groups := range config.GroupCounts {
		dataset := fmt.Sprintf("%dx%d", groups, config.Days)
		inputPath := filepath.Join(config.WorkDir, dataset+".json")
		if err := generateDataset(inputPath, groups, config.Days); err != nil {
			fmt.Printf("Failed to generate %s: %v\n", dataset, err)
			continue
		}
		fmt.Printf("Benchmarking %s\n", dataset)

		for _, name := range []string{"reports-day", "reports-week", "reports-month", "check"} {
			results = append(results, runBenchmarkSuite(config, dataset, inputPath, name))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, inputPath, name string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", name, dataset)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dataset, inputPath, name, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No snapshot store
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: SQLite snapshot store, cold then warm
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a grouppulse command multiple times with the specified snapshot backend
// and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dataset, inputPath, name, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	cacheFile := filepath.Join(config.WorkDir, fmt.Sprintf("%s-%s.db", dataset, name))
	_ = os.Remove(cacheFile)

	args := append([]string{}, config.Commands[name]...)
	args = append(args,
		"--input", inputPath,
		"--metrics-backend", "none",
		"--cache-backend", cacheBackend,
		"--workers", strconv.Itoa(config.Workers),
		"--output-file", os.DevNull,
	)
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheFile)
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "grouppulse", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil {
			times = append(times, elapsed)
		} else if ctx.Err() == nil {
			fmt.Printf("    run failed: %v\n%s", err, strings.TrimSpace(string(output)))
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/grouppulse_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, name := range []string{"reports-day", "reports-week", "reports-month", "check"} {
		fmt.Printf("%s (%v):\n", name, config.Commands[name])
		for _, result := range results {
			if result.Command == name {
				fmt.Printf("  %-10s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}

package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/grouppulse/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold) // CriticalColor represents standard danger.
	WatchColor    = color.New(color.FgYellow)          // WatchColor represents standard caution, not bold.
	StableColor   = color.New(color.FgCyan)            // StableColor represents a steady group.
	HealthyColor  = color.New(color.FgGreen, color.Bold)
	ExcludedColor = color.New(color.FgHiBlack)
)

// GetPlainLabel returns a plain text health label for an overall score.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score int, scored bool) string {
	if !scored {
		return schema.ExcludedLabel
	}
	switch {
	case score >= schema.HealthyThreshold:
		return schema.HealthyLabel
	case score >= schema.StableThreshold:
		return schema.StableLabel
	case score >= schema.WatchThreshold:
		return schema.WatchLabel
	default:
		return schema.CriticalLabel
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(score int, scored bool) string {
	text := GetPlainLabel(score, scored)

	switch text {
	case schema.HealthyLabel:
		return HealthyColor.Sprint(text)
	case schema.StableLabel:
		return StableColor.Sprint(text)
	case schema.WatchLabel:
		return WatchColor.Sprint(text)
	case schema.CriticalLabel:
		return CriticalColor.Sprint(text)
	default:
		return ExcludedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for report snapshots.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".grouppulse_cache.db"
	}
	return filepath.Join(homeDir, ".grouppulse_cache.db")
}

// GetMetricsDBFilePath returns the path to the SQLite DB file for the metrics warehouse.
func GetMetricsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".grouppulse_metrics.db"
	}
	return filepath.Join(homeDir, ".grouppulse_metrics.db")
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

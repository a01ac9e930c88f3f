// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"golang.org/x/term"
)

// LogReportsHeader prints a concise, 2-line header for the reports view.
func LogReportsHeader(cfg *contract.Config) {
	group := cfg.GroupFilter
	if group == "" {
		group = "all"
	}

	// Line 1: The report summary (Group and Granularity)
	fmt.Printf("🔎 Groups: %s (Granularity: %s)\n", group, cfg.Granularity)

	// Line 2: The date range being reported
	fmt.Printf("📅 Range: %s → %s\n", formatBound(cfg.StartTime, "beginning"), formatBound(cfg.EndTime, "latest"))
}

// formatBound renders an optional date bound.
func formatBound(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.Format(schema.DateFormat)
}

// getMaxTableNameWidth calculates the maximum width for group names in table output
// based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Period + Score + Label + Messages + Speakers + Risk with borders/padding
	baseWidth := 70

	if cfg.Detail {
		baseWidth += 48 // Six sub-score columns
	}
	if cfg.Explain {
		baseWidth += 35
	}

	// Reserve space for table borders, separators, and padding
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}

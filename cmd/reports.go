package cmd

import (
	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/spf13/cobra"
)

// reportsCmd aggregates daily reports into period rows.
var reportsCmd = &cobra.Command{
	Use:   "reports [group]",
	Short: "Aggregate daily health reports into day, week or month rows",
	Long: `Score every daily record in the date range and aggregate the results per group and period.

Each row carries the period label, overall score, health label, message and speaker
totals, and the risk flags of the period. Weeks are ISO weeks starting on Monday.

Examples:
  # Weekly rows for every group
  grouppulse reports --granularity week

  # One group over the last month, with sub-score columns
  grouppulse reports book-club --start "30 days ago" --detail

  # The five least healthy groups this month
  grouppulse reports --granularity month --rank --limit 5`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePeriodReports(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run reports", err)
		}
	},
}

// reportCmd shows one daily report in detail.
var reportCmd = &cobra.Command{
	Use:   "report [group] [date]",
	Short: "Show one daily report with its breakdown, risk and trailing trend",
	Long: `Show the full report of one group on one day.

The date defaults to the latest day on record for the group. A report can also be
looked up by its ID, which is stable for a (group, date) pair.

Examples:
  # Latest report of a group
  grouppulse report book-club

  # A specific day with weighted contributions
  grouppulse report book-club 2024-03-10 --explain

  # Look a report up by ID
  grouppulse report --id 6c1b0a4e-...`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGroupReport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot show report", err)
		}
	},
}

// trendCmd charts one metric over a trailing window.
var trendCmd = &cobra.Command{
	Use:   "trend <group>",
	Short: "Show the trailing series of one metric for a group",
	Long: `Show the daily values of one metric over the days leading up to --end.

The window spans --lookback days before --end plus the end day itself.
Unscored days are shown as '-'.

Examples:
  # Overall score over the last week on record
  grouppulse trend book-club

  # Atmosphere over the 30 days before March 10th
  grouppulse trend book-club --metric atmosphere --end 2024-03-10 --lookback 30`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrend(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot show trend", err)
		}
	},
}

package cmd

import (
	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd gates on the latest health of every group.
var checkCmd = &cobra.Command{
	Use:   "check [group]",
	Short: "Fail when a group's latest score drops below a minimum",
	Long: `Score the latest day of each group in the date range and enforce a health gate.

Exits with a non-zero code when a scored group is below --min-score or, with
--fail-on-conflict, when a group carries conflict risk. Unscored groups are skipped.

Examples:
  # Alert when any group falls below 60
  grouppulse check --min-score 60

  # Gate the last week, including conflict risk
  grouppulse check --start "7 days ago" --fail-on-conflict`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Health check failed", err)
		}
	},
}

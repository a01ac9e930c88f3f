package cmd

import (
	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/spf13/cobra"
)

// groupsCmd lists the groups of the scoring source.
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List groups on record and whether each is scored",
	Long: `List every group of the metrics source with its date coverage.

The Scored column reflects the scoring participation config
(--scoring-mode and --scoring-groups, or the scoring block of the config file).

Examples:
  grouppulse groups
  grouppulse groups --scoring-mode exclude --scoring-groups bots,staff`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGroups(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list groups", err)
		}
	},
}

// metricsCmd prints the scoring model.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the scoring dimensions, weights and formula",
	Long: `Show how the overall health score is computed.

Displays the six sub-scores, their group (statistical or semantic), inner
and effective weights, and the health label boundaries.

Examples:
  grouppulse metrics
  grouppulse metrics --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}

// thresholdsCmd prints the effective thresholds.
var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Display the effective scoring thresholds and participation config",
	Long: `Show the thresholds in effect after merging defaults, the thresholds block
of the config file and --thresholds-override.

Examples:
  grouppulse thresholds
  grouppulse thresholds --thresholds-override "avg-target:25,meltdown:35"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteThresholds(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display thresholds", err)
		}
	},
}

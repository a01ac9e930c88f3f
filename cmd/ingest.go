package cmd

import (
	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/spf13/cobra"
)

// ingestCmd loads daily records into the metrics store.
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Validate and upsert daily records from a JSON or CSV file",
	Long: `Load daily records into the metrics store.

Records are keyed by (group_id, date); ingesting the same day again replaces it.
Every record is validated before anything is written.

CSV files need at least the columns group_id, date, total_messages,
total_members and active_speakers.

Examples:
  grouppulse ingest daily.json
  GROUPPULSE_METRICS_BACKEND=postgresql GROUPPULSE_METRICS_DB_CONNECT="..." grouppulse ingest daily.csv`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup(rootCtx, cmd, nil)
	},
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteIngest(rootCtx, storeManager, args[0]); err != nil {
			contract.LogFatal("Cannot ingest records", err)
		}
	},
}

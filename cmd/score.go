package cmd

import (
	"time"

	"github.com/huangsam/grouppulse/core"
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/spf13/cobra"
)

// scoreCmd scores metrics given on the command line.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score ad-hoc daily metrics without storing them",
	Long: `Score one day of metrics passed as flags against the current thresholds.

Nothing is written to the metrics store or the snapshot store.

Examples:
  grouppulse score --messages 100 --members 50 --speakers 25 \
    --active-hours 10 --total-hours 12 --median-response 150 \
    --topic 80 --atmosphere 20 --explain`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rec, err := recordFromFlags(cmd)
		if err != nil {
			return err
		}
		if cfg.Explain, err = cmd.Flags().GetBool("explain"); err != nil {
			return err
		}
		if err := core.ExecuteScore(rootCtx, cfg, rec); err != nil {
			contract.LogFatal("Cannot score metrics", err)
		}
		return nil
	},
}

// recordFromFlags builds an ad-hoc record for today from the score flags.
func recordFromFlags(cmd *cobra.Command) (schema.DailyRecord, error) {
	flags := cmd.Flags()
	rec := schema.DailyRecord{
		GroupID: cfg.GroupFilter,
		Date:    schema.NormalizeDate(time.Now()),
	}
	if rec.GroupID == "" {
		rec.GroupID = "adhoc"
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"messages", &rec.Metrics.TotalMessages},
		{"members", &rec.Metrics.TotalMembers},
		{"speakers", &rec.Metrics.ActiveSpeakers},
		{"active-hours", &rec.Metrics.ActiveHours},
		{"total-hours", &rec.Metrics.TotalHours},
	}
	for _, f := range ints {
		v, err := flags.GetInt(f.name)
		if err != nil {
			return rec, err
		}
		*f.dst = v
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"top20", &rec.Metrics.Top20Percentage},
		{"median-response", &rec.Metrics.MedianResponseInterval},
		{"topic", &rec.Semantic.TopicRelevance},
		{"atmosphere", &rec.Semantic.Atmosphere},
	}
	for _, f := range floats {
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return rec, err
		}
		*f.dst = v
	}
	return rec, nil
}

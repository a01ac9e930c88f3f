// Package cmd defines the command-line interface for grouppulse.
package cmd

import (
	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(thresholdsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("group", "g", "", "Restrict to one group ID")
	rootCmd.PersistentFlags().String("start", "", "Start date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("granularity", string(schema.DayGranularity), "Period size: day or week or month")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-dimension sub-score columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("input", "", "Score a JSON or CSV file of daily records instead of the metrics store")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Report snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("metrics-backend", string(schema.SQLiteBackend), "Metrics store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("metrics-db-connect", "", "Database connection string for the metrics store (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("thresholds-override", "", "Scoring thresholds (format: 'avg-target:25,response-base:200,meltdown:30,cold-start:10,micro:5')")
	rootCmd.PersistentFlags().String("scoring-mode", "", "Scoring participation: all or include or exclude")
	rootCmd.PersistentFlags().String("scoring-groups", "", "Comma-separated group IDs for the include or exclude participation mode")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reportsCmd to Viper
	reportsCmd.Flags().Bool("rank", false, "Order rows from least to most healthy")
	reportsCmd.Flags().IntP("limit", "l", 0, "Number of rows to display (0 = all)")
	if err := viper.BindPFlags(reportsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding reports flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().Bool("explain", false, "Print weights and weighted contributions of each sub-score")
	reportCmd.Flags().String("id", "", "Look the report up by its ID instead of group and date")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of trendCmd to Viper
	trendCmd.Flags().String("metric", string(schema.TrendOverall), "Metric to chart: overall or a sub-score name")
	trendCmd.Flags().Int("lookback", schema.DefaultTrendLookbackDays, "Days before --end to include")
	if err := viper.BindPFlags(trendCmd.Flags()); err != nil {
		contract.LogFatal("Error binding trend flags", err)
	}

	// scoreCmd flags describe one ad-hoc record and are read directly, not through Viper.
	scoreCmd.Flags().Int("messages", 0, "Messages posted during the day")
	scoreCmd.Flags().Int("members", 0, "Group membership count")
	scoreCmd.Flags().Int("speakers", 0, "Distinct members who posted")
	scoreCmd.Flags().Int("active-hours", 0, "Hours with at least one message")
	scoreCmd.Flags().Int("total-hours", 24, "Hours in the observation window")
	scoreCmd.Flags().Float64("top20", 0, "Share of messages sent by the top 20% of speakers")
	scoreCmd.Flags().Float64("median-response", 0, "Median seconds between a message and its reply")
	scoreCmd.Flags().Float64("topic", 0, "Topic relevance score in [0,100]")
	scoreCmd.Flags().Float64("atmosphere", 0, "Atmosphere score in [0,100]")
	scoreCmd.Flags().Bool("explain", false, "Print weights and weighted contributions of each sub-score")

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Int("min-score", contract.DefaultMinScore, "Lowest acceptable overall score")
	checkCmd.Flags().Bool("fail-on-conflict", false, "Also fail when a group carries conflict risk")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Listen address")
	serveCmd.Flags().Float64("rate-limit", contract.DefaultRateLimit, "Requests per second per client (0 disables)")
	serveCmd.Flags().Int("rate-burst", contract.DefaultRateBurst, "Burst size per client")
	serveCmd.Flags().String("cors-origins", "", "Comma-separated allowed CORS origins ('*' for any)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}

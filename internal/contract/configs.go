package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 0
	DefaultServeAddr = ":8080"
	DefaultRateLimit = 10.0 // requests per second per client
	DefaultRateBurst = 20
	MaxLookbackDays  = 366
	DefaultMinScore  = 60
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ThresholdsRawInput holds scoring threshold definitions from the YAML config file.
// Pointer fields distinguish "not provided" from an explicit zero.
type ThresholdsRawInput struct {
	AvgTarget    *float64 `mapstructure:"avg_target"`
	ResponseBase *float64 `mapstructure:"response_base"`
	Meltdown     *float64 `mapstructure:"meltdown"`
	ColdStart    *int     `mapstructure:"cold_start"`
	Micro        *int     `mapstructure:"micro"`
}

// ScoringRawInput holds the participation filter from the YAML config file.
type ScoringRawInput struct {
	Mode   string   `mapstructure:"mode"`
	Groups []string `mapstructure:"groups"`
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	GroupFilter string
	StartTime   time.Time // zero means unbounded
	EndTime     time.Time // zero means unbounded
	Granularity schema.Granularity
	RankByScore bool
	Limit       int // 0 keeps every row
	Workers     int
	Detail      bool
	Explain     bool
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	ReportDate time.Time
	ReportID   string

	TrendMetric  schema.TrendMetric
	TrendEnd     time.Time // zero means the latest day on record
	LookbackDays int

	InputFile string

	CheckMinScore       int
	CheckFailOnConflict bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	MetricsBackend   schema.DatabaseBackend
	MetricsDBConnect string // Please use env var as this is plaintext

	ServeAddr   string
	RateLimit   float64
	RateBurst   int
	CORSOrigins []string

	// Thresholds and Scoring are shared by every clone of the config.
	Thresholds *ThresholdStore
	Scoring    *ScoringConfigStore
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	GroupArg string
	DateArg  string

	// --- Fields from rootCmd.PersistentFlags() ---
	Group            string `mapstructure:"group"`
	Start            string `mapstructure:"start"`
	End              string `mapstructure:"end"`
	Granularity      string `mapstructure:"granularity"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Detail           bool   `mapstructure:"detail"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Input            string `mapstructure:"input"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	MetricsBackend   string `mapstructure:"metrics-backend"`
	MetricsDBConnect string `mapstructure:"metrics-db-connect"`
	ThresholdsStr    string `mapstructure:"thresholds-override"`
	ScoringMode      string `mapstructure:"scoring-mode"`
	ScoringGroups    string `mapstructure:"scoring-groups"`

	// --- Fields from reportsCmd.Flags() ---
	Rank  bool `mapstructure:"rank"`
	Limit int  `mapstructure:"limit"`

	// --- Fields from reportCmd.Flags() ---
	Explain bool   `mapstructure:"explain"`
	ID      string `mapstructure:"id"`

	// --- Fields from trendCmd.Flags() ---
	Metric   string `mapstructure:"metric"`
	Lookback int    `mapstructure:"lookback"`

	// --- Fields from checkCmd.Flags() ---
	MinScore       int  `mapstructure:"min-score"`
	FailOnConflict bool `mapstructure:"fail-on-conflict"`

	// --- Fields from serveCmd.Flags() ---
	Addr        string  `mapstructure:"addr"`
	RateLimit   float64 `mapstructure:"rate-limit"`
	RateBurst   int     `mapstructure:"rate-burst"`
	CORSOrigins string  `mapstructure:"cors-origins"`

	// --- Thresholds and participation from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
	Scoring    ScoringRawInput    `mapstructure:"scoring"`
}

// Clone returns a deep copy of the Config struct. The runtime stores stay shared.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CORSOrigins != nil {
		clone.CORSOrigins = slices.Clone(c.CORSOrigins)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processReportTarget(cfg, input); err != nil {
		return err
	}
	if err := processTrend(cfg, input); err != nil {
		return err
	}
	if err := processCheck(cfg, input); err != nil {
		return err
	}
	if err := processServe(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := processScoringConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend lowercases and validates a backend name.
func ParseBackend(raw string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateBackendConfigs validates cache and metrics backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	backend, err := ParseBackend(input.CacheBackend)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Metrics Backend Validation ---
	backend, err = ParseBackend(input.MetricsBackend)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	cfg.MetricsBackend = backend
	cfg.MetricsDBConnect = input.MetricsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.MetricsBackend, cfg.MetricsDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.MetricsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		metricsPath := cfg.MetricsDBConnect
		if metricsPath == "" {
			metricsPath = GetMetricsDBFilePath()
		}
		if cachePath == metricsPath && cachePath != ":memory:" {
			return fmt.Errorf("cache and metrics storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width
	cfg.RankByScore = input.Rank
	if input.Limit < 0 {
		return fmt.Errorf("limit must be non-negative (received %d)", input.Limit)
	}
	cfg.Limit = input.Limit
	cfg.InputFile = strings.TrimSpace(input.Input)

	cfg.GroupFilter = strings.TrimSpace(input.Group)
	if input.GroupArg != "" {
		cfg.GroupFilter = strings.TrimSpace(input.GroupArg)
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Granularity Validation ---
	cfg.Granularity = schema.Granularity(strings.ToLower(input.Granularity))
	if cfg.Granularity == "" {
		cfg.Granularity = schema.DayGranularity
	}
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return fmt.Errorf("invalid granularity '%s'. must be day, week, month", input.Granularity)
	}

	// --- 3. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > 2 {
		return fmt.Errorf("precision must be between 0 and 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processTimeRange handles the date parsing and range validation of report queries.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	if input.Start != "" {
		t, err := ParseDateInput(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start date '%s': %w", input.Start, err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := ParseDateInput(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date '%s': %w", input.End, err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)", cfg.StartTime.Format(schema.DateFormat), cfg.EndTime.Format(schema.DateFormat))
	}
	return nil
}

// processCheck validates the gate used by the check command.
func processCheck(cfg *Config, input *ConfigRawInput) error {
	if input.MinScore < 0 || input.MinScore > 100 {
		return fmt.Errorf("min-score must be between 0 and 100 (received %d)", input.MinScore)
	}
	cfg.CheckMinScore = input.MinScore
	cfg.CheckFailOnConflict = input.FailOnConflict
	return nil
}

// processReportTarget resolves the (group, date) or report ID of the detail view.
func processReportTarget(cfg *Config, input *ConfigRawInput) error {
	cfg.ReportID = strings.TrimSpace(input.ID)
	cfg.ReportDate = time.Time{}
	if input.DateArg == "" {
		return nil
	}
	t, err := ParseDateInput(input.DateArg, time.Now())
	if err != nil {
		return fmt.Errorf("invalid report date '%s': %w", input.DateArg, err)
	}
	cfg.ReportDate = t
	return nil
}

// processTrend validates the trend metric and window.
func processTrend(cfg *Config, input *ConfigRawInput) error {
	cfg.TrendMetric = schema.TrendMetric(strings.ToLower(input.Metric))
	if cfg.TrendMetric == "" {
		cfg.TrendMetric = schema.TrendOverall
	}
	if _, ok := schema.ValidTrendMetrics[cfg.TrendMetric]; !ok {
		return fmt.Errorf("invalid trend metric '%s'", input.Metric)
	}

	cfg.LookbackDays = input.Lookback
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = schema.DefaultTrendLookbackDays
	}
	if cfg.LookbackDays < 0 || cfg.LookbackDays > MaxLookbackDays {
		return fmt.Errorf("lookback must be between 1 and %d days (received %d)", MaxLookbackDays, input.Lookback)
	}

	// The trend window ends on --end when given.
	cfg.TrendEnd = cfg.EndTime
	return nil
}

// processServe validates the HTTP service settings.
func processServe(cfg *Config, input *ConfigRawInput) error {
	cfg.ServeAddr = input.Addr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}
	if input.RateLimit < 0 {
		return fmt.Errorf("rate-limit must not be negative (received %v)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit
	if input.RateBurst < 0 {
		return fmt.Errorf("rate-burst must not be negative (received %d)", input.RateBurst)
	}
	cfg.RateBurst = input.RateBurst

	cfg.CORSOrigins = nil
	for origin := range strings.SplitSeq(input.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
		}
	}
	return nil
}

// ResolveThresholds merges defaults, the YAML block and the --thresholds-override flag.
// The flag takes precedence over the config file.
func ResolveThresholds(raw ThresholdsRawInput, override string) (schema.ScoreThresholds, error) {
	th := schema.DefaultThresholds()

	if raw.AvgTarget != nil {
		th.AvgMessagesPerSpeakerTarget = *raw.AvgTarget
	}
	if raw.ResponseBase != nil {
		th.ResponseSpeedBase = *raw.ResponseBase
	}
	if raw.Meltdown != nil {
		th.AtmosphereMeltdownThreshold = *raw.Meltdown
	}
	if raw.ColdStart != nil {
		th.ColdStartMessageThreshold = *raw.ColdStart
	}
	if raw.Micro != nil {
		th.MicroGroupMemberThreshold = *raw.Micro
	}

	if override != "" {
		parsed, err := parseThresholdsString(override)
		if err != nil {
			return th, fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		if err := applyThresholdOverrides(&th, parsed); err != nil {
			return th, err
		}
	}

	if err := th.Validate(); err != nil {
		return th, err
	}
	return th, nil
}

// processThresholds builds the threshold store from config file and flag values.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	th, err := ResolveThresholds(input.Thresholds, input.ThresholdsStr)
	if err != nil {
		return err
	}
	store, err := NewThresholdStore(th)
	if err != nil {
		return err
	}
	cfg.Thresholds = store
	return nil
}

// processScoringConfig builds the participation store. Flags take precedence over the config file.
func processScoringConfig(cfg *Config, input *ConfigRawInput) error {
	sc := schema.DefaultScoringConfig()
	if input.Scoring.Mode != "" {
		sc.Mode = schema.ParticipationMode(strings.ToLower(input.Scoring.Mode))
	}
	sc.GroupIDs = append(sc.GroupIDs, input.Scoring.Groups...)

	if input.ScoringMode != "" {
		sc.Mode = schema.ParticipationMode(strings.ToLower(input.ScoringMode))
	}
	if input.ScoringGroups != "" {
		sc.GroupIDs = nil
		for g := range strings.SplitSeq(input.ScoringGroups, ",") {
			if trimmed := strings.TrimSpace(g); trimmed != "" {
				sc.GroupIDs = append(sc.GroupIDs, trimmed)
			}
		}
	}

	store, err := NewScoringConfigStore(sc)
	if err != nil {
		return err
	}
	cfg.Scoring = store
	return nil
}

// parseThresholdsString parses "key:value,key:value" into a map.
func parseThresholdsString(s string) (map[string]float64, error) {
	result := make(map[string]float64)
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("expected key:value, got %q", pair)
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		result[key] = v
	}
	return result, nil
}

// applyThresholdOverrides writes parsed override values into th.
func applyThresholdOverrides(th *schema.ScoreThresholds, values map[string]float64) error {
	for key, v := range values {
		switch key {
		case "avg_target":
			th.AvgMessagesPerSpeakerTarget = v
		case "response_base":
			th.ResponseSpeedBase = v
		case "meltdown":
			th.AtmosphereMeltdownThreshold = v
		case "cold_start":
			th.ColdStartMessageThreshold = int(v)
		case "micro":
			th.MicroGroupMemberThreshold = int(v)
		default:
			return fmt.Errorf("unknown threshold %q. must be avg_target, response_base, meltdown, cold_start, micro", key)
		}
	}
	return nil
}

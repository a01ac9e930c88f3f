package schema

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// Granularity represents the period size used by report aggregation.
	Granularity string

	// ParticipationMode represents how the scoring participation filter treats its group set.
	ParticipationMode string

	// TrendMetric represents a per-report value that can be charted over time.
	TrendMetric string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// Breakdown keys used in the scoring logic.
const (
	BreakdownPenetration      BreakdownKey = "penetration"       // speakerPenetration
	BreakdownAvgMessages      BreakdownKey = "avg_messages"      // avgMessagesPerSpeaker
	BreakdownResponseSpeed    BreakdownKey = "response_speed"    // responseSpeedScore
	BreakdownTimeDistribution BreakdownKey = "time_distribution" // timeDistributionScore
	BreakdownTopicRelevance   BreakdownKey = "topic_relevance"   // topicRelevanceScore (semantic)
	BreakdownAtmosphere       BreakdownKey = "atmosphere"        // atmosphereScore (semantic)
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All granularities supported.
const (
	DayGranularity   Granularity = "day" // default
	WeekGranularity  Granularity = "week"
	MonthGranularity Granularity = "month"
)

// All participation modes supported.
const (
	ParticipateAll     ParticipationMode = "all" // default
	ParticipateInclude ParticipationMode = "include"
	ParticipateExclude ParticipationMode = "exclude"
)

// All trend metrics supported.
const (
	TrendOverall          TrendMetric = "overall" // default
	TrendMessages         TrendMetric = "messages"
	TrendSpeakers         TrendMetric = "speakers"
	TrendPenetration      TrendMetric = "penetration"
	TrendAvgMessages      TrendMetric = "avg_messages"
	TrendResponseSpeed    TrendMetric = "response_speed"
	TrendTimeDistribution TrendMetric = "time_distribution"
	TrendTopicRelevance   TrendMetric = "topic_relevance"
	TrendAtmosphere       TrendMetric = "atmosphere"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Label thresholds for the overall health score.
const (
	HealthyThreshold = 80
	StableThreshold  = 60
	WatchThreshold   = 40
)

// Health labels shown next to overall scores.
const (
	HealthyLabel  = "Healthy"
	StableLabel   = "Stable"
	WatchLabel    = "Watch"
	CriticalLabel = "Critical"
	ExcludedLabel = "Excluded"
)

// DateFormat is the calendar date layout used for report identity and wire formats.
const DateFormat = "2006-01-02"

// ReportSnapshotVersion is bumped whenever the persisted AnalysisReport layout changes.
const ReportSnapshotVersion = 1

// DefaultTrendLookbackDays is the trailing window used by the detail view.
const DefaultTrendLookbackDays = 7

// Valid maps used for validation.
var (
	ValidOutputModes = map[OutputMode]struct{}{
		CSVOut:     {},
		TextOut:    {},
		JSONOut:    {},
		ParquetOut: {},
	}

	ValidGranularities = map[Granularity]struct{}{
		DayGranularity:   {},
		WeekGranularity:  {},
		MonthGranularity: {},
	}

	ValidParticipationModes = map[ParticipationMode]struct{}{
		ParticipateAll:     {},
		ParticipateInclude: {},
		ParticipateExclude: {},
	}

	ValidTrendMetrics = map[TrendMetric]struct{}{
		TrendOverall:          {},
		TrendMessages:         {},
		TrendSpeakers:         {},
		TrendPenetration:      {},
		TrendAvgMessages:      {},
		TrendResponseSpeed:    {},
		TrendTimeDistribution: {},
		TrendTopicRelevance:   {},
		TrendAtmosphere:       {},
	}

	ValidDatabaseBackends = map[DatabaseBackend]struct{}{
		SQLiteBackend:     {},
		MySQLBackend:      {},
		PostgreSQLBackend: {},
		NoneBackend:       {},
	}
)

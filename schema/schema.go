// Package schema has configs, models and global variables for all parts of grouppulse.
package schema

import (
	"fmt"
	"math"
	"time"
)

// BaseMetrics represents the statistical activity of one group on one calendar day.
// Values arrive precomputed from the ingestion side and are never mutated after that.
type BaseMetrics struct {
	TotalMessages          int     `json:"total_messages"`           // Messages posted during the day
	TotalMembers           int     `json:"total_members"`            // Group membership count
	ActiveSpeakers         int     `json:"active_speakers"`          // Distinct members who posted at least once
	ActiveHours            int     `json:"active_hours"`             // Hours with at least one message
	TotalHours             int     `json:"total_hours"`              // Hours in the observation window (normally 24)
	Top20Percentage        float64 `json:"top20_percentage"`         // Share of messages sent by the top 20% of speakers
	MedianResponseInterval float64 `json:"median_response_interval"` // Median seconds between a message and its reply
}

// Validate rejects negative or non-finite inputs.
func (m BaseMetrics) Validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{"total_messages", m.TotalMessages},
		{"total_members", m.TotalMembers},
		{"active_speakers", m.ActiveSpeakers},
		{"active_hours", m.ActiveHours},
		{"total_hours", m.TotalHours},
	}
	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %d", ErrInvalidMetric, c.name, c.value)
		}
	}

	reals := []struct {
		name  string
		value float64
	}{
		{"top20_percentage", m.Top20Percentage},
		{"median_response_interval", m.MedianResponseInterval},
	}
	for _, r := range reals {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) || r.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidMetric, r.name, r.value)
		}
	}
	return nil
}

// SemanticScores are the two externally supplied semantic sub-scores, each in [0,100].
type SemanticScores struct {
	TopicRelevance float64 `json:"topic_relevance"`
	Atmosphere     float64 `json:"atmosphere"`
}

// Validate rejects scores outside [0,100] or that are not finite.
func (s SemanticScores) Validate() error {
	if err := validatePercent("topic_relevance", s.TopicRelevance); err != nil {
		return err
	}
	return validatePercent("atmosphere", s.Atmosphere)
}

func validatePercent(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%w: %s must be within [0,100], got %v", ErrInvalidMetric, name, v)
	}
	return nil
}

// ScoreBreakdown holds the six sub-scores that feed the composite score.
type ScoreBreakdown struct {
	SpeakerPenetration    float64 `json:"speaker_penetration"`
	AvgMessagesPerSpeaker float64 `json:"avg_messages_per_speaker"`
	ResponseSpeed         float64 `json:"response_speed"`
	TimeDistribution      float64 `json:"time_distribution"`
	TopicRelevance        float64 `json:"topic_relevance"`
	Atmosphere            float64 `json:"atmosphere"`
}

// RiskStatus captures the risk flags of a single report.
type RiskStatus struct {
	IsNewGroup      bool   `json:"is_new_group"`
	IsMicroGroup    bool   `json:"is_micro_group"`
	HasConflictRisk bool   `json:"has_conflict_risk"`
	RiskMessage     string `json:"risk_message,omitempty"`
}

// MemberStat is one row of the per-member activity table.
type MemberStat struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
}

// ReportDetail holds the display payloads of a report. The scoring engine never reads them.
type ReportDetail struct {
	MemberStats    []MemberStat   `json:"member_stats,omitempty"`
	HourlyActivity []int          `json:"hourly_activity,omitempty"`
	MessageTypes   map[string]int `json:"message_types,omitempty"`
}

// DailyRecord is the unit delivered by a metrics source: one group on one day.
type DailyRecord struct {
	GroupID   string         `json:"group_id"`
	GroupName string         `json:"group_name"`
	Date      time.Time      `json:"date"`
	Metrics   BaseMetrics    `json:"metrics"`
	Semantic  SemanticScores `json:"semantic"`
	Summary   string         `json:"summary,omitempty"`
	Detail    ReportDetail   `json:"detail"`
}

// AnalysisReport is the immutable scored snapshot for one (group, date).
type AnalysisReport struct {
	ID                string          `json:"id"`
	GroupID           string          `json:"group_id"`
	GroupName         string          `json:"group_name"`
	Date              time.Time       `json:"date"`
	Metrics           BaseMetrics     `json:"metrics"`
	Scored            bool            `json:"scored"`
	Breakdown         ScoreBreakdown  `json:"breakdown"`
	OverallScore      int             `json:"overall_score"`
	Risk              RiskStatus      `json:"risk"`
	Downweighted      bool            `json:"downweighted"`
	Provisional       bool            `json:"provisional"`
	Summary           string          `json:"summary,omitempty"`
	Detail            ReportDetail    `json:"detail"`
	Thresholds        ScoreThresholds `json:"thresholds"`
	ThresholdsVersion int64           `json:"thresholds_version"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// ReportRow is one aggregated row of the reporting view.
type ReportRow struct {
	GroupID        string         `json:"group_id"`
	GroupName      string         `json:"group_name"`
	Granularity    Granularity    `json:"granularity"`
	PeriodStart    time.Time      `json:"period_start"`
	PeriodEnd      time.Time      `json:"period_end"`
	Label          string         `json:"label"`
	Days           int            `json:"days"`
	MessageCount   int            `json:"message_count"`
	ActiveSpeakers int            `json:"active_speakers"`
	Scored         bool           `json:"scored"`
	OverallScore   int            `json:"overall_score"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Risk           RiskStatus     `json:"risk"`
	Downweighted   bool           `json:"downweighted"`
	Provisional    bool           `json:"provisional"`
	Summary        string         `json:"summary,omitempty"`
	LatestReportID string         `json:"latest_report_id"`
	LatestDate     time.Time      `json:"latest_date"`
}

// TrendPoint is one day of a trend series.
type TrendPoint struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Scored bool      `json:"scored"`
}

// TrendResult is a trailing window of one metric for one group.
type TrendResult struct {
	GroupID      string       `json:"group_id"`
	GroupName    string       `json:"group_name"`
	Metric       TrendMetric  `json:"metric"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	LookbackDays int          `json:"lookback_days"`
	Points       []TrendPoint `json:"points"`
}

// GroupInfo summarizes what a metrics source knows about a group.
type GroupInfo struct {
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	Days      int       `json:"days"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
	Scored    bool      `json:"scored"`
}

// GroupReportView is the detail view: one report, its weighted contributions and a trailing trend.
type GroupReportView struct {
	Report        AnalysisReport           `json:"report"`
	Contributions map[BreakdownKey]float64 `json:"contributions"`
	Trend         TrendResult              `json:"trend"`
}

// CheckViolation is one group that failed the health gate.
type CheckViolation struct {
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	Date      time.Time `json:"date"`
	Score     int       `json:"score"`
	Reason    string    `json:"reason"`
}

// CheckResult is the outcome of the health gate over the latest report of every scored group.
type CheckResult struct {
	MinScore       int              `json:"min_score"`
	FailOnConflict bool             `json:"fail_on_conflict"`
	TotalGroups    int              `json:"total_groups"`
	CheckedGroups  int              `json:"checked_groups"`
	MinObserved    int              `json:"min_observed"`
	AvgObserved    float64          `json:"avg_observed"`
	Passed         bool             `json:"passed"`
	Violations     []CheckViolation `json:"violations"`
}

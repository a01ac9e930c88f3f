package core

import (
	"fmt"

	"github.com/huangsam/grouppulse/schema"
)

// EvaluateRisk classifies a day into its risk flags.
// Only one message is surfaced, in severity order: conflict, then cold start, then micro group.
// Pass scored=false for groups outside the participation filter; they never carry conflict risk.
func EvaluateRisk(m schema.BaseMetrics, atmosphere float64, th schema.ScoreThresholds, scored bool) schema.RiskStatus {
	status := schema.RiskStatus{
		IsNewGroup:      m.TotalMessages < th.ColdStartMessageThreshold,
		IsMicroGroup:    m.TotalMembers < th.MicroGroupMemberThreshold,
		HasConflictRisk: scored && atmosphere < th.AtmosphereMeltdownThreshold,
	}

	switch {
	case status.HasConflictRisk:
		status.RiskMessage = fmt.Sprintf("Atmosphere %.0f is below the meltdown threshold %.0f; score downweighted", atmosphere, th.AtmosphereMeltdownThreshold)
	case status.IsNewGroup:
		status.RiskMessage = fmt.Sprintf("New group: fewer than %d messages, score is provisional", th.ColdStartMessageThreshold)
	case status.IsMicroGroup:
		status.RiskMessage = fmt.Sprintf("Micro group: fewer than %d members, statistics have low confidence", th.MicroGroupMemberThreshold)
	}
	return status
}

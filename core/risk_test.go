package core

import (
	"testing"

	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateRisk(t *testing.T) {
	th := schema.DefaultThresholds()

	tests := []struct {
		name       string
		metrics    schema.BaseMetrics
		atmosphere float64
		scored     bool
		newGroup   bool
		micro      bool
		conflict   bool
		message    string
	}{
		{
			name:       "healthy",
			metrics:    schema.BaseMetrics{TotalMessages: 100, TotalMembers: 50},
			atmosphere: 80,
			scored:     true,
		},
		{
			name:       "conflict",
			metrics:    schema.BaseMetrics{TotalMessages: 100, TotalMembers: 50},
			atmosphere: 20,
			scored:     true,
			conflict:   true,
			message:    "Atmosphere 20 is below the meltdown threshold 30; score downweighted",
		},
		{
			name:       "at meltdown threshold is not conflict",
			metrics:    schema.BaseMetrics{TotalMessages: 100, TotalMembers: 50},
			atmosphere: 30,
			scored:     true,
		},
		{
			name:       "cold start",
			metrics:    schema.BaseMetrics{TotalMessages: 4, TotalMembers: 50},
			atmosphere: 80,
			scored:     true,
			newGroup:   true,
			message:    "New group: fewer than 5 messages, score is provisional",
		},
		{
			name:       "micro group",
			metrics:    schema.BaseMetrics{TotalMessages: 100, TotalMembers: 2},
			atmosphere: 80,
			scored:     true,
			micro:      true,
			message:    "Micro group: fewer than 3 members, statistics have low confidence",
		},
		{
			name:       "all flags prefer conflict message",
			metrics:    schema.BaseMetrics{TotalMessages: 1, TotalMembers: 1},
			atmosphere: 5,
			scored:     true,
			newGroup:   true,
			micro:      true,
			conflict:   true,
			message:    "Atmosphere 5 is below the meltdown threshold 30; score downweighted",
		},
		{
			name:       "cold start wins over micro",
			metrics:    schema.BaseMetrics{TotalMessages: 2, TotalMembers: 1},
			atmosphere: 90,
			scored:     true,
			newGroup:   true,
			micro:      true,
			message:    "New group: fewer than 5 messages, score is provisional",
		},
		{
			name:       "silent day has a zero atmosphere score",
			metrics:    schema.BaseMetrics{TotalMessages: 0, TotalMembers: 50},
			atmosphere: 0,
			scored:     true,
			newGroup:   true,
			conflict:   true,
			message:    "Atmosphere 0 is below the meltdown threshold 30; score downweighted",
		},
		{
			name:     "unscored never carries conflict",
			metrics:  schema.BaseMetrics{TotalMessages: 100, TotalMembers: 50},
			scored:   false,
			conflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := EvaluateRisk(tt.metrics, tt.atmosphere, th, tt.scored)
			assert.Equal(t, tt.newGroup, status.IsNewGroup)
			assert.Equal(t, tt.micro, status.IsMicroGroup)
			assert.Equal(t, tt.conflict, status.HasConflictRisk)
			assert.Equal(t, tt.message, status.RiskMessage)
		})
	}
}

func TestEvaluateRiskFollowsThresholds(t *testing.T) {
	th := schema.DefaultThresholds()
	th.ColdStartMessageThreshold = 0
	th.MicroGroupMemberThreshold = 0
	th.AtmosphereMeltdownThreshold = 100

	status := EvaluateRisk(schema.BaseMetrics{}, 99.9, th, true)
	assert.False(t, status.IsNewGroup)
	assert.False(t, status.IsMicroGroup)
	assert.True(t, status.HasConflictRisk)
}

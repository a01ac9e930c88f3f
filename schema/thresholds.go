package schema

import (
	"fmt"
	"math"
	"slices"
)

// Default scoring thresholds.
const (
	DefaultAvgMessagesPerSpeakerTarget = 20.0
	DefaultResponseSpeedBase           = 300.0 // seconds
	DefaultAtmosphereMeltdownThreshold = 30.0
	DefaultColdStartMessageThreshold   = 5
	DefaultMicroGroupMemberThreshold   = 3
)

// ScoreThresholds parameterizes the dimension scorer and the risk evaluator.
type ScoreThresholds struct {
	AvgMessagesPerSpeakerTarget float64 `json:"avg_messages_per_speaker_target"`
	ResponseSpeedBase           float64 `json:"response_speed_base"`
	AtmosphereMeltdownThreshold float64 `json:"atmosphere_meltdown_threshold"`
	ColdStartMessageThreshold   int     `json:"cold_start_message_threshold"`
	MicroGroupMemberThreshold   int     `json:"micro_group_member_threshold"`
}

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() ScoreThresholds {
	return ScoreThresholds{
		AvgMessagesPerSpeakerTarget: DefaultAvgMessagesPerSpeakerTarget,
		ResponseSpeedBase:           DefaultResponseSpeedBase,
		AtmosphereMeltdownThreshold: DefaultAtmosphereMeltdownThreshold,
		ColdStartMessageThreshold:   DefaultColdStartMessageThreshold,
		MicroGroupMemberThreshold:   DefaultMicroGroupMemberThreshold,
	}
}

// Validate checks that every ratio denominator is positive and every bound is usable.
func (t ScoreThresholds) Validate() error {
	if !positive(t.AvgMessagesPerSpeakerTarget) {
		return fmt.Errorf("%w: avg_messages_per_speaker_target must be > 0, got %v", ErrConfigurationOutOfRange, t.AvgMessagesPerSpeakerTarget)
	}
	if !positive(t.ResponseSpeedBase) {
		return fmt.Errorf("%w: response_speed_base must be > 0, got %v", ErrConfigurationOutOfRange, t.ResponseSpeedBase)
	}
	if !positive(t.AtmosphereMeltdownThreshold) || t.AtmosphereMeltdownThreshold > 100 {
		return fmt.Errorf("%w: atmosphere_meltdown_threshold must be within (0,100], got %v", ErrConfigurationOutOfRange, t.AtmosphereMeltdownThreshold)
	}
	if t.ColdStartMessageThreshold < 0 {
		return fmt.Errorf("%w: cold_start_message_threshold must be >= 0, got %d", ErrConfigurationOutOfRange, t.ColdStartMessageThreshold)
	}
	if t.MicroGroupMemberThreshold < 0 {
		return fmt.Errorf("%w: micro_group_member_threshold must be >= 0, got %d", ErrConfigurationOutOfRange, t.MicroGroupMemberThreshold)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// GroupScoringConfig decides which groups receive a scored report.
type GroupScoringConfig struct {
	Mode     ParticipationMode `json:"mode"`
	GroupIDs []string          `json:"group_ids"`
}

// DefaultScoringConfig scores every group.
func DefaultScoringConfig() GroupScoringConfig {
	return GroupScoringConfig{Mode: ParticipateAll}
}

// Validate checks the participation mode.
func (c GroupScoringConfig) Validate() error {
	if _, ok := ValidParticipationModes[c.Mode]; !ok {
		return fmt.Errorf("%w: scoring mode must be all, include or exclude, got %q", ErrConfigurationOutOfRange, c.Mode)
	}
	return nil
}

// Contains reports whether groupID is listed in the config's group set.
func (c GroupScoringConfig) Contains(groupID string) bool {
	return slices.Contains(c.GroupIDs, groupID)
}

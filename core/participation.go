package core

import "github.com/huangsam/grouppulse/schema"

// ShouldScore reports whether groupID takes part in scoring under cfg.
func ShouldScore(groupID string, cfg schema.GroupScoringConfig) bool {
	switch cfg.Mode {
	case schema.ParticipateInclude:
		return cfg.Contains(groupID)
	case schema.ParticipateExclude:
		return !cfg.Contains(groupID)
	default:
		return true
	}
}

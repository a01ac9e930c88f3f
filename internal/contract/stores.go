package contract

import (
	"fmt"
	"slices"
	"sync"

	"github.com/huangsam/grouppulse/schema"
)

// ThresholdStore holds the process-wide scoring thresholds.
// Reads return a value snapshot; writes are validated and bump the version.
type ThresholdStore struct {
	mu      sync.RWMutex
	current schema.ScoreThresholds
	version int64
}

// NewThresholdStore returns a store seeded with initial, or an error if initial is out of range.
func NewThresholdStore(initial schema.ScoreThresholds) (*ThresholdStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &ThresholdStore{current: initial, version: 1}, nil
}

// Snapshot returns the current thresholds and their version.
func (s *ThresholdStore) Snapshot() (schema.ScoreThresholds, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}

// Update replaces the thresholds. On error the previous value is kept.
func (s *ThresholdStore) Update(next schema.ScoreThresholds) (int64, error) {
	if err := next.Validate(); err != nil {
		return 0, fmt.Errorf("rejected threshold update: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	s.version++
	return s.version, nil
}

// ScoringConfigStore holds the process-wide group participation config.
type ScoringConfigStore struct {
	mu      sync.RWMutex
	current schema.GroupScoringConfig
	version int64
}

// NewScoringConfigStore returns a store seeded with initial.
func NewScoringConfigStore(initial schema.GroupScoringConfig) (*ScoringConfigStore, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	initial.GroupIDs = slices.Clone(initial.GroupIDs)
	return &ScoringConfigStore{current: initial, version: 1}, nil
}

// Snapshot returns a copy of the current config and its version.
func (s *ScoringConfigStore) Snapshot() (schema.GroupScoringConfig, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.current
	snap.GroupIDs = slices.Clone(s.current.GroupIDs)
	return snap, s.version
}

// Update replaces the config. On error the previous value is kept.
func (s *ScoringConfigStore) Update(next schema.GroupScoringConfig) (int64, error) {
	if err := next.Validate(); err != nil {
		return 0, fmt.Errorf("rejected scoring config update: %w", err)
	}
	next.GroupIDs = slices.Clone(next.GroupIDs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	s.version++
	return s.version, nil
}

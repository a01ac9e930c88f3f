package core

import (
	"testing"

	"github.com/huangsam/grouppulse/schema"
)

// FuzzComputeBreakdown fuzzes the scorer with arbitrary metric values.
func FuzzComputeBreakdown(f *testing.F) {
	f.Add(100, 50, 25, 10, 12, 150.0, 80.0, 20.0)
	f.Add(0, 0, 0, 0, 0, 0.0, 0.0, 0.0)
	f.Add(1, 1, 1, 24, 24, 0.0, 100.0, 100.0)
	f.Add(-1, 5, 3, 2, 24, 10.0, 50.0, 50.0)
	f.Add(5000, 3, 700, 30, 24, 99999.0, 50.0, 0.0)

	th := schema.DefaultThresholds()
	f.Fuzz(func(t *testing.T, messages, members, speakers, activeHours, totalHours int, interval, topic, atmosphere float64) {
		m := schema.BaseMetrics{
			TotalMessages:          messages,
			TotalMembers:           members,
			ActiveSpeakers:         speakers,
			ActiveHours:            activeHours,
			TotalHours:             totalHours,
			MedianResponseInterval: interval,
		}
		sem := schema.SemanticScores{TopicRelevance: topic, Atmosphere: atmosphere}

		b, err := ComputeBreakdown(m, sem, th)
		if err != nil {
			if m.Validate() == nil && sem.Validate() == nil {
				t.Fatalf("valid input rejected: %v", err)
			}
			return
		}

		for key, v := range b.Values() {
			if v < 0 || v > 100 {
				t.Fatalf("%s out of range: %v", key, v)
			}
		}
		overall := CompositeScore(b)
		if overall < 0 || overall > 100 {
			t.Fatalf("overall out of range: %d", overall)
		}
		if messages == 0 && (overall != 0 || b != (schema.ScoreBreakdown{})) {
			t.Fatalf("silent day scored: %+v", b)
		}
	})
}

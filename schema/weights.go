package schema

// Group weights of the composite score.
const (
	StatisticalWeight = 0.6
	SemanticWeight    = 0.4
)

// DimensionWeight describes one sub-score and its place in the composite formula.
type DimensionWeight struct {
	Key         BreakdownKey `json:"key"`
	Name        string       `json:"name"`
	Semantic    bool         `json:"semantic"`
	InnerWeight float64      `json:"inner_weight"` // weight inside its group
	Description string       `json:"description"`
}

// Effective returns the dimension's share of the overall score.
func (w DimensionWeight) Effective() float64 {
	if w.Semantic {
		return SemanticWeight * w.InnerWeight
	}
	return StatisticalWeight * w.InnerWeight
}

// DefaultDimensionWeights returns the weight table in display order.
func DefaultDimensionWeights() []DimensionWeight {
	return []DimensionWeight{
		{BreakdownPenetration, "Speaker penetration", false, 0.35, "Share of members who spoke"},
		{BreakdownAvgMessages, "Messages per speaker", false, 0.25, "Messages per active speaker against the target"},
		{BreakdownResponseSpeed, "Response speed", false, 0.20, "Median reply interval against the base"},
		{BreakdownTimeDistribution, "Time distribution", false, 0.20, "Share of hours with activity"},
		{BreakdownTopicRelevance, "Topic relevance", true, 0.70, "Semantic on-topic score"},
		{BreakdownAtmosphere, "Atmosphere", true, 0.30, "Semantic tone score"},
	}
}

// Values maps a breakdown onto its keys.
func (b ScoreBreakdown) Values() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownPenetration:      b.SpeakerPenetration,
		BreakdownAvgMessages:      b.AvgMessagesPerSpeaker,
		BreakdownResponseSpeed:    b.ResponseSpeed,
		BreakdownTimeDistribution: b.TimeDistribution,
		BreakdownTopicRelevance:   b.TopicRelevance,
		BreakdownAtmosphere:       b.Atmosphere,
	}
}

// Contributions returns each sub-score's weighted share of the overall score.
func (b ScoreBreakdown) Contributions() map[BreakdownKey]float64 {
	values := b.Values()
	out := make(map[BreakdownKey]float64, len(values))
	for _, w := range DefaultDimensionWeights() {
		out[w.Key] = w.Effective() * values[w.Key]
	}
	return out
}

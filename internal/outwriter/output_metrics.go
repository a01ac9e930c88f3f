package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// metricsRenderModel is the static description of the composite formula.
type metricsRenderModel struct {
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	StatisticalWeight float64                  `json:"statistical_weight"`
	SemanticWeight    float64                  `json:"semantic_weight"`
	Formula           string                   `json:"formula"`
	Dimensions        []schema.DimensionWeight `json:"dimensions"`
	Labels            map[string]string        `json:"labels"`
}

// buildMetricsRenderModel constructs the render model from the dimension weights.
func buildMetricsRenderModel(weights []schema.DimensionWeight) metricsRenderModel {
	var stat, sem []string
	for _, d := range weights {
		part := fmt.Sprintf("%.2f*%s", d.InnerWeight, d.Key)
		if d.Semantic {
			sem = append(sem, part)
		} else {
			stat = append(stat, part)
		}
	}
	formula := fmt.Sprintf("Score = round(%.1f*(%s) + %.1f*(%s))",
		schema.StatisticalWeight, strings.Join(stat, "+"),
		schema.SemanticWeight, strings.Join(sem, "+"))

	return metricsRenderModel{
		Title:             "Group Health Score",
		Description:       "Overall score = weighted blend of statistical and semantic sub-scores, each in [0,100]",
		StatisticalWeight: schema.StatisticalWeight,
		SemanticWeight:    schema.SemanticWeight,
		Formula:           formula,
		Dimensions:        weights,
		Labels: map[string]string{
			schema.HealthyLabel:  fmt.Sprintf(">= %d", schema.HealthyThreshold),
			schema.StableLabel:   fmt.Sprintf(">= %d", schema.StableThreshold),
			schema.WatchLabel:    fmt.Sprintf(">= %d", schema.WatchThreshold),
			schema.CriticalLabel: fmt.Sprintf("< %d", schema.WatchThreshold),
		},
	}
}

// PrintMetricsDefinitions displays the formal definition of the health score.
// This is a static display that does not require any metrics source.
func PrintMetricsDefinitions(weights []schema.DimensionWeight, cfg *contract.Config) error {
	model := buildMetricsRenderModel(weights)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, model)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("metric definitions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, model)
		}, "Wrote text")
	}
}

func writeCSVMetrics(w io.Writer, model metricsRenderModel) error {
	header := []string{"key", "name", "group", "inner_weight", "effective_weight", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range model.Dimensions {
			group := "statistical"
			if d.Semantic {
				group = "semantic"
			}
			rec := []string{
				string(d.Key),
				d.Name,
				group,
				strconv.FormatFloat(d.InnerWeight, 'f', 2, 64),
				strconv.FormatFloat(d.Effective(), 'f', 2, 64),
				d.Description,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeMetricsText(w io.Writer, model metricsRenderModel) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🩺 %s\n", model.Title)
	fmt.Fprintf(&b, "===================\n\n")
	fmt.Fprintf(&b, "%s\n\n", model.Description)
	fmt.Fprintf(&b, "%s\n\n", model.Formula)
	for _, d := range model.Dimensions {
		fmt.Fprintf(&b, "%-22s %.2f  %s\n", d.Name, d.Effective(), d.Description)
	}
	fmt.Fprintf(&b, "\n🏷️  Labels: %s %s, %s %s, %s %s, %s %s\n",
		schema.HealthyLabel, model.Labels[schema.HealthyLabel],
		schema.StableLabel, model.Labels[schema.StableLabel],
		schema.WatchLabel, model.Labels[schema.WatchLabel],
		schema.CriticalLabel, model.Labels[schema.CriticalLabel])
	_, err := io.WriteString(w, b.String())
	return err
}

// thresholdsRenderModel is the effective scoring configuration.
type thresholdsRenderModel struct {
	Version    int64                     `json:"version"`
	Thresholds schema.ScoreThresholds    `json:"thresholds"`
	Scoring    schema.GroupScoringConfig `json:"scoring"`
}

// PrintThresholds displays the effective thresholds, their version and the participation config.
func PrintThresholds(th schema.ScoreThresholds, version int64, scoring schema.GroupScoringConfig, cfg *contract.Config) error {
	model := thresholdsRenderModel{Version: version, Thresholds: th, Scoring: scoring}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "value"}, func(cw *csv.Writer) error {
				return cw.WriteAll(thresholdPairs(model))
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("thresholds")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "⚖️  Thresholds (version %d)\n", version); err != nil {
				return err
			}
			for _, p := range thresholdPairs(model)[1:] {
				if _, err := fmt.Fprintf(w, "   %-32s %s\n", p[0], p[1]); err != nil {
					return err
				}
			}
			return nil
		}, "Wrote text")
	}
}

// thresholdPairs flattens the model into name/value pairs, version first.
func thresholdPairs(m thresholdsRenderModel) [][]string {
	groups := "-"
	if len(m.Scoring.GroupIDs) > 0 {
		groups = strings.Join(m.Scoring.GroupIDs, ",")
	}
	return [][]string{
		{"version", strconv.FormatInt(m.Version, 10)},
		{"avg_messages_per_speaker_target", strconv.FormatFloat(m.Thresholds.AvgMessagesPerSpeakerTarget, 'f', -1, 64)},
		{"response_speed_base", strconv.FormatFloat(m.Thresholds.ResponseSpeedBase, 'f', -1, 64)},
		{"atmosphere_meltdown_threshold", strconv.FormatFloat(m.Thresholds.AtmosphereMeltdownThreshold, 'f', -1, 64)},
		{"cold_start_message_threshold", strconv.Itoa(m.Thresholds.ColdStartMessageThreshold)},
		{"micro_group_member_threshold", strconv.Itoa(m.Thresholds.MicroGroupMemberThreshold)},
		{"scoring_mode", string(m.Scoring.Mode)},
		{"scoring_groups", groups},
	}
}

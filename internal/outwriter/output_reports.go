package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/internal/parquet"
	"github.com/huangsam/grouppulse/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintReportRows outputs aggregated report rows, dispatching based on the output format configured.
func PrintReportRows(rows []schema.ReportRow, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONReportRows(w, rows)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVReportRows(csvWriter, rows, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteReportRowsParquet(parquet.ConvertReportRows(rows), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportRowsTable(w, rows, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeReportRowsTable generates and writes the human-readable table.
func writeReportRowsTable(w io.Writer, rows []schema.ReportRow, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"Period", "Group", "Score", "Label", "Messages", "Speakers", "Risk"}
	if cfg.Detail {
		headers = append(headers, "Pen", "Avg", "Resp", "Time", "Topic", "Atmos")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 2. Populate Rows
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	totalMessages := 0
	for _, r := range rows {
		name := r.GroupName
		if name == "" {
			name = r.GroupID
		}
		row := []string{
			r.Label,
			contract.TruncateText(name, nameWidth),
			formatScore(r.OverallScore, r.Scored),
			contract.GetColorLabel(r.OverallScore, r.Scored),
			fmt.Sprintf(intFmt, r.MessageCount),
			fmt.Sprintf(intFmt, r.ActiveSpeakers),
			formatRiskFlags(r.Risk),
		}
		if cfg.Detail {
			b := r.Breakdown
			row = append(row,
				fmtFloat(b.SpeakerPenetration),
				fmtFloat(b.AvgMessagesPerSpeaker),
				fmtFloat(b.ResponseSpeed),
				fmtFloat(b.TimeDistribution),
				fmtFloat(b.TopicRelevance),
				fmtFloat(b.Atmosphere),
			)
		}
		if cfg.Explain {
			explain := "Not scored"
			if r.Scored {
				explain = formatTopFactors(r.Breakdown.Contributions())
			}
			row = append(row, explain)
		}
		data = append(data, row)
		totalMessages += r.MessageCount
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d %s rows (total messages: %d)\n", len(rows), cfg.Granularity, totalMessages); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Reports built in %v with %d workers. Snapshot backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVReportRows writes the report rows in CSV format.
func writeCSVReportRows(w *csv.Writer, rows []schema.ReportRow, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"period",
		"period_start",
		"period_end",
		"group_id",
		"group_name",
		"days",
		"message_count",
		"active_speakers",
		"scored",
		"overall_score",
		"label",
		"speaker_penetration",
		"avg_messages_per_speaker",
		"response_speed",
		"time_distribution",
		"topic_relevance",
		"atmosphere",
		"risk",
		"downweighted",
		"provisional",
		"latest_report_id",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		b := r.Breakdown
		rec := []string{
			r.Label,
			r.PeriodStart.Format(schema.DateFormat),
			r.PeriodEnd.Format(schema.DateFormat),
			r.GroupID,
			r.GroupName,
			fmt.Sprintf(intFmt, r.Days),
			fmt.Sprintf(intFmt, r.MessageCount),
			fmt.Sprintf(intFmt, r.ActiveSpeakers),
			strconv.FormatBool(r.Scored),
			formatScore(r.OverallScore, r.Scored),
			contract.GetPlainLabel(r.OverallScore, r.Scored),
			fmtFloat(b.SpeakerPenetration),
			fmtFloat(b.AvgMessagesPerSpeaker),
			fmtFloat(b.ResponseSpeed),
			fmtFloat(b.TimeDistribution),
			fmtFloat(b.TopicRelevance),
			fmtFloat(b.Atmosphere),
			formatRiskFlags(r.Risk),
			strconv.FormatBool(r.Downweighted),
			strconv.FormatBool(r.Provisional),
			r.LatestReportID,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONReportRows writes the report rows in JSON format with a health label on each row.
func writeJSONReportRows(w io.Writer, rows []schema.ReportRow) error {
	type JSONReportRow struct {
		HealthLabel string `json:"health_label"`
		schema.ReportRow
	}

	output := make([]JSONReportRow, len(rows))
	for i, r := range rows {
		output[i] = JSONReportRow{
			HealthLabel: contract.GetPlainLabel(r.OverallScore, r.Scored),
			ReportRow:   r,
		}
	}
	return writeJSON(w, output)
}

package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintGroupReport outputs the detail view of one report.
func PrintGroupReport(view schema.GroupReportView, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONGroupReport(w, view)
		}, "Wrote JSON report")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVGroupReport(csvWriter, view, fmtFloat)
		}, "Wrote CSV report")
	case schema.ParquetOut:
		return errParquetUnsupported("a single report")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupReportText(w, view, cfg, fmtFloat, duration)
		}, "Wrote report")
	}
}

// writeJSONGroupReport writes the view with its health label.
func writeJSONGroupReport(w io.Writer, view schema.GroupReportView) error {
	output := struct {
		HealthLabel string `json:"health_label"`
		schema.GroupReportView
	}{
		HealthLabel:     contract.GetPlainLabel(view.Report.OverallScore, view.Report.Scored),
		GroupReportView: view,
	}
	return writeJSON(w, output)
}

// writeCSVGroupReport writes one row per sub-score with the report identity repeated.
func writeCSVGroupReport(w *csv.Writer, view schema.GroupReportView, fmtFloat func(float64) string) error {
	r := view.Report
	header := []string{"report_id", "group_id", "date", "overall_score", "label", "dimension", "score", "weight", "contribution"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	values := r.Breakdown.Values()
	for _, dim := range schema.DefaultDimensionWeights() {
		rec := []string{
			r.ID,
			r.GroupID,
			r.Date.Format(schema.DateFormat),
			formatScore(r.OverallScore, r.Scored),
			contract.GetPlainLabel(r.OverallScore, r.Scored),
			string(dim.Key),
			fmtFloat(values[dim.Key]),
			strconv.FormatFloat(dim.Effective(), 'f', 2, 64),
			fmtFloat(view.Contributions[dim.Key]),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// writeGroupReportText renders the detail view as a set of small tables.
func writeGroupReportText(w io.Writer, view schema.GroupReportView, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	r := view.Report
	label := contract.GetColorLabel(r.OverallScore, r.Scored)
	name := r.GroupName
	if name == "" {
		name = r.GroupID
	}

	fmt.Fprintf(w, "🔎 Group: %s (%s)\n", name, r.GroupID)
	fmt.Fprintf(w, "📅 Date: %s  Report: %s\n", r.Date.Format(schema.DateFormat), r.ID)
	fmt.Fprintf(w, "⚖️  Thresholds v%d: avg target %.0f, response base %.0fs, meltdown %.0f, cold start %d, micro %d\n\n",
		r.ThresholdsVersion, r.Thresholds.AvgMessagesPerSpeakerTarget, r.Thresholds.ResponseSpeedBase,
		r.Thresholds.AtmosphereMeltdownThreshold, r.Thresholds.ColdStartMessageThreshold, r.Thresholds.MicroGroupMemberThreshold)

	// 1. Overview
	overview := [][]string{
		{"Overall", fmt.Sprintf("%s %s", formatScore(r.OverallScore, r.Scored), label)},
		{"Messages", strconv.Itoa(r.Metrics.TotalMessages)},
		{"Members", strconv.Itoa(r.Metrics.TotalMembers)},
		{"Active speakers", strconv.Itoa(r.Metrics.ActiveSpeakers)},
		{"Active hours", fmt.Sprintf("%d/%d", r.Metrics.ActiveHours, r.Metrics.TotalHours)},
		{"Top 20% share", fmtFloat(r.Metrics.Top20Percentage)},
		{"Median response", fmtFloat(r.Metrics.MedianResponseInterval) + "s"},
		{"Risk", formatRiskFlags(r.Risk)},
	}
	if r.Risk.RiskMessage != "" {
		overview = append(overview, []string{"Risk message", r.Risk.RiskMessage})
	}
	if r.Downweighted {
		overview = append(overview, []string{"Downweighted", "yes"})
	}
	if r.Provisional {
		overview = append(overview, []string{"Provisional", "yes"})
	}
	if r.Summary != "" {
		overview = append(overview, []string{"Summary", r.Summary})
	}
	if err := renderTable(w, []string{"Field", "Value"}, overview, tw.AlignLeft); err != nil {
		return err
	}

	// 2. Breakdown
	if r.Scored {
		headers := []string{"Dimension", "Score"}
		if cfg.Explain {
			headers = append(headers, "Weight", "Contribution")
		}
		values := r.Breakdown.Values()
		var rows [][]string
		for _, dim := range schema.DefaultDimensionWeights() {
			row := []string{dim.Name, fmtFloat(values[dim.Key])}
			if cfg.Explain {
				row = append(row, fmt.Sprintf("%.2f", dim.Effective()), fmtFloat(view.Contributions[dim.Key]))
			}
			rows = append(rows, row)
		}
		if err := renderTable(w, headers, rows, tw.AlignRight); err != nil {
			return err
		}
		if cfg.Explain {
			fmt.Fprintf(w, "Top factors: %s\n", formatTopFactors(view.Contributions))
		}
	} else {
		fmt.Fprintln(w, "Not scored: group is outside the scoring participation set")
	}

	// 3. Display payloads
	if err := writeReportDetail(w, r.Detail); err != nil {
		return err
	}

	// 4. Trailing trend
	if len(view.Trend.Points) > 0 {
		fmt.Fprintf(w, "\nTrend (%s, last %d days):\n", view.Trend.Metric, view.Trend.LookbackDays)
		if err := renderTable(w, []string{"Date", "Value"}, trendRows(view.Trend, fmtFloat), tw.AlignRight); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Report resolved in %v. Snapshot backend: %s\n", duration, cfg.CacheBackend)
	return err
}

// writeReportDetail prints member stats, hourly activity and message types when present.
func writeReportDetail(w io.Writer, d schema.ReportDetail) error {
	if len(d.MemberStats) > 0 {
		members := slices.Clone(d.MemberStats)
		slices.SortStableFunc(members, func(a, b schema.MemberStat) int {
			return cmp.Compare(b.Messages, a.Messages)
		})
		var rows [][]string
		for _, m := range members {
			rows = append(rows, []string{m.Name, strconv.Itoa(m.Messages)})
		}
		fmt.Fprintln(w, "\nMember activity:")
		if err := renderTable(w, []string{"Member", "Messages"}, rows, tw.AlignRight); err != nil {
			return err
		}
	}

	if len(d.HourlyActivity) > 0 {
		parts := make([]string, len(d.HourlyActivity))
		for i, n := range d.HourlyActivity {
			parts[i] = fmt.Sprintf("%02d:%d", i, n)
		}
		fmt.Fprintf(w, "\nHourly activity: %s\n", strings.Join(parts, " "))
	}

	if len(d.MessageTypes) > 0 {
		var rows [][]string
		for _, kind := range slices.Sorted(maps.Keys(d.MessageTypes)) {
			rows = append(rows, []string{kind, strconv.Itoa(d.MessageTypes[kind])})
		}
		fmt.Fprintln(w, "\nMessage types:")
		if err := renderTable(w, []string{"Type", "Count"}, rows, tw.AlignRight); err != nil {
			return err
		}
	}
	return nil
}

// renderTable renders a simple table with one alignment for every cell.
func renderTable(w io.Writer, headers []string, rows [][]string, align tw.Align) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = align
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

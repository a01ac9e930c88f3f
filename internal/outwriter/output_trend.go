package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTrend outputs a trend series, dispatching based on the output format configured.
func PrintTrend(result schema.TrendResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON trend"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVTrend(w, result, fmtFloat)
		}, "Wrote CSV trend"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("a trend")
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(w, result, fmtFloat, duration)
		}, "Wrote trend table"); err != nil {
			return fmt.Errorf("error writing trend table output: %w", err)
		}
	}
	return nil
}

// writeCSVTrend writes one row per day of the window.
func writeCSVTrend(w io.Writer, result schema.TrendResult, fmtFloat func(float64) string) error {
	header := []string{"group_id", "metric", "date", "value", "scored"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range result.Points {
			rec := []string{
				result.GroupID,
				string(result.Metric),
				p.Date.Format(schema.DateFormat),
				fmtFloat(p.Value),
				strconv.FormatBool(p.Scored),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// trendRows renders the points of a trend as table rows.
// Days with no report show a dash.
func trendRows(result schema.TrendResult, fmtFloat func(float64) string) [][]string {
	rows := make([][]string, 0, len(result.Points))
	for _, p := range result.Points {
		value := "-"
		if p.Scored {
			value = fmtFloat(p.Value)
		}
		rows = append(rows, []string{p.Date.Format(schema.DateFormat), value})
	}
	return rows
}

// writeTrendTable prints the trend window as a two-column table.
func writeTrendTable(w io.Writer, result schema.TrendResult, fmtFloat func(float64) string, duration time.Duration) error {
	name := result.GroupName
	if name == "" {
		name = result.GroupID
	}
	if _, err := fmt.Fprintf(w, "📈 Trend: %s for %s (%s → %s)\n", result.Metric, name,
		result.Start.Format(schema.DateFormat), result.End.Format(schema.DateFormat)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", string(result.Metric)})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(trendRows(result, fmtFloat)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing %d days over a %d day lookback. Trend built in %v\n", len(result.Points), result.LookbackDays, duration)
	return err
}

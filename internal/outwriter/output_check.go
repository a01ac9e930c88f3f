package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// maxViolationsShown caps the text listing; JSON and CSV carry every violation.
const maxViolationsShown = 5

// PrintCheckResult prints the health gate outcome.
func PrintCheckResult(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON check result")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"group_id", "group_name", "date", "score", "reason"}
			rows := make([][]string, 0, len(result.Violations))
			for _, v := range result.Violations {
				rows = append(rows, []string{v.GroupID, v.GroupName, v.Date.Format(schema.DateFormat), strconv.Itoa(v.Score), v.Reason})
			}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.WriteAll(rows)
			})
		}, "Wrote CSV check result")
	case schema.ParquetOut:
		return errParquetUnsupported("a check result")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(w, result, duration)
		}, "Wrote check result")
	}
}

func writeCheckText(w io.Writer, result schema.CheckResult, duration time.Duration) error {
	fmt.Fprintln(w, "Health Check Results:")

	labels := []string{"Minimum:", "Conflict:", "Groups:"}
	conflict := "ignored"
	if result.FailOnConflict {
		conflict = "fails the check"
	}
	values := []string{
		strconv.Itoa(result.MinScore),
		conflict,
		fmt.Sprintf("%d scored of %d", result.CheckedGroups, result.TotalGroups),
	}
	width := 0
	for _, l := range labels {
		width = max(width, len(l))
	}
	for i, l := range labels {
		fmt.Fprintf(w, "  %-*s %s\n", width+1, l, values[i])
	}
	fmt.Fprintf(w, "\nChecked %d groups in %v\n\n", result.CheckedGroups, duration)

	if result.Passed {
		_, err := fmt.Fprintf(w, "✅ All groups passed (min=%d, avg=%.1f)\n", result.MinObserved, result.AvgObserved)
		return err
	}

	fmt.Fprintf(w, "❌ Health check failed: %d violation(s)\n", len(result.Violations))
	for i, v := range result.Violations {
		if i == maxViolationsShown {
			fmt.Fprintf(w, "  ... and %d more\n", len(result.Violations)-i)
			break
		}
		name := v.GroupName
		if name == "" {
			name = v.GroupID
		}
		fmt.Fprintf(w, "  - %s on %s: %s\n", name, v.Date.Format(schema.DateFormat), v.Reason)
	}
	return nil
}

package outwriter

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// errParquetUnsupported is returned by views that have no columnar layout.
func errParquetUnsupported(view string) error {
	return fmt.Errorf("parquet output is only supported for report rows, not %s", view)
}

// formatScore renders an overall score, or a dash when the group was not scored.
func formatScore(score int, scored bool) string {
	if !scored {
		return "-"
	}
	return fmt.Sprintf("%d", score)
}

// formatRiskFlags joins the raised risk flags, e.g. "conflict|new".
func formatRiskFlags(r schema.RiskStatus) string {
	var flags []string
	if r.HasConflictRisk {
		flags = append(flags, "conflict")
	}
	if r.IsNewGroup {
		flags = append(flags, "new")
	}
	if r.IsMicroGroup {
		flags = append(flags, "micro")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, "|")
}

const topNFactors = 3

// formatTopFactors names the sub-scores with the largest weighted contribution.
func formatTopFactors(contributions map[schema.BreakdownKey]float64) string {
	type factor struct {
		key   schema.BreakdownKey
		value float64
	}
	var factors []factor
	for k, v := range contributions {
		if v > 0 {
			factors = append(factors, factor{k, v})
		}
	}
	if len(factors) == 0 {
		return "Not applicable"
	}

	slices.SortFunc(factors, func(a, b factor) int {
		if c := cmp.Compare(b.value, a.value); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	parts := make([]string, 0, topNFactors)
	for _, f := range factors[:min(len(factors), topNFactors)] {
		parts = append(parts, string(f.key))
	}
	return strings.Join(parts, " > ")
}

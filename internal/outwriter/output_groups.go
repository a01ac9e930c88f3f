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

// PrintGroups outputs the groups a metrics source knows about.
func PrintGroups(groups []schema.GroupInfo, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, groups)
		}, "Wrote JSON groups")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVGroups(w, groups)
		}, "Wrote CSV groups")
	case schema.ParquetOut:
		return errParquetUnsupported("the group list")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupsTable(w, groups, cfg, duration)
		}, "Wrote groups table")
	}
}

func writeCSVGroups(w io.Writer, groups []schema.GroupInfo) error {
	header := []string{"group_id", "group_name", "days", "first_date", "last_date", "scored"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, g := range groups {
			rec := []string{
				g.GroupID,
				g.GroupName,
				strconv.Itoa(g.Days),
				g.FirstDate.Format(schema.DateFormat),
				g.LastDate.Format(schema.DateFormat),
				strconv.FormatBool(g.Scored),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeGroupsTable(w io.Writer, groups []schema.GroupInfo, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Group", "Name", "Days", "First", "Last", "Scored"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(groups))
	for _, g := range groups {
		scored := "no"
		if g.Scored {
			scored = "yes"
		}
		data = append(data, []string{
			g.GroupID,
			contract.TruncateText(g.GroupName, nameWidth),
			strconv.Itoa(g.Days),
			g.FirstDate.Format(schema.DateFormat),
			g.LastDate.Format(schema.DateFormat),
			scored,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d groups. Listed in %v\n", len(groups), duration)
	return err
}

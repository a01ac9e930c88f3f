package iocache

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/grouppulse/schema"
)

// requiredCSVColumns must appear in the CSV header. Optional columns are group_name,
// active_hours, total_hours, top20_percentage, median_response_interval,
// topic_relevance, atmosphere and summary. Detail payloads are JSON-only.
var requiredCSVColumns = []string{"group_id", "date", "total_messages", "total_members", "active_speakers"}

// fileRecord is the JSON ingestion layout; dates are plain calendar dates.
type fileRecord struct {
	GroupID   string                `json:"group_id"`
	GroupName string                `json:"group_name"`
	Date      string                `json:"date"`
	Metrics   schema.BaseMetrics    `json:"metrics"`
	Semantic  schema.SemanticScores `json:"semantic"`
	Summary   string                `json:"summary"`
	Detail    schema.ReportDetail   `json:"detail"`
}

// LoadRecordsFile reads and validates daily records from a .json or .csv file.
func LoadRecordsFile(path string) ([]schema.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var records []schema.DailyRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records, err = ReadRecordsJSON(f)
	case ".csv":
		records, err = ReadRecordsCSV(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q: use .json or .csv", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// ReadRecordsJSON decodes a JSON array of daily records.
func ReadRecordsJSON(r io.Reader) ([]schema.DailyRecord, error) {
	var raw []fileRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	records := make([]schema.DailyRecord, 0, len(raw))
	for i, fr := range raw {
		date, err := parseRecordDate(fr.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rec := schema.DailyRecord{
			GroupID:   fr.GroupID,
			GroupName: fr.GroupName,
			Date:      date,
			Metrics:   fr.Metrics,
			Semantic:  fr.Semantic,
			Summary:   fr.Summary,
			Detail:    fr.Detail,
		}
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadRecordsCSV decodes daily records from CSV with a header row.
func ReadRecordsCSV(r io.Reader) ([]schema.DailyRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, col := range requiredCSVColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV header is missing required column %q", col)
		}
	}

	var records []schema.DailyRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseCSVRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseCSVRow(row []string, index map[string]int) (schema.DailyRecord, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var firstErr error
	intField := func(name string) int {
		s := field(name)
		if s == "" {
			return 0
		}
		v, err := strconv.Atoi(s)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", name, err)
		}
		return v
	}
	floatField := func(name string) float64 {
		s := field(name)
		if s == "" {
			return 0
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", name, err)
		}
		return v
	}

	date, err := parseRecordDate(field("date"))
	if err != nil {
		return schema.DailyRecord{}, err
	}

	rec := schema.DailyRecord{
		GroupID:   field("group_id"),
		GroupName: field("group_name"),
		Date:      date,
		Metrics: schema.BaseMetrics{
			TotalMessages:          intField("total_messages"),
			TotalMembers:           intField("total_members"),
			ActiveSpeakers:         intField("active_speakers"),
			ActiveHours:            intField("active_hours"),
			TotalHours:             intField("total_hours"),
			Top20Percentage:        floatField("top20_percentage"),
			MedianResponseInterval: floatField("median_response_interval"),
		},
		Semantic: schema.SemanticScores{
			TopicRelevance: floatField("topic_relevance"),
			Atmosphere:     floatField("atmosphere"),
		},
		Summary: field("summary"),
	}
	return rec, firstErr
}

// parseRecordDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date in UTC.
func parseRecordDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	if d, err := schema.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use %s or RFC3339", s, schema.DateFormat)
	}
	return schema.NormalizeDate(t), nil
}

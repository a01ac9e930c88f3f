package iocache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/grouppulse/internal/contract"
	"github.com/huangsam/grouppulse/schema"
)

// validateRecord checks the identity and inputs of a daily record before it is stored.
func validateRecord(rec schema.DailyRecord) error {
	if rec.GroupID == "" {
		return errors.New("record is missing group_id")
	}
	if rec.Date.IsZero() {
		return fmt.Errorf("record for %s is missing date", rec.GroupID)
	}
	if err := rec.Metrics.Validate(); err != nil {
		return fmt.Errorf("record for %s on %s: %w", rec.GroupID, rec.Date.Format(schema.DateFormat), err)
	}
	if err := rec.Semantic.Validate(); err != nil {
		return fmt.Errorf("record for %s on %s: %w", rec.GroupID, rec.Date.Format(schema.DateFormat), err)
	}
	return nil
}

type recordKey struct {
	groupID string
	date    string
}

// MemorySource serves daily records held in process memory.
// It backs --input files and tests, with the same contract as the warehouse.
type MemorySource struct {
	mu       sync.RWMutex
	records  map[recordKey]schema.DailyRecord
	byReport map[string]recordKey
}

var _ contract.MetricsSource = &MemorySource{} // Compile-time check

// NewMemorySource builds a source from records. Later records replace earlier ones for the same (group, date).
func NewMemorySource(records []schema.DailyRecord) *MemorySource {
	src := &MemorySource{
		records:  make(map[recordKey]schema.DailyRecord, len(records)),
		byReport: make(map[string]recordKey, len(records)),
	}
	src.Add(records...)
	return src
}

// Add inserts or replaces records.
func (s *MemorySource) Add(records ...schema.DailyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		rec.Date = schema.NormalizeDate(rec.Date)
		key := recordKey{groupID: rec.GroupID, date: rec.Date.Format(schema.DateFormat)}
		s.records[key] = rec
		s.byReport[schema.ReportID(rec.GroupID, rec.Date)] = key
	}
}

// FetchDailyMetrics returns the record for one group on one day.
func (s *MemorySource) FetchDailyMetrics(_ context.Context, groupID string, date time.Time) (schema.DailyRecord, error) {
	day := schema.NormalizeDate(date).Format(schema.DateFormat)
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{groupID: groupID, date: day}]
	if !ok {
		return schema.DailyRecord{}, fmt.Errorf("%w: %s on %s", schema.ErrUnknownGroup, groupID, day)
	}
	return rec, nil
}

// FetchRange returns every record of groupID (or all groups) within [start, end], ordered by date then group.
func (s *MemorySource) FetchRange(_ context.Context, groupID string, start, end time.Time) ([]schema.DailyRecord, error) {
	if !start.IsZero() {
		start = schema.NormalizeDate(start)
	}
	if !end.IsZero() {
		end = schema.NormalizeDate(end)
	}

	s.mu.RLock()
	out := make([]schema.DailyRecord, 0)
	for _, rec := range s.records {
		if groupID != "" && rec.GroupID != groupID {
			continue
		}
		if !start.IsZero() && rec.Date.Before(start) {
			continue
		}
		if !end.IsZero() && rec.Date.After(end) {
			continue
		}
		out = append(out, rec)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, compareRecords)
	return out, nil
}

// FetchByReportID resolves a report ID back to its record.
func (s *MemorySource) FetchByReportID(_ context.Context, reportID string) (schema.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.byReport[reportID]
	if !ok {
		return schema.DailyRecord{}, fmt.Errorf("%w: no report with id %s", schema.ErrUnknownGroup, reportID)
	}
	return s.records[key], nil
}

// ListGroups summarizes every group, ordered by group ID. The name is taken from the latest day.
func (s *MemorySource) ListGroups(_ context.Context) ([]schema.GroupInfo, error) {
	s.mu.RLock()
	byGroup := make(map[string]*schema.GroupInfo)
	for _, rec := range s.records {
		info, ok := byGroup[rec.GroupID]
		if !ok {
			info = &schema.GroupInfo{GroupID: rec.GroupID, FirstDate: rec.Date, LastDate: rec.Date, GroupName: rec.GroupName}
			byGroup[rec.GroupID] = info
		}
		info.Days++
		if rec.Date.Before(info.FirstDate) {
			info.FirstDate = rec.Date
		}
		if !rec.Date.Before(info.LastDate) {
			info.LastDate = rec.Date
			info.GroupName = rec.GroupName
		}
	}
	s.mu.RUnlock()

	groups := make([]schema.GroupInfo, 0, len(byGroup))
	for _, info := range byGroup {
		groups = append(groups, *info)
	}
	slices.SortFunc(groups, func(a, b schema.GroupInfo) int {
		return cmp.Compare(a.GroupID, b.GroupID)
	})
	return groups, nil
}

func compareRecords(a, b schema.DailyRecord) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.GroupID, b.GroupID)
}

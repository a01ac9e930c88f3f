package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/grouppulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource(t *testing.T) {
	ctx := t.Context()
	renamed := sampleRecord("g1", "2024-03-10", 100)
	renamed.GroupName = "Latest Name"
	// Non-midnight timestamps are normalized to their calendar date
	renamed.Date = time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	src := NewMemorySource([]schema.DailyRecord{
		sampleRecord("g2", "2024-03-08", 10),
		sampleRecord("g1", "2024-03-09", 80),
		renamed,
	})

	t.Run("fetch one day", func(t *testing.T) {
		rec, err := src.FetchDailyMetrics(ctx, "g1", day("2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, day("2024-03-10"), rec.Date)
		assert.Equal(t, 100, rec.Metrics.TotalMessages)

		_, err = src.FetchDailyMetrics(ctx, "g1", day("2024-03-11"))
		assert.ErrorIs(t, err, schema.ErrUnknownGroup)
	})

	t.Run("range is ordered by date then group", func(t *testing.T) {
		all, err := src.FetchRange(ctx, "", time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"g2", "g1", "g1"}, []string{all[0].GroupID, all[1].GroupID, all[2].GroupID})

		bounded, err := src.FetchRange(ctx, "", day("2024-03-09"), day("2024-03-09"))
		require.NoError(t, err)
		require.Len(t, bounded, 1)
		assert.Equal(t, "g1", bounded[0].GroupID)

		empty, err := src.FetchRange(ctx, "missing", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("report id lookup", func(t *testing.T) {
		rec, err := src.FetchByReportID(ctx, schema.ReportID("g2", day("2024-03-08")))
		require.NoError(t, err)
		assert.Equal(t, "g2", rec.GroupID)

		_, err = src.FetchByReportID(ctx, "unknown")
		assert.ErrorIs(t, err, schema.ErrUnknownGroup)
	})

	t.Run("groups use the latest name", func(t *testing.T) {
		groups, err := src.ListGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "g1", groups[0].GroupID)
		assert.Equal(t, "Latest Name", groups[0].GroupName)
		assert.Equal(t, 2, groups[0].Days)
		assert.Equal(t, day("2024-03-09"), groups[0].FirstDate)
		assert.Equal(t, day("2024-03-10"), groups[0].LastDate)
	})

	t.Run("add replaces the same day", func(t *testing.T) {
		src := NewMemorySource([]schema.DailyRecord{sampleRecord("g1", "2024-03-10", 1)})
		src.Add(sampleRecord("g1", "2024-03-10", 2))

		rec, err := src.FetchDailyMetrics(ctx, "g1", day("2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, 2, rec.Metrics.TotalMessages)

		groups, err := src.ListGroups(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, groups[0].Days)
	})
}

func TestValidateRecord(t *testing.T) {
	good := sampleRecord("g1", "2024-03-10", 100)
	assert.NoError(t, validateRecord(good))

	missingGroup := good
	missingGroup.GroupID = ""
	assert.Error(t, validateRecord(missingGroup))

	missingDate := good
	missingDate.Date = time.Time{}
	assert.Error(t, validateRecord(missingDate))

	badMetric := good
	badMetric.Metrics.ActiveSpeakers = -3
	assert.ErrorIs(t, validateRecord(badMetric), schema.ErrInvalidMetric)

	badSemantic := good
	badSemantic.Semantic.Atmosphere = 140
	assert.ErrorIs(t, validateRecord(badSemantic), schema.ErrInvalidMetric)
}

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	counts := map[string]int64{
		"2026-03-10": 4,
		"2026-03-08": 2,
		"2026-03-04": 1,
		"2026-02-01": 10, // hors fenêtre, compté dans le total
	}

	got := Summarize(counts, now, time.UTC)

	assert.Equal(t, int64(17), got.TotalViews)
	assert.Equal(t, int64(4), got.TodayViews)
	require.Len(t, got.Daily, StatsDays)
	assert.Equal(t, DailyViews{Date: "04/03", Views: 1}, got.Daily[0])
	assert.Equal(t, DailyViews{Date: "08/03", Views: 2}, got.Daily[4])
	assert.Equal(t, DailyViews{Date: "10/03", Views: 4}, got.Daily[6])
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), time.UTC)

	assert.Zero(t, got.TotalViews)
	assert.Zero(t, got.TodayViews)
	require.Len(t, got.Daily, StatsDays)
	assert.Equal(t, "27/12", got.Daily[0].Date)
	assert.Equal(t, "02/01", got.Daily[6].Date)
}

func TestStartOfDayUsesLocalCalendarDay(t *testing.T) {
	casablanca := time.FixedZone("Casablanca", 3600)

	// 00:30 à Casablanca = 23:30 UTC la veille : la visite compte pour le 1er mai.
	visit := time.Date(2026, 4, 30, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), startOfDay(visit, casablanca))
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), startOfDay(visit, time.UTC))
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), startOfDay(visit, nil))
}

func TestSummarizeTodayFollowsLocation(t *testing.T) {
	casablanca := time.FixedZone("Casablanca", 3600)
	counts := map[string]int64{"2026-05-01": 3, "2026-04-30": 5}
	now := time.Date(2026, 4, 30, 23, 30, 0, 0, time.UTC)

	local := Summarize(counts, now, casablanca)
	assert.Equal(t, int64(3), local.TodayViews)
	assert.Equal(t, "01/05", local.Daily[StatsDays-1].Date)

	assert.Equal(t, int64(5), Summarize(counts, now, time.UTC).TodayViews)
}

func TestNewTrackerDefaultsToMoroccanTime(t *testing.T) {
	tracker := NewTracker(nil, nil, zap.NewNop())
	assert.Equal(t, DefaultTimezone, tracker.loc.String())

	utc := NewTracker(nil, time.UTC, zap.NewNop())
	assert.Equal(t, time.UTC, utc.loc)
}

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/venue-booking/internal/model"
)

func ev(id int64, start time.Time) model.Event {
	return model.Event{ID: id, Title: "e", Category: model.CategoryConcert, Start: start}
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewMonth, v)

	v, err = ParseView("Week")
	require.NoError(t, err)
	assert.Equal(t, ViewWeek, v)

	_, err = ParseView("decade")
	assert.Error(t, err)
}

func TestRangeMonthGrid(t *testing.T) {
	// June 2025 starts on a Sunday.
	from, to := Range(ViewMonth, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2025-06-01", from.Format(dateLayout))
	assert.Equal(t, 42*24*time.Hour, to.Sub(from))

	// May 2025 starts on a Thursday; the grid begins the Sunday before.
	from, _ = Range(ViewMonth, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2025-04-27", from.Format(dateLayout))
	assert.Equal(t, time.Sunday, from.Weekday())
}

func TestBuildMonthBucketsByLocalDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	anchor := time.Date(2025, 6, 1, 0, 0, 0, 0, berlin)
	events := []model.Event{
		// 22:30 UTC on May 31 is already June 1 in Berlin.
		ev(1, time.Date(2025, 5, 31, 22, 30, 0, 0, time.UTC)),
		ev(2, time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)),
		ev(3, time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)),
		ev(4, time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)),
	}

	cal := Build(ViewMonth, anchor, berlin, events)
	require.Len(t, cal.Days, 42)
	assert.Equal(t, "Europe/Berlin", cal.Timezone)

	first := cal.Days[0]
	assert.Equal(t, "2025-06-01", first.Date)
	assert.True(t, first.InPeriod)
	require.Len(t, first.Events, 2)
	assert.EqualValues(t, 1, first.Events[0].ID)
	assert.EqualValues(t, 2, first.Events[1].ID)

	assert.Len(t, cal.Days[13].Events, 1)
	assert.False(t, cal.Days[41].InPeriod)

	total := 0
	for _, d := range cal.Days {
		total += len(d.Events)
	}
	assert.Equal(t, 3, total)
}

func TestBuildWeekAndYear(t *testing.T) {
	anchor := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC) // Wednesday
	events := []model.Event{
		ev(1, time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)),
		ev(2, time.Date(2025, 6, 7, 23, 0, 0, 0, time.UTC)),
		ev(3, time.Date(2025, 6, 8, 1, 0, 0, 0, time.UTC)),
		ev(4, time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)),
	}

	week := Build(ViewWeek, anchor, time.UTC, events)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "2025-06-01", week.From)
	assert.Equal(t, "2025-06-08", week.To)
	assert.Len(t, week.Days[0].Events, 1)
	assert.Len(t, week.Days[6].Events, 1)

	year := Build(ViewYear, anchor, time.UTC, events)
	require.Len(t, year.Months, 12)
	assert.Empty(t, year.Days)
	assert.Equal(t, "2025-06", year.Months[5].Month)
	assert.Equal(t, 3, year.Months[5].Count)
	assert.Equal(t, 1, year.Months[11].Count)
	assert.Equal(t, 0, year.Months[0].Count)
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC)
	d, err := ParseDate("", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", d.Format(dateLayout))

	_, err = ParseDate("09.03.2025", time.UTC, now)
	assert.Error(t, err)
}

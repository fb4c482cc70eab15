package service

import (
	"testing"
	"time"

	"schedule-compiler/modules/planner/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimeSlots_FullDay(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)
	day := mustParse(t, "2024-03-05T13:00:00", "UTC")

	slots := BuildTimeSlots(day, "h1", window, false, 30, utc)

	require.Len(t, slots, 16)
	assert.Equal(t, entity.TimeSlot{
		DayOfWeek: "TUESDAY",
		StartTime: "09:00:00",
		EndTime:   "09:30:00",
		HostID:    "h1",
		MonthDay:  "--03-05",
		Date:      "2024-03-05",
	}, slots[0])
	assert.Equal(t, "16:30:00", slots[15].StartTime)
	assert.Equal(t, "17:00:00", slots[15].EndTime)
}

func TestBuildTimeSlots_FirstDayStartsMidWindow(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)
	day := mustParse(t, "2024-03-04T13:10:00", "UTC")

	slots := BuildTimeSlots(day, "h1", window, true, 15, utc)

	require.Len(t, slots, 16)
	assert.Equal(t, "13:00:00", slots[0].StartTime)
	assert.Equal(t, "16:45:00", slots[15].StartTime)
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1].EndTime, slots[i].StartTime, "slots are contiguous")
	}
}

func TestBuildTimeSlots_FirstDayBeforeWorkStart(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)
	day := mustParse(t, "2024-03-04T06:00:00", "UTC")

	slots := BuildTimeSlots(day, "h1", window, true, 30, utc)

	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00:00", slots[0].StartTime)
}

func TestBuildTimeSlots_FirstDayAfterWorkEnd(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)
	day := mustParse(t, "2024-03-04T18:00:00", "UTC")

	assert.Empty(t, BuildTimeSlots(day, "h1", window, true, 30, utc))
}

func TestBuildTimeSlots_DropsPartialStep(t *testing.T) {
	utc := mustZone(t, "UTC")
	pref := weekdayPreference("u1", 9, 10)
	pref.EndTimes[0].Minutes = 45
	window := PreferenceWindow(pref, utc, utc)

	slots := BuildTimeSlots(mustParse(t, "2024-03-04T00:00:00", "UTC"), "h1", window, false, 30, utc)

	require.Len(t, slots, 3)
	assert.Equal(t, "10:30:00", slots[2].EndTime)
}

func TestBuildTimeSlots_NonWorkingDay(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)

	assert.Empty(t, BuildTimeSlots(mustParse(t, "2024-03-09T10:00:00", "UTC"), "h1", window, false, 30, utc))
}

func TestBuildSlotsFromRanges(t *testing.T) {
	utc := mustZone(t, "UTC")
	ny := mustZone(t, "America/New_York")
	prefs := []entity.ExternalAttendeePreference{
		{
			PreferredStartDatetime: time.Date(2024, 3, 5, 14, 0, 0, 0, utc),
			PreferredEndDatetime:   time.Date(2024, 3, 5, 15, 30, 0, 0, utc),
		},
	}
	windowStart := mustParse(t, "2024-03-05T09:30:00", "America/New_York")
	windowEnd := mustParse(t, "2024-03-08T17:00:00", "America/New_York")

	slots := BuildSlotsFromRanges(prefs, "h1", windowStart, windowEnd, ny)

	// 09:00 NY is before the window start, so only two of three slots remain.
	require.Len(t, slots, 2)
	assert.Equal(t, "09:30:00", slots[0].StartTime)
	assert.Equal(t, "10:30:00", slots[1].EndTime)
	assert.Equal(t, "TUESDAY", slots[0].DayOfWeek)
}

package service

import (
	"testing"

	"schedule-compiler/modules/planner/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayPreference(userID string, startHour, endHour int) entity.UserPreference {
	pref := entity.UserPreference{UserID: userID, BreakLength: 15}
	for day := 1; day <= 5; day++ {
		pref.StartTimes = append(pref.StartTimes, entity.DayTime{Day: day, Hour: startHour})
		pref.EndTimes = append(pref.EndTimes, entity.DayTime{Day: day, Hour: endHour})
	}
	return pref
}

func TestBuildWorkTimes_SameZone(t *testing.T) {
	utc := mustZone(t, "UTC")
	pref := weekdayPreference("u1", 9, 17)
	ref := mustParse(t, "2024-03-06T10:00:00", "UTC")

	got := BuildWorkTimes("u1", "h1", PreferenceWindow(pref, utc, utc), ref, utc)

	require.Len(t, got, 7)
	assert.Equal(t, entity.WorkTime{DayOfWeek: "MONDAY", StartTime: "09:00:00", EndTime: "17:00:00", HostID: "h1", UserID: "u1"}, got[0])
	assert.Equal(t, "FRIDAY", got[4].DayOfWeek)
	assert.Equal(t, "09:00:00", got[4].StartTime)
	assert.Equal(t, entity.WorkTime{DayOfWeek: "SATURDAY", StartTime: "00:00:00", EndTime: "00:00:00", HostID: "h1", UserID: "u1"}, got[5])
	assert.Equal(t, "00:00:00", got[6].EndTime)
}

func TestBuildWorkTimes_ConvertsUserZoneToHostZone(t *testing.T) {
	host := mustZone(t, "America/New_York")
	user := mustZone(t, "Europe/London")
	pref := weekdayPreference("u1", 9, 17)
	// Mid-June: London is UTC+1, New York is UTC-4.
	ref := mustParse(t, "2024-06-12T12:00:00", "America/New_York")

	got := BuildWorkTimes("u1", "h1", PreferenceWindow(pref, host, user), ref, host)

	assert.Equal(t, "04:00:00", got[0].StartTime)
	assert.Equal(t, "12:00:00", got[0].EndTime)
}

func TestGuestWindow_InfersRoundedHours(t *testing.T) {
	utc := mustZone(t, "UTC")
	events := []entity.Event{
		{ID: "a", StartDate: "2024-03-04T09:10:00", EndDate: "2024-03-04T10:00:00", Timezone: "UTC"},
		{ID: "b", StartDate: "2024-03-04T15:00:00", EndDate: "2024-03-04T16:50:00", Timezone: "UTC"},
		{ID: "c", StartDate: "2024-03-06T11:00:00", EndDate: "2024-03-06T12:00:00", Timezone: "UTC"},
	}
	ref := mustParse(t, "2024-03-04T00:00:00", "UTC")

	got := BuildWorkTimes("g1", "h1", GuestWindow(events, utc), ref, utc)

	assert.Equal(t, "09:00:00", got[0].StartTime)
	assert.Equal(t, "17:00:00", got[0].EndTime)
	assert.Equal(t, "00:00:00", got[1].StartTime, "no events on tuesday")
	assert.Equal(t, "11:00:00", got[2].StartTime)
	assert.Equal(t, "12:15:00", got[2].EndTime)
}

func TestGuestWindow_CapsEndBeforeMidnight(t *testing.T) {
	utc := mustZone(t, "UTC")
	events := []entity.Event{
		{ID: "late", StartDate: "2024-03-04T22:00:00", EndDate: "2024-03-04T23:50:00", Timezone: "UTC"},
	}

	start, end, ok := GuestWindow(events, utc)(mustParse(t, "2024-03-04T08:00:00", "UTC"))
	require.True(t, ok)
	assert.Equal(t, "22:00:00", FormatClock(start))
	assert.Equal(t, "23:00:00", FormatClock(end))
}

func TestGuestWindow_EndBeforeMidnightIsNotCapped(t *testing.T) {
	utc := mustZone(t, "UTC")
	events := []entity.Event{
		{ID: "late", StartDate: "2024-03-04T21:00:00", EndDate: "2024-03-04T23:30:00", Timezone: "UTC"},
	}

	_, end, ok := GuestWindow(events, utc)(mustParse(t, "2024-03-04T08:00:00", "UTC"))
	require.True(t, ok)
	assert.Equal(t, "23:45:00", FormatClock(end))
}

func TestTotalWorkingHours(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)

	assert.Equal(t, 8.0, TotalWorkingHours(window, mustParse(t, "2024-03-04T11:00:00", "UTC")))
	assert.Equal(t, 0.0, TotalWorkingHours(window, mustParse(t, "2024-03-09T11:00:00", "UTC")))
}

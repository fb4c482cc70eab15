package service

import (
	"time"

	"schedule-compiler/modules/planner/entity"
)

const guestRounding = 15 * time.Minute

// WindowFunc returns the working window, in the host zone, for the calendar day of day.
// ok is false when the user does not work that weekday.
type WindowFunc func(day time.Time) (start, end time.Time, ok bool)

// PreferenceWindow reads working hours from an internal user's weekly table. Table hours
// are wall-clock times in the user's zone on the host calendar date of day.
func PreferenceWindow(pref entity.UserPreference, hostLoc, userLoc *time.Location) WindowFunc {
	return func(day time.Time) (time.Time, time.Time, bool) {
		hostDay := day.In(hostLoc)
		weekday := ISOWeekday(hostDay)

		startEntry, ok := pref.StartFor(weekday)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		endEntry, ok := pref.EndFor(weekday)
		if !ok {
			return time.Time{}, time.Time{}, false
		}

		start := AtClock(hostDay, startEntry.Hour, startEntry.Minutes, userLoc).In(hostLoc)
		end := AtClock(hostDay, endEntry.Hour, endEntry.Minutes, userLoc).In(hostLoc)
		return start, end, true
	}
}

// clockRange is a working window as minutes after midnight.
type clockRange struct {
	start int
	end   int
}

// inferGuestClocks derives a window per weekday from a guest's events: earliest start
// floored to 15 minutes, latest end raised to the next 15 minute mark. An end that
// rolls past midnight is capped at 23:00.
func inferGuestClocks(events []entity.Event, hostLoc *time.Location) map[int]clockRange {
	raw := make(map[int]clockRange)
	for _, ev := range events {
		start, err := ParseInZone(ev.StartDate, ev.Timezone)
		if err != nil {
			continue
		}
		end, err := ParseInZone(ev.EndDate, ev.Timezone)
		if err != nil {
			continue
		}
		start, end = start.In(hostLoc), end.In(hostLoc)

		weekday := ISOWeekday(start)
		midnight := StartOfDay(start)
		startMin := MinutesBetween(midnight, RoundToNearest(guestRounding, start))
		endMin := MinutesBetween(midnight, RoundUpToNext(guestRounding, end))

		cur, seen := raw[weekday]
		if !seen {
			raw[weekday] = clockRange{start: startMin, end: endMin}
			continue
		}
		if startMin < cur.start {
			cur.start = startMin
		}
		if endMin > cur.end {
			cur.end = endMin
		}
		raw[weekday] = cur
	}

	for day, r := range raw {
		if r.end >= 24*60 {
			r.end = 23 * 60
		}
		raw[day] = r
	}
	return raw
}

// GuestWindow infers working hours for a guest with no preference table.
func GuestWindow(events []entity.Event, hostLoc *time.Location) WindowFunc {
	clocks := inferGuestClocks(events, hostLoc)
	return func(day time.Time) (time.Time, time.Time, bool) {
		hostDay := day.In(hostLoc)
		r, ok := clocks[ISOWeekday(hostDay)]
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		start := AtClock(hostDay, r.start/60, r.start%60, hostLoc)
		end := AtClock(hostDay, r.end/60, r.end%60, hostLoc)
		return start, end, true
	}
}

// BuildWorkTimes returns one entry per weekday of ref's week, Monday first.
// Days without a window are reported as 00:00:00 to 00:00:00.
func BuildWorkTimes(userID, hostID string, window WindowFunc, ref time.Time, hostLoc *time.Location) []entity.WorkTime {
	workTimes := make([]entity.WorkTime, 0, 7)
	base := ref.In(hostLoc)
	for day := 1; day <= 7; day++ {
		wt := entity.WorkTime{
			DayOfWeek: DayOfWeekName(day),
			StartTime: "00:00:00",
			EndTime:   "00:00:00",
			HostID:    hostID,
			UserID:    userID,
		}
		if start, end, ok := window(SetISOWeekday(base, day)); ok {
			wt.StartTime = FormatClock(start)
			wt.EndTime = FormatClock(end)
		}
		workTimes = append(workTimes, wt)
	}
	return workTimes
}

// TotalWorkingHours returns the length of the working window on at's date.
func TotalWorkingHours(window WindowFunc, at time.Time) float64 {
	start, end, ok := window(at)
	if !ok {
		return 0
	}
	return end.Sub(start).Hours()
}

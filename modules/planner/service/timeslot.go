package service

import (
	"time"

	"schedule-compiler/modules/planner/entity"
)

// explicitSlotMinutes is the slot width for ranges a guest submitted directly.
const explicitSlotMinutes = 30

func newTimeSlot(start, end time.Time, hostID string) entity.TimeSlot {
	return entity.TimeSlot{
		DayOfWeek: DayOfWeekName(ISOWeekday(start)),
		StartTime: FormatClock(start),
		EndTime:   FormatClock(end),
		HostID:    hostID,
		MonthDay:  MonthDay(start),
		Date:      FormatDate(start),
	}
}

// BuildTimeSlots tiles one day's working window with granularity-minute slots.
//
// On the first day of the planning window the walk starts at the requested start,
// floored to the granularity, unless that falls before the working window opens.
// A request that starts after the window closes yields nothing. The trailing partial
// step is dropped.
func BuildTimeSlots(day time.Time, hostID string, window WindowFunc, isFirstDay bool, granularity int, hostLoc *time.Location) []entity.TimeSlot {
	day = day.In(hostLoc)
	workStart, workEnd, ok := window(day)
	if !ok || !workStart.Before(workEnd) {
		return nil
	}

	step := time.Duration(granularity) * time.Minute
	cursor := workStart
	if isFirstDay {
		if day.After(workEnd) {
			return nil
		}
		if requested := RoundToNearest(step, day); requested.After(workStart) {
			cursor = requested
		}
	}

	var slots []entity.TimeSlot
	for ; !cursor.Add(step).After(workEnd); cursor = cursor.Add(step) {
		slots = append(slots, newTimeSlot(cursor, cursor.Add(step), hostID))
	}
	return slots
}

// BuildSlotsFromRanges turns a guest's explicit availability into 30 minute slots.
// Slots that leave [windowStart, windowEnd] are skipped.
func BuildSlotsFromRanges(prefs []entity.ExternalAttendeePreference, hostID string, windowStart, windowEnd time.Time, hostLoc *time.Location) []entity.TimeSlot {
	step := explicitSlotMinutes * time.Minute
	lower, upper := windowStart.In(hostLoc), windowEnd.In(hostLoc)

	var slots []entity.TimeSlot
	for _, p := range prefs {
		start, end := p.PreferredStartDatetime.In(hostLoc), p.PreferredEndDatetime.In(hostLoc)
		for cursor := start; !cursor.Add(step).After(end); cursor = cursor.Add(step) {
			slotEnd := cursor.Add(step)
			if cursor.Before(lower) || slotEnd.After(upper) {
				continue
			}
			slots = append(slots, newTimeSlot(cursor, slotEnd, hostID))
		}
	}
	return slots
}

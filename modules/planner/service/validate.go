package service

import (
	"time"

	"schedule-compiler/modules/planner/entity"
)

// validSpan reports whether the event parses, has positive length and spans less than a day.
func validSpan(event entity.Event) (start time.Time, ok bool) {
	if event.Timezone == "" {
		return time.Time{}, false
	}
	start, err := ParseInZone(event.StartDate, event.Timezone)
	if err != nil {
		return time.Time{}, false
	}
	end, err := ParseInZone(event.EndDate, event.Timezone)
	if err != nil {
		return time.Time{}, false
	}
	length := end.Sub(start)
	if length <= 0 || length >= 24*time.Hour {
		return time.Time{}, false
	}
	return start, true
}

// ValidateEvent checks an internal user's event. Besides the span checks, the start
// must fall inside the working window of its weekday; a day without a window rejects it.
func ValidateEvent(event entity.Event, window WindowFunc) bool {
	start, ok := validSpan(event)
	if !ok {
		return false
	}
	workStart, workEnd, ok := window(start)
	if !ok {
		return false
	}
	start = start.In(workStart.Location())
	return !start.Before(workStart) && !start.After(workEnd)
}

// ValidateExternalEvent checks a guest event, which has no working window to respect.
func ValidateExternalEvent(event entity.Event) bool {
	_, ok := validSpan(event)
	return ok
}

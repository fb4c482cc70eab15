package service

import (
	"fmt"
	"strings"
	"time"

	"schedule-compiler/core/utils"
	"schedule-compiler/modules/planner/entity"
	plannerservice "schedule-compiler/modules/planner/service"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps the events a single recurring assist can expand to.
const maxOccurrences = 64

// MeetingWindow is a planning window in the host zone.
type MeetingWindow struct {
	Start   time.Time
	End     time.Time
	HostLoc *time.Location
}

// ProposedStart places a new meeting at the window start, moved onto the preferred
// range's weekday and start time when one is given. The weekday is shifted a week
// forward, then a week back, to keep it inside the window.
func ProposedStart(w MeetingWindow, preferred *entity.MeetingAssistPreferredTimeRange) time.Time {
	start := w.Start.In(w.HostLoc)
	if preferred == nil {
		return start
	}

	if preferred.DayOfWeek > 0 {
		original := plannerservice.SetISOWeekday(start, preferred.DayOfWeek)
		candidate := original
		if !strictlyBetween(candidate, w.Start, w.End) {
			candidate = original.AddDate(0, 0, 7)
		}
		if !strictlyBetween(candidate, w.Start, w.End) {
			candidate = original.AddDate(0, 0, -7)
		}
		start = candidate
	}

	if preferred.StartTime != "" {
		if hour, minute, err := plannerservice.ParseClock(preferred.StartTime); err == nil {
			start = plannerservice.AtClock(start, hour, minute, w.HostLoc)
		}
	}
	return start
}

func strictlyBetween(t, start, end time.Time) bool {
	return t.After(start) && t.Before(end)
}

var frequencies = map[string]rrule.Frequency{
	"daily":   rrule.DAILY,
	"weekly":  rrule.WEEKLY,
	"monthly": rrule.MONTHLY,
	"yearly":  rrule.YEARLY,
}

// Occurrences returns start plus every later recurrence of the assist inside the window.
// An assist without a known frequency occurs once.
func Occurrences(assist entity.MeetingAssist, start time.Time, w MeetingWindow) ([]time.Time, error) {
	freq, ok := frequencies[strings.ToLower(assist.Frequency)]
	if !ok {
		return []time.Time{start}, nil
	}

	until := w.End
	if assist.Until != "" {
		parsed, err := plannerservice.ParseInZone(assist.Until, w.HostLoc.String())
		if err != nil {
			return nil, fmt.Errorf("parse until %q: %w", assist.Until, err)
		}
		if parsed.Before(until) {
			until = parsed
		}
	}

	interval := assist.Interval
	if interval < 1 {
		interval = 1
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  start,
		Until:    until,
		Count:    maxOccurrences,
	})
	if err != nil {
		return nil, fmt.Errorf("build recurrence for %s: %w", assist.ID, err)
	}
	return rule.Between(start, until, true), nil
}

// NewMeetingEvents builds the proposed meeting events of one attendee. The events start
// modifiable. Only the host's events carry the assist's buffer times.
func NewMeetingEvents(
	attendee entity.MeetingAssistAttendee,
	assist entity.MeetingAssist,
	w MeetingWindow,
	calendarID string,
	preferred *entity.MeetingAssistPreferredTimeRange,
	ranges []entity.PreferredTimeRange,
	newEventID func(calendarID string) string,
) ([]entity.Event, error) {
	if calendarID == "" {
		calendarID = assist.CalendarID
	}
	userID := attendee.UserID
	if userID == "" {
		userID = attendee.ID
	}

	starts, err := Occurrences(assist, ProposedStart(w, preferred), w)
	if err != nil {
		return nil, err
	}

	events := make([]entity.Event, 0, len(starts))
	for _, start := range starts {
		id := newEventID(calendarID)
		eventID, _ := utils.SplitEventID(id)
		ev := entity.Event{
			ID:                id,
			UserID:            userID,
			CalendarID:        calendarID,
			EventID:           eventID,
			Summary:           assist.Summary,
			Notes:             assist.Notes,
			StartDate:         plannerservice.FormatNaive(start),
			EndDate:           plannerservice.FormatNaive(start.Add(time.Duration(assist.Duration) * time.Minute)),
			Timezone:          w.HostLoc.String(),
			Modifiable:        true,
			Priority:          assist.Priority,
			MeetingID:         assist.ID,
			IsMeeting:         true,
			IsExternalMeeting: attendee.ExternalAttendee,
		}
		if assist.BufferTime != nil && userID == assist.UserID {
			buffer := *assist.BufferTime
			ev.TimeBlocking = &buffer
		}
		if len(ranges) > 0 {
			ev.PreferredTimeRanges = make([]entity.PreferredTimeRange, len(ranges))
			for i, r := range ranges {
				r.EventID = id
				ev.PreferredTimeRanges[i] = r
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

// ToEventRanges converts meeting-level preferred ranges into event ranges.
func ToEventRanges(ranges []entity.MeetingAssistPreferredTimeRange, eventID, userID string) []entity.PreferredTimeRange {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]entity.PreferredTimeRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, entity.PreferredTimeRange{
			ID:        r.ID,
			EventID:   eventID,
			DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			UserID:    userID,
		})
	}
	return out
}

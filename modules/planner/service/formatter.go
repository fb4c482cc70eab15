package service

import (
	"fmt"
	"time"

	"schedule-compiler/core/logger"
	"schedule-compiler/modules/planner/entity"
)

// PartFormatter turns event parts into solver records in the host zone.
type PartFormatter struct {
	HostID  string
	HostLoc *time.Location
	// User is copied into every record owned by that user.
	User entity.PlannerUser
	// Window feeds totalWorkingHours for the part's day.
	Window WindowFunc
}

// FormatAll converts parts, dropping all-day events and parts that fail to format.
func (f PartFormatter) FormatAll(parts []entity.EventPart) []entity.PlannerEventPart {
	out := make([]entity.PlannerEventPart, 0, len(parts))
	for _, part := range parts {
		if part.AllDay {
			continue
		}
		formatted, err := f.Format(part)
		if err != nil {
			logger.Warn("PartFormatter:FormatAll:Skip", "eventId", part.ID, "part", part.Part, "error", err)
			continue
		}
		out = append(out, formatted)
	}
	return out
}

// Format converts one part. Clock hints are read on the event's own date and zone
// and re-expressed in the host zone.
func (f PartFormatter) Format(part entity.EventPart) (entity.PlannerEventPart, error) {
	start, err := ParseInZone(part.StartDate, part.Timezone)
	if err != nil {
		return entity.PlannerEventPart{}, fmt.Errorf("format part: %w", err)
	}
	end, err := ParseInZone(part.EndDate, part.Timezone)
	if err != nil {
		return entity.PlannerEventPart{}, fmt.Errorf("format part: %w", err)
	}

	out := entity.PlannerEventPart{
		GroupID:         part.GroupID,
		EventID:         part.ID,
		Part:            part.Part,
		LastPart:        part.LastPart,
		MeetingPart:     part.MeetingPart,
		MeetingLastPart: part.MeetingLastPart,
		MeetingID:       part.MeetingID,
		HostID:          f.HostID,
		UserID:          part.UserID,
		StartDate:       FormatNaive(start.In(f.HostLoc)),
		EndDate:         FormatNaive(end.In(f.HostLoc)),
		TaskID:          part.TaskID,
		HardDeadline:    part.HardDeadline,
		SoftDeadline:    part.SoftDeadline,
		User:            f.User,
		Priority:        part.Priority,
		IsPreEvent:      part.IsPreEvent,
		IsPostEvent:     part.IsPostEvent,
		ForEventID:      part.ForEventID,

		PositiveImpactScore:     part.PositiveImpactScore,
		NegativeImpactScore:     part.NegativeImpactScore,
		PositiveImpactDayOfWeek: DayOfWeekName(part.PositiveImpactDayOfWeek),
		NegativeImpactDayOfWeek: DayOfWeekName(part.NegativeImpactDayOfWeek),
		PositiveImpactTime:      f.hostClock(part.PositiveImpactTime, start),
		NegativeImpactTime:      f.hostClock(part.NegativeImpactTime, start),

		Modifiable:              part.Modifiable,
		PreferredDayOfWeek:      DayOfWeekName(part.PreferredDayOfWeek),
		PreferredTime:           f.hostClock(part.PreferredTime, start),
		PreferredStartTimeRange: f.hostClock(part.PreferredStartTimeRange, start),
		PreferredEndTimeRange:   f.hostClock(part.PreferredEndTimeRange, start),

		IsMeeting:                   part.IsMeeting,
		IsExternalMeeting:           part.IsExternalMeeting,
		IsExternalMeetingModifiable: part.IsExternalMeetingModifiable,
		IsMeetingModifiable:         part.IsMeetingModifiable,

		DailyTaskList:     part.DailyTaskList,
		WeeklyTaskList:    part.WeeklyTaskList,
		Gap:               part.IsBreak,
		TotalWorkingHours: TotalWorkingHours(f.Window, start),
		RecurringEventID:  part.RecurringEventID,

		Event: entity.PlannerEvent{
			ID:                  part.ID,
			UserID:              part.UserID,
			HostID:              f.HostID,
			PreferredTimeRanges: f.preferredRanges(part.Event, start),
			EventType:           part.EventType,
		},
	}
	if out.Priority == 0 {
		out.Priority = 1
	}
	return out, nil
}

// hostClock moves a clock hint from the event's zone to the host zone. Unparseable
// hints are dropped.
func (f PartFormatter) hostClock(hint string, eventStart time.Time) string {
	if hint == "" {
		return ""
	}
	hour, minute, err := ParseClock(hint)
	if err != nil {
		logger.Debug("PartFormatter:hostClock:Invalid", "hint", hint, "error", err)
		return ""
	}
	return FormatClock(AtClock(eventStart, hour, minute, eventStart.Location()).In(f.HostLoc))
}

func (f PartFormatter) preferredRanges(event entity.Event, start time.Time) []entity.PlannerPreferredTimeRange {
	if len(event.PreferredTimeRanges) == 0 {
		return nil
	}
	ranges := make([]entity.PlannerPreferredTimeRange, 0, len(event.PreferredTimeRanges))
	for _, r := range event.PreferredTimeRanges {
		ranges = append(ranges, entity.PlannerPreferredTimeRange{
			DayOfWeek: DayOfWeekName(r.DayOfWeek),
			StartTime: f.hostClock(r.StartTime, start),
			EndTime:   f.hostClock(r.EndTime, start),
			EventID:   event.ID,
			UserID:    event.UserID,
			HostID:    f.HostID,
		})
	}
	return ranges
}

// GuestUser is the solver record for a guest, who has no stored preferences.
func GuestUser(userID, hostID string, workTimes []entity.WorkTime) entity.PlannerUser {
	return entity.PlannerUser{
		ID:                  userID,
		HostID:              hostID,
		MaxWorkLoadPercent:  100,
		BackToBackMeetings:  false,
		MaxNumberOfMeetings: 99,
		MinNumberOfBreaks:   0,
		WorkTimes:           workTimes,
	}
}

// InternalUser builds the solver record from stored preferences.
func InternalUser(pref entity.UserPreference, userID, hostID string, workTimes []entity.WorkTime) entity.PlannerUser {
	return entity.PlannerUser{
		ID:                  userID,
		HostID:              hostID,
		MaxWorkLoadPercent:  pref.MaxWorkLoadPercent,
		BackToBackMeetings:  pref.BackToBackMeetings,
		MaxNumberOfMeetings: pref.MaxNumberOfMeetings,
		MinNumberOfBreaks:   pref.MinNumberOfBreaks,
		WorkTimes:           workTimes,
	}
}

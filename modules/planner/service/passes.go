package service

import (
	"context"
	"time"

	"schedule-compiler/core/logger"
	"schedule-compiler/modules/planner/entity"
)

// passContext is shared, read-only state for every pass of one run.
type passContext struct {
	hostID          string
	hostZone        string
	hostLoc         *time.Location
	windowStart     time.Time
	windowEnd       time.Time
	days            []time.Time
	meetingAssistID string
	// replan users without stored preferences fall back to defaults.
	replan bool
}

// userUnit is one user to plan for.
type userUnit struct {
	UserID     string
	AttendeeID string
	// MeetingID scopes a guest's explicit availability lookup.
	MeetingID string
	Role      string
	Timezone  string
	Events    []entity.Event
}

type passResult struct {
	Parts     []entity.PlannerEventPart
	Timeslots []entity.TimeSlot
	User      *entity.PlannerUser
	Events    []entity.Event
	Breaks    []entity.Event
	Outcome   entity.UserOutcome
}

func skipped(unit userUnit, reason string) passResult {
	return passResult{Outcome: entity.UserOutcome{
		UserID: unit.UserID,
		Role:   unit.Role,
		Status: entity.OutcomeSkipped,
		Reason: reason,
	}}
}

// internalPass plans one user that has a stored preference table.
func (s *PlannerService) internalPass(ctx context.Context, pc passContext, unit userUnit) (passResult, error) {
	userLoc, err := LoadZone(unit.Timezone)
	if err != nil {
		logger.Warn("PlannerService:internalPass:Zone", "userId", unit.UserID, "timezone", unit.Timezone, "error", err)
		userLoc = pc.hostLoc
	}

	pref, err := s.ds.GetUserPreferences(ctx, unit.UserID)
	if err != nil {
		if ctx.Err() != nil {
			return passResult{}, ctx.Err()
		}
		if !pc.replan {
			logger.Warn("PlannerService:internalPass:Preferences", "userId", unit.UserID, "error", err)
			return skipped(unit, "preferences unavailable: "+err.Error()), nil
		}
		defaults := entity.DefaultUserPreference(unit.UserID)
		pref = &defaults
	}

	calendarID := ""
	if cal, err := s.ds.GetGlobalCalendar(ctx, unit.UserID); err != nil {
		logger.Warn("PlannerService:internalPass:Calendar", "userId", unit.UserID, "error", err)
	} else {
		calendarID = cal.ID
	}

	window := PreferenceWindow(*pref, pc.hostLoc, userLoc)
	events := s.ensureBuffers(unit.Events)

	dayBreaks := make([][]entity.Event, len(pc.days))
	daySlots := make([][]entity.TimeSlot, len(pc.days))
	err = runIndexed(ctx, len(pc.days), s.opts.Workers, func(ctx context.Context, i int) error {
		day, first := pc.days[i], i == 0
		daySlots[i] = BuildTimeSlots(day, pc.hostID, window, first, s.opts.Granularity, pc.hostLoc)

		workStart, workEnd, ok := window(day)
		if !ok {
			return nil
		}
		if first {
			if day.After(workEnd) {
				return nil
			}
			if day.After(workStart) {
				workStart = day.In(pc.hostLoc)
			}
		}
		dayBreaks[i] = s.breaks.GenerateForDay(BreakDay{
			UserID:     unit.UserID,
			CalendarID: calendarID,
			HostZone:   pc.hostZone,
			Preference: *pref,
			WorkStart:  workStart,
			WorkEnd:    workEnd,
			Events:     eventsOverlapping(events, workStart, workEnd),
		})
		return nil
	})
	if err != nil {
		return passResult{}, err
	}

	breaks := flatten(dayBreaks)
	events = append(withoutIDs(events, breaks), breaks...)

	workTimes := BuildWorkTimes(unit.UserID, pc.hostID, window, pc.windowStart, pc.hostLoc)
	user := InternalUser(*pref, unit.UserID, pc.hostID, workTimes)

	valid := uniqueByID(filterEvents(events, func(ev entity.Event) bool { return ValidateEvent(ev, window) }))
	parts := s.buildParts(ctx, pc, valid, user, window)
	slots := flatten(daySlots)

	return passResult{
		Parts:     parts,
		Timeslots: slots,
		User:      &user,
		Events:    events,
		Breaks:    breaks,
		Outcome: entity.UserOutcome{
			UserID:    unit.UserID,
			Role:      unit.Role,
			Status:    entity.OutcomeOK,
			Parts:     len(parts),
			Timeslots: len(slots),
			Breaks:    len(breaks),
		},
	}, nil
}

// externalPass plans one guest. Working hours are inferred from the guest's events;
// slots come from explicit availability when the guest submitted any.
func (s *PlannerService) externalPass(ctx context.Context, pc passContext, unit userUnit) (passResult, error) {
	window := GuestWindow(unit.Events, pc.hostLoc)

	meetingID := unit.MeetingID
	if meetingID == "" {
		meetingID = pc.meetingAssistID
	}

	var slots []entity.TimeSlot
	if meetingID != "" && unit.AttendeeID != "" {
		prefs, err := s.ds.ListExternalAttendeePreferences(ctx, meetingID, unit.AttendeeID)
		if err != nil {
			if ctx.Err() != nil {
				return passResult{}, ctx.Err()
			}
			logger.Warn("PlannerService:externalPass:Preferences", "attendeeId", unit.AttendeeID, "error", err)
		}
		if len(prefs) > 0 {
			slots = BuildSlotsFromRanges(prefs, pc.hostID, pc.windowStart, pc.windowEnd, pc.hostLoc)
		}
	}
	if slots == nil {
		daySlots := make([][]entity.TimeSlot, len(pc.days))
		for i, day := range pc.days {
			daySlots[i] = BuildTimeSlots(day, pc.hostID, window, i == 0, s.opts.Granularity, pc.hostLoc)
		}
		slots = flatten(daySlots)
	}

	workTimes := BuildWorkTimes(unit.UserID, pc.hostID, window, pc.windowStart, pc.hostLoc)
	user := GuestUser(unit.UserID, pc.hostID, workTimes)

	valid := uniqueByID(filterEvents(unit.Events, ValidateExternalEvent))
	parts := s.buildParts(ctx, pc, valid, user, window)

	return passResult{
		Parts:     parts,
		Timeslots: slots,
		User:      &user,
		Events:    unit.Events,
		Outcome: entity.UserOutcome{
			UserID:    unit.UserID,
			Role:      unit.Role,
			Status:    entity.OutcomeOK,
			Parts:     len(parts),
			Timeslots: len(slots),
		},
	}, nil
}

// buildParts partitions, renumbers, formats, pins and tags one user's events.
func (s *PlannerService) buildParts(ctx context.Context, pc passContext, events []entity.Event, user entity.PlannerUser, window WindowFunc) []entity.PlannerEventPart {
	var raw []entity.EventPart
	for _, ev := range events {
		parts, err := s.partitioner.Partition(ev, pc.hostID)
		if err != nil {
			logger.Warn("PlannerService:buildParts:Partition", "eventId", ev.ID, "error", err)
			continue
		}
		raw = append(raw, parts...)
	}
	raw = s.partitioner.RenumberPreBuffers(raw)
	raw = s.partitioner.RenumberPostBuffers(raw)

	formatter := PartFormatter{HostID: pc.hostID, HostLoc: pc.hostLoc, User: user, Window: window}
	formatted := formatter.FormatAll(raw)

	byID := make(map[string]entity.Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	for i := range formatted {
		formatted[i] = PinUnmodifiable(formatted[i], byID[formatted[i].EventID])
	}

	tagged, err := s.tagger.Tag(ctx, formatted)
	if err != nil {
		logger.Warn("PlannerService:buildParts:Tag", "userId", user.ID, "error", err)
	}
	return tagged
}

// ensureBuffers synthesizes buffer events for events whose timeBlocking asks for them
// but whose buffers are missing from the set.
func (s *PlannerService) ensureBuffers(events []entity.Event) []entity.Event {
	present := make(map[string]bool, len(events))
	for _, ev := range events {
		present[ev.ID] = true
	}

	out := make([]entity.Event, 0, len(events))
	var added []entity.Event
	for _, ev := range events {
		tb := ev.TimeBlocking
		if tb == nil || ev.IsPreEvent || ev.IsPostEvent || ev.IsBreak {
			out = append(out, ev)
			continue
		}
		want := entity.BufferTimes{}
		if tb.BeforeEvent > 0 && (ev.PreEventID == "" || !present[ev.PreEventID]) {
			want.BeforeEvent = tb.BeforeEvent
		}
		if tb.AfterEvent > 0 && (ev.PostEventID == "" || !present[ev.PostEventID]) {
			want.AfterEvent = tb.AfterEvent
		}
		if want.BeforeEvent == 0 && want.AfterEvent == 0 {
			out = append(out, ev)
			continue
		}

		res, err := s.buffers.Insert(ev, want)
		if err != nil {
			logger.Warn("PlannerService:ensureBuffers", "eventId", ev.ID, "error", err)
			out = append(out, ev)
			continue
		}
		res.Event.TimeBlocking = tb
		out = append(out, res.Event)
		if res.Before != nil {
			added = append(added, *res.Before)
		}
		if res.After != nil {
			added = append(added, *res.After)
		}
	}
	return append(out, added...)
}

func eventsOverlapping(events []entity.Event, start, end time.Time) []entity.Event {
	var out []entity.Event
	for _, ev := range events {
		evStart, err := ParseInZone(ev.StartDate, ev.Timezone)
		if err != nil {
			continue
		}
		evEnd, err := ParseInZone(ev.EndDate, ev.Timezone)
		if err != nil {
			continue
		}
		if Overlaps(evStart, evEnd, start, end) {
			out = append(out, ev)
		}
	}
	return out
}

func filterEvents(events []entity.Event, keep func(entity.Event) bool) []entity.Event {
	var out []entity.Event
	for _, ev := range events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// uniqueByID keeps the first event for each id.
func uniqueByID(events []entity.Event) []entity.Event {
	seen := make(map[string]bool, len(events))
	out := make([]entity.Event, 0, len(events))
	for _, ev := range events {
		if seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		out = append(out, ev)
	}
	return out
}

// withoutIDs drops events whose id appears in remove.
func withoutIDs(events, remove []entity.Event) []entity.Event {
	ids := make(map[string]bool, len(remove))
	for _, ev := range remove {
		ids[ev.ID] = true
	}
	return filterEvents(events, func(ev entity.Event) bool { return !ids[ev.ID] })
}

func flatten[T any](chunks [][]T) []T {
	var out []T
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

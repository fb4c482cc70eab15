package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/logger"
	"schedule-compiler/modules/planner/dto"
	"schedule-compiler/modules/planner/entity"
	"schedule-compiler/modules/planner/repository"
)

// ApplyAttendeeDelta removes and adds attendees per the constraints. The input slice is
// not modified.
func ApplyAttendeeDelta(
	current []entity.MeetingAssistAttendee,
	c entity.NewConstraints,
	hostID, hostZone, meetingID string,
	newID func() string,
) []entity.MeetingAssistAttendee {
	removed := make(map[string]bool, len(c.RemovedAttendeeEmailsOrIDs))
	for _, key := range c.RemovedAttendeeEmailsOrIDs {
		removed[strings.ToLower(key)] = true
	}

	out := make([]entity.MeetingAssistAttendee, 0, len(current)+len(c.AddedAttendees))
	emails := make(map[string]bool)
	userIDs := make(map[string]bool)
	for _, a := range current {
		email := strings.ToLower(a.Email())
		if (email != "" && removed[email]) || removed[strings.ToLower(a.ID)] || (a.UserID != "" && removed[strings.ToLower(a.UserID)]) {
			continue
		}
		out = append(out, a)
		if email != "" {
			emails[email] = true
		}
		if a.UserID != "" {
			userIDs[a.UserID] = true
		}
	}

	for _, add := range c.AddedAttendees {
		email := strings.ToLower(add.Email)
		if (email != "" && emails[email]) || (add.UserID != "" && userIDs[add.UserID]) {
			continue
		}
		tz := add.Timezone
		if tz == "" {
			tz = hostZone
		}
		external := add.UserID == ""
		if add.ExternalAttendee != nil {
			external = *add.ExternalAttendee || external
		}
		attendee := entity.MeetingAssistAttendee{
			ID:               newID(),
			Name:             add.Name,
			UserID:           add.UserID,
			HostID:           hostID,
			MeetingID:        meetingID,
			Timezone:         tz,
			ExternalAttendee: external,
			PrimaryEmail:     add.Email,
		}
		if add.Email != "" {
			attendee.Emails = []entity.AttendeeEmail{{Primary: true, Value: add.Email}}
		}
		out = append(out, attendee)
		if email != "" {
			emails[email] = true
		}
		if add.UserID != "" {
			userIDs[add.UserID] = true
		}
	}
	return out
}

// ReplanWindow returns the naive host-zone window of a replan: the constrained window
// when given, else a week from the target's start.
func ReplanWindow(target entity.Event, c entity.NewConstraints, hostLoc *time.Location) (start, end time.Time, err error) {
	if c.NewTimeWindowStartUTC != nil && c.NewTimeWindowEndUTC != nil {
		return c.NewTimeWindowStartUTC.In(hostLoc), c.NewTimeWindowEndUTC.In(hostLoc), nil
	}
	start, err = ParseInZone(target.StartDate, target.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = start.In(hostLoc)
	return start, start.AddDate(0, 0, constants.ReplanDefaultWindowDays), nil
}

// retimeTarget applies a new duration to the target and marks it as the only movable event.
func retimeTarget(target entity.Event, minutes int) (entity.Event, error) {
	target.Modifiable = true
	if minutes <= 0 {
		return target, nil
	}
	start, err := ParseInZone(target.StartDate, target.Timezone)
	if err != nil {
		return target, err
	}
	target.EndDate = FormatNaive(start.Add(time.Duration(minutes) * time.Minute))
	return target, nil
}

// Replan re-runs planning for one existing event. Every other event is pinned.
func (s *PlannerService) Replan(ctx context.Context, req *dto.ReplanRequest) (*entity.RunReport, *errors.AppError) {
	if err := req.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}

	found, err := s.ds.GetEventForModification(ctx, req.EventID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", err)
		}
		return nil, errors.NewAppError(errors.ErrUpstream, "Failed to fetch event", err)
	}
	original := found.Event
	if req.CallerID != "" && original.UserID != req.CallerID {
		logger.Warn("PlannerService:Replan:Forbidden", "eventId", req.EventID, "callerId", req.CallerID)
		return nil, errors.NewAppError(errors.ErrForbidden, "Event does not belong to the caller", nil)
	}
	hostID := original.UserID

	hostZone := req.HostTimezone
	if hostZone == "" {
		hostZone = original.Timezone
	}
	hostLoc, err := LoadZone(hostZone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid host timezone", err)
	}

	windowStart, windowEnd, err := ReplanWindow(original, req.NewConstraints, hostLoc)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid event start date", err)
	}

	attendees := ApplyAttendeeDelta(found.Attendees, req.NewConstraints, hostID, hostZone, original.MeetingID, s.newRunID)

	target, err := retimeTarget(original, req.NewConstraints.NewDurationMinutes)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid event start date", err)
	}

	var internal, external []entity.MeetingAssistAttendee
	for _, a := range attendees {
		if a.ExternalAttendee || a.UserID == "" {
			external = append(external, a)
		} else {
			internal = append(internal, a)
		}
	}

	// Fetch calendars of the host and each internal attendee, and the guest events
	// of each external attendee.
	userIDs := []string{hostID}
	for _, a := range internal {
		if a.UserID != hostID {
			userIDs = append(userIDs, a.UserID)
		}
	}
	userEvents := make([][]entity.Event, len(userIDs))
	guestEvents := make([][]entity.MeetingAssistEvent, len(external))
	err = runIndexed(ctx, len(userIDs)+len(external), s.opts.Workers, func(ctx context.Context, i int) error {
		if i < len(userIDs) {
			events, err := s.ds.ListEventsForUserGivenDates(ctx, userIDs[i], windowStart, windowEnd, hostZone)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("PlannerService:Replan:Events", "userId", userIDs[i], "error", err)
				return nil
			}
			userEvents[i] = events
			return nil
		}
		j := i - len(userIDs)
		events, err := s.ds.ListMeetingAssistEventsForAttendee(ctx, external[j].ID, windowStart, windowEnd, hostZone)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("PlannerService:Replan:GuestEvents", "attendeeId", external[j].ID, "error", err)
			return nil
		}
		guestEvents[j] = events
		return nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Replan aborted", err)
	}

	events := []entity.Event{target}
	for _, ev := range flatten(userEvents) {
		if ev.ID == target.ID {
			continue
		}
		ev.Modifiable = false
		events = append(events, ev)
	}

	compileReq := &dto.CompileRequest{
		HostID:              hostID,
		HostTimezone:        hostZone,
		WindowStartDate:     FormatNaive(windowStart),
		WindowEndDate:       FormatNaive(windowEnd),
		MeetingAssistID:     req.MeetingAssistID,
		InternalAttendees:   internal,
		ExternalAttendees:   external,
		Events:              uniqueByID(events),
		MeetingAssistEvents: flatten(guestEvents),
	}

	googleEventID := req.GoogleEventID
	if googleEventID == "" {
		googleEventID = original.EventID
	}
	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = original.CalendarID
	}

	logger.Info("PlannerService:Replan:Start",
		"eventId", req.EventID,
		"hostId", hostID,
		"attendees", len(attendees),
		"events", len(events),
	)

	return s.compile(ctx, compileReq, &replanContext{
		googleEventID:  googleEventID,
		calendarID:     calendarID,
		original:       original,
		constraints:    req.NewConstraints,
		finalAttendees: attendees,
	})
}

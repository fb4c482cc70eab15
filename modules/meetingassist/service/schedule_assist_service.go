package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/logger"
	"schedule-compiler/core/queue"
	"schedule-compiler/core/utils"
	"schedule-compiler/modules/meetingassist/dto"
	plannerdto "schedule-compiler/modules/planner/dto"
	"schedule-compiler/modules/planner/entity"
	"schedule-compiler/modules/planner/repository"
	plannerservice "schedule-compiler/modules/planner/service"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// Compiler is the part of the planner this flow hands its inputs to.
type Compiler interface {
	Compile(ctx context.Context, req *plannerdto.CompileRequest) (*entity.RunReport, *errors.AppError)
}

// ScheduleAssistServiceInterface defines the service contract
type ScheduleAssistServiceInterface interface {
	Run(ctx context.Context, req *dto.ScheduleAssistRequest) (*entity.RunReport, *errors.AppError)
	Enqueue(ctx context.Context, req *dto.ScheduleAssistRequest) (*dto.EnqueueResponse, *errors.AppError)
}

type ScheduleAssistService struct {
	ds        repository.DataSourceInterface
	planner   Compiler
	enqueuer  queue.Enqueuer
	queueName string
	workers   int

	buffers    *plannerservice.BufferInserter
	newEventID func(calendarID string) string
}

// NewScheduleAssistService wires the flow. enqueuer may be nil when no queue is configured.
func NewScheduleAssistService(ds repository.DataSourceInterface, planner Compiler, enqueuer queue.Enqueuer, queueName string, workers int) *ScheduleAssistService {
	return &ScheduleAssistService{
		ds:         ds,
		planner:    planner,
		enqueuer:   enqueuer,
		queueName:  queueName,
		workers:    workers,
		buffers:    plannerservice.NewBufferInserter(),
		newEventID: utils.NewEventID,
	}
}

// Run gathers the host's window and compiles it.
func (s *ScheduleAssistService) Run(ctx context.Context, req *dto.ScheduleAssistRequest) (*entity.RunReport, *errors.AppError) {
	if err := req.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}

	input, err := s.Gather(ctx, req)
	if err != nil {
		if stderrors.Is(err, errInvalidWindow) {
			return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
		}
		return nil, errors.NewAppError(errors.ErrUpstream, "Failed to gather schedule inputs", err)
	}

	return s.planner.Compile(ctx, input)
}

// Enqueue schedules Run on the task queue. Requests for the same host and window
// share a task id, so duplicates are rejected while one is pending.
func (s *ScheduleAssistService) Enqueue(ctx context.Context, req *dto.ScheduleAssistRequest) (*dto.EnqueueResponse, *errors.AppError) {
	if err := req.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}
	if s.enqueuer == nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Task queue is not configured", nil)
	}

	task, err := NewScheduleAssistTask(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to build task", err)
	}
	taskID := utils.TaskID(constants.TaskScheduleAssist, req.UserID, req.WindowStartDate, req.WindowEndDate)

	info, err := s.enqueuer.EnqueueContext(ctx, task,
		asynq.TaskID(taskID),
		asynq.Queue(s.queueName),
		asynq.MaxRetry(0),
	)
	if err != nil {
		if stderrors.Is(err, asynq.ErrTaskIDConflict) || stderrors.Is(err, asynq.ErrDuplicateTask) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "A run for this window is already queued", err)
		}
		logger.Error("ScheduleAssistService:Enqueue", "userId", req.UserID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to enqueue task", err)
	}

	logger.Info("ScheduleAssistService:Enqueue:Queued", "taskId", info.ID, "queue", info.Queue, "userId", req.UserID)
	return &dto.EnqueueResponse{TaskID: info.ID, Queue: info.Queue}, nil
}

// NewScheduleAssistTask encodes req as a queue task.
func NewScheduleAssistTask(req *dto.ScheduleAssistRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule assist payload: %w", err)
	}
	return asynq.NewTask(constants.TaskScheduleAssist, payload), nil
}

var errInvalidWindow = stderrors.New("invalid planning window")

// gathered accumulates the inputs of every meeting in the window.
type gathered struct {
	events              []entity.Event
	meetingEvents       []entity.Event
	newMeetingEvents    []entity.Event
	newHostBufferTimes  []entity.BufferEvents
	meetingAssistEvents []entity.MeetingAssistEvent
	internal            []entity.MeetingAssistAttendee
	external            []entity.MeetingAssistAttendee
	listed              map[string]bool
}

func (g *gathered) addEvents(events []entity.Event) {
	for _, ev := range events {
		if g.listed[ev.ID] {
			continue
		}
		g.listed[ev.ID] = true
		g.events = append(g.events, ev)
	}
}

// Gather collects the host's events, the events of every attendee of the host's
// meetings, and proposed events for open meeting assists that reached their threshold.
func (s *ScheduleAssistService) Gather(ctx context.Context, req *dto.ScheduleAssistRequest) (*plannerdto.CompileRequest, error) {
	hostLoc, err := plannerservice.LoadZone(req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidWindow, err)
	}
	start, err := plannerservice.ParseInZone(req.WindowStartDate, req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidWindow, err)
	}
	end, err := plannerservice.ParseInZone(req.WindowEndDate, req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidWindow, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end before start", errInvalidWindow)
	}
	window := MeetingWindow{Start: start, End: end, HostLoc: hostLoc}

	hostEvents, err := s.ds.ListEventsForDate(ctx, req.UserID, start, end, req.Timezone)
	if err != nil {
		return nil, fmt.Errorf("list host events: %w", err)
	}
	hostEvents, err = s.withPreferredRanges(ctx, hostEvents)
	if err != nil {
		return nil, err
	}

	g := &gathered{listed: make(map[string]bool)}
	g.addEvents(hostEvents)
	oldEvents := append([]entity.Event(nil), hostEvents...)

	var excludeIDs []string
	seenMeetings := make(map[string]bool)
	for _, ev := range hostEvents {
		if ev.MeetingID == "" || seenMeetings[ev.MeetingID] {
			continue
		}
		seenMeetings[ev.MeetingID] = true
		excludeIDs = append(excludeIDs, ev.MeetingID)
		if err := s.gatherMeeting(ctx, g, window, ev); err != nil {
			return nil, err
		}
	}

	assists, err := s.ds.ListFutureMeetingAssists(ctx, req.UserID, start, end.AddDate(0, 0, 1), excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("list future meeting assists: %w", err)
	}
	for _, assist := range assists {
		count, err := s.ds.CountMeetingAssistAttendees(ctx, assist.ID)
		if err != nil {
			return nil, fmt.Errorf("count attendees of %s: %w", assist.ID, err)
		}
		if count < assist.MinThresholdCount {
			logger.Debug("ScheduleAssistService:Gather:BelowThreshold", "meetingId", assist.ID, "count", count, "threshold", assist.MinThresholdCount)
			continue
		}
		if err := s.gatherFutureAssist(ctx, g, window, assist); err != nil {
			return nil, err
		}
	}

	logger.Info("ScheduleAssistService:Gather:Done",
		"userId", req.UserID,
		"events", len(g.events),
		"meetingEvents", len(g.meetingEvents),
		"newMeetingEvents", len(g.newMeetingEvents),
		"internal", len(g.internal),
		"external", len(g.external),
	)

	return &plannerdto.CompileRequest{
		HostID:              req.UserID,
		HostTimezone:        req.Timezone,
		WindowStartDate:     req.WindowStartDate,
		WindowEndDate:       req.WindowEndDate,
		InternalAttendees:   uniqueAttendees(g.internal),
		ExternalAttendees:   uniqueAttendees(g.external),
		Events:              g.events,
		MeetingEvents:       g.meetingEvents,
		NewMeetingEvents:    g.newMeetingEvents,
		NewHostBufferTimes:  g.newHostBufferTimes,
		MeetingAssistEvents: g.meetingAssistEvents,
		OldEvents:           oldEvents,
	}, nil
}

// withPreferredRanges attaches each event's stored preferred ranges.
func (s *ScheduleAssistService) withPreferredRanges(ctx context.Context, events []entity.Event) ([]entity.Event, error) {
	out := make([]entity.Event, len(events))
	copy(out, events)

	g, gctx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}
	for i := range out {
		g.Go(func() error {
			ranges, err := s.ds.ListPreferredTimeRangesForEvent(gctx, out[i].ID)
			if err != nil {
				return fmt.Errorf("list preferred ranges of %s: %w", out[i].ID, err)
			}
			if len(ranges) > 0 {
				out[i].PreferredTimeRanges = ranges
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// splitAttendees separates guests from users of the system.
func splitAttendees(attendees []entity.MeetingAssistAttendee) (internal, external []entity.MeetingAssistAttendee) {
	for _, a := range attendees {
		if a.ExternalAttendee {
			external = append(external, a)
		} else {
			internal = append(internal, a)
		}
	}
	return internal, external
}

// gatherMeeting pulls in everything about one meeting the host already has on the calendar.
func (s *ScheduleAssistService) gatherMeeting(ctx context.Context, g *gathered, w MeetingWindow, hostEvent entity.Event) error {
	meetingID := hostEvent.MeetingID
	attendees, err := s.ds.ListMeetingAssistAttendees(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("list attendees of %s: %w", meetingID, err)
	}
	internal, external := splitAttendees(attendees)
	g.internal = append(g.internal, internal...)
	g.external = append(g.external, external...)

	zone := w.HostLoc.String()
	meetingEvents := []entity.Event{hostEvent}

	for _, a := range external {
		events, err := s.ds.ListMeetingAssistEventsForAttendee(ctx, a.ID, w.Start, w.End, zone)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("ScheduleAssistService:gatherMeeting:GuestEvents", "meetingId", meetingID, "attendeeId", a.ID, "error", err)
			continue
		}
		for _, me := range events {
			if me.MeetingID == meetingID {
				userID := a.UserID
				if userID == "" {
					userID = a.ID
				}
				meetingEvents = append(meetingEvents, me.ToEvent(userID))
				continue
			}
			g.meetingAssistEvents = append(g.meetingAssistEvents, me)
		}
	}

	for _, a := range internal {
		events, err := s.ds.ListEventsForUserGivenDates(ctx, a.UserID, w.Start, w.End, zone)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("ScheduleAssistService:gatherMeeting:Events", "meetingId", meetingID, "userId", a.UserID, "error", err)
			continue
		}
		var others []entity.Event
		for _, ev := range events {
			if ev.MeetingID == meetingID {
				if ev.ID != hostEvent.ID {
					meetingEvents = append(meetingEvents, ev)
				}
				continue
			}
			others = append(others, ev)
		}
		g.addEvents(others)
	}

	ranges, err := s.ds.ListMeetingAssistPreferredTimeRanges(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("list preferred ranges of %s: %w", meetingID, err)
	}
	for _, ev := range meetingEvents {
		if len(ranges) > 0 {
			ev.PreferredTimeRanges = ToEventRanges(ranges, ev.ID, ev.UserID)
		}
		g.meetingEvents = append(g.meetingEvents, ev)
	}
	return nil
}

// gatherFutureAssist proposes events for an assist that has no meeting yet. Each
// attendee takes the preferred ranges in turn, so proposals are spread across them.
func (s *ScheduleAssistService) gatherFutureAssist(ctx context.Context, g *gathered, w MeetingWindow, assist entity.MeetingAssist) error {
	ranges, err := s.ds.ListMeetingAssistPreferredTimeRanges(ctx, assist.ID)
	if err != nil {
		return fmt.Errorf("list preferred ranges of %s: %w", assist.ID, err)
	}
	attendees, err := s.ds.ListMeetingAssistAttendees(ctx, assist.ID)
	if err != nil {
		return fmt.Errorf("list attendees of %s: %w", assist.ID, err)
	}

	if assist.Timezone != "" {
		if loc, err := plannerservice.LoadZone(assist.Timezone); err == nil {
			w.HostLoc = loc
		}
	}

	for i, a := range attendees {
		calendarID := ""
		if !a.ExternalAttendee {
			cal, err := s.ds.GetGlobalCalendar(ctx, a.UserID)
			if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("ScheduleAssistService:gatherFutureAssist:GlobalCalendar", "meetingId", assist.ID, "userId", a.UserID, "error", err)
			}
			if err == nil && cal != nil {
				calendarID = cal.ID
			}
		}

		var preferred *entity.MeetingAssistPreferredTimeRange
		if len(ranges) > 0 {
			preferred = &ranges[i%len(ranges)]
		}
		userID := a.UserID
		if userID == "" {
			userID = a.ID
		}
		events, err := NewMeetingEvents(a, assist, w, calendarID, preferred, ToEventRanges(ranges, "", userID), s.newEventID)
		if err != nil {
			return err
		}
		if a.UserID == assist.UserID {
			events = s.withHostBuffers(g, assist, events)
		}
		g.newMeetingEvents = append(g.newMeetingEvents, events...)
	}

	internal, external := splitAttendees(attendees)
	g.internal = append(g.internal, internal...)
	g.external = append(g.external, external...)

	zone := w.HostLoc.String()
	for _, a := range external {
		events, err := s.ds.ListMeetingAssistEventsForAttendee(ctx, a.ID, w.Start, w.End, zone)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("ScheduleAssistService:gatherFutureAssist:GuestEvents", "meetingId", assist.ID, "attendeeId", a.ID, "error", err)
			continue
		}
		g.meetingAssistEvents = append(g.meetingAssistEvents, events...)
	}
	for _, a := range internal {
		events, err := s.ds.ListEventsForUserGivenDates(ctx, a.UserID, w.Start, w.End, zone)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("ScheduleAssistService:gatherFutureAssist:Events", "meetingId", assist.ID, "userId", a.UserID, "error", err)
			continue
		}
		g.addEvents(events)
	}
	return nil
}

// withHostBuffers surrounds the host's proposed events with the assist's buffer times.
func (s *ScheduleAssistService) withHostBuffers(g *gathered, assist entity.MeetingAssist, events []entity.Event) []entity.Event {
	if assist.BufferTime == nil || (assist.BufferTime.BeforeEvent <= 0 && assist.BufferTime.AfterEvent <= 0) {
		return events
	}
	out := make([]entity.Event, 0, len(events))
	for _, ev := range events {
		res, err := s.buffers.Insert(ev, *assist.BufferTime)
		if err != nil {
			logger.Warn("ScheduleAssistService:withHostBuffers", "eventId", ev.ID, "error", err)
			out = append(out, ev)
			continue
		}
		g.newHostBufferTimes = append(g.newHostBufferTimes, entity.BufferEvents{BeforeEvent: res.Before, AfterEvent: res.After})
		out = append(out, res.Event)
	}
	return out
}

// uniqueAttendees keeps the first attendee per id.
func uniqueAttendees(attendees []entity.MeetingAssistAttendee) []entity.MeetingAssistAttendee {
	seen := make(map[string]bool, len(attendees))
	var out []entity.MeetingAssistAttendee
	for _, a := range attendees {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}

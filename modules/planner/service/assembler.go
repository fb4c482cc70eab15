package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/errors"
	"schedule-compiler/core/logger"
	"schedule-compiler/core/storage"
	"schedule-compiler/modules/planner/dto"
	"schedule-compiler/modules/planner/entity"
	"schedule-compiler/modules/planner/repository"

	"github.com/google/uuid"
)

// Options tunes a PlannerService.
type Options struct {
	// Granularity is the slot and part width in minutes.
	Granularity int
	Workers     int
	// Delay and CallbackURL are forwarded to the solver untouched.
	Delay       int
	CallbackURL string
}

// PlannerServiceInterface defines the service contract
type PlannerServiceInterface interface {
	Compile(ctx context.Context, req *dto.CompileRequest) (*entity.RunReport, *errors.AppError)
	Replan(ctx context.Context, req *dto.ReplanRequest) (*entity.RunReport, *errors.AppError)
	GetRun(ctx context.Context, singletonID string) (*entity.RunReport, *errors.AppError)
	PruneRuns(ctx context.Context, olderThan time.Duration) error
}

// PlannerService compiles calendar state into solver requests.
type PlannerService struct {
	ds     repository.DataSourceInterface
	runs   repository.RunRepositoryInterface
	store  storage.ObjectStore
	solver SolverClient
	opts   Options

	breaks      *BreakPlacer
	buffers     *BufferInserter
	partitioner *Partitioner
	tagger      *TaskListTagger
	newRunID    func() string
	now         func() time.Time
}

// NewPlannerService wires a planner. runs may be nil when run reports are not persisted.
func NewPlannerService(
	ds repository.DataSourceInterface,
	runs repository.RunRepositoryInterface,
	store storage.ObjectStore,
	solver SolverClient,
	opts Options,
) *PlannerService {
	if opts.Granularity <= 0 {
		opts.Granularity = constants.GranularityLite
	}
	return &PlannerService{
		ds:          ds,
		runs:        runs,
		store:       store,
		solver:      solver,
		opts:        opts,
		breaks:      NewBreakPlacer(),
		buffers:     NewBufferInserter(),
		partitioner: NewPartitioner(opts.Granularity),
		tagger:      NewTaskListTagger(ds),
		newRunID:    uuid.NewString,
		now:         time.Now,
	}
}

// replanContext carries the audit fields of a replan run.
type replanContext struct {
	googleEventID  string
	calendarID     string
	original       entity.Event
	constraints    entity.NewConstraints
	finalAttendees []entity.MeetingAssistAttendee
}

// Compile runs the full pipeline for a caller-supplied input.
func (s *PlannerService) Compile(ctx context.Context, req *dto.CompileRequest) (*entity.RunReport, *errors.AppError) {
	if err := req.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}
	return s.compile(ctx, req, nil)
}

func (s *PlannerService) compile(ctx context.Context, req *dto.CompileRequest, rp *replanContext) (*entity.RunReport, *errors.AppError) {
	hostLoc, err := LoadZone(req.HostTimezone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid host timezone", err)
	}
	windowStart, err := ParseInZone(req.WindowStartDate, req.HostTimezone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid window start", err)
	}
	windowEnd, err := ParseInZone(req.WindowEndDate, req.HostTimezone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid window end", err)
	}
	if !windowEnd.After(windowStart) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Window end must be after window start", nil)
	}

	pc := passContext{
		hostID:          req.HostID,
		hostZone:        req.HostTimezone,
		hostLoc:         hostLoc,
		windowStart:     windowStart,
		windowEnd:       windowEnd,
		days:            DayStarts(windowStart, windowEnd),
		meetingAssistID: req.MeetingAssistID,
		replan:          rp != nil,
	}

	logger.Info("PlannerService:compile:Start",
		"hostId", req.HostID,
		"windowStart", FormatNaive(windowStart),
		"windowEnd", FormatNaive(windowEnd),
		"days", len(pc.days),
		"replan", rp != nil,
	)

	// 1. Resolve the roster into planning units
	units := buildRoster(req)

	// 2-3. Run every user's pass on the pool
	results := make([]passResult, len(units))
	err = runIndexed(ctx, len(units), s.opts.Workers, func(ctx context.Context, i int) error {
		var passErr error
		if units[i].Role == entity.RoleExternal {
			results[i], passErr = s.externalPass(ctx, pc, units[i])
		} else {
			results[i], passErr = s.internalPass(ctx, pc, units[i])
		}
		return passErr
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Planning run aborted", err)
	}

	// 4. Merge and dedupe
	var (
		parts     []entity.PlannerEventPart
		slots     []entity.TimeSlot
		users     []entity.PlannerUser
		allEvents []entity.Event
		breaks    []entity.Event
		outcomes  []entity.UserOutcome
	)
	for _, r := range results {
		parts = append(parts, r.Parts...)
		slots = append(slots, r.Timeslots...)
		if r.User != nil {
			users = append(users, *r.User)
		}
		allEvents = append(allEvents, r.Events...)
		breaks = append(breaks, r.Breaks...)
		outcomes = append(outcomes, r.Outcome)
	}
	parts = dedupe(parts)
	slots = dedupe(slots)
	users = dedupe(users)

	singletonID := s.newRunID()
	report := &entity.RunReport{
		SingletonID: singletonID,
		HostID:      req.HostID,
		FileKey:     FileKey(req.HostID, singletonID, rp),
		IsReplan:    rp != nil,
		EventParts:  len(parts),
		Timeslots:   len(slots),
		Users:       len(users),
		Outcomes:    outcomes,
		CreatedAt:   s.now().UTC(),
	}

	// 5. Refuse to dispatch an empty problem
	if len(parts) == 0 || len(slots) == 0 || len(users) == 0 {
		appErr := errors.NewAppError(errors.ErrEmptyResult,
			fmt.Sprintf("Nothing to plan: %d event parts, %d time slots, %d users", len(parts), len(slots), len(users)), nil)
		s.fail(ctx, report, appErr)
		return nil, appErr
	}

	// 6. Snapshot, then dispatch
	request := entity.PlannerRequest{
		SingletonID: singletonID,
		HostID:      req.HostID,
		Timeslots:   slots,
		UserList:    users,
		EventParts:  parts,
		FileKey:     report.FileKey,
		Delay:       s.opts.Delay,
		CallBackURL: s.opts.CallbackURL,
	}
	snapshot := entity.Snapshot{
		PlannerRequest:     request,
		AllEvents:          uniqueByID(allEvents),
		Breaks:             breaks,
		OldEvents:          req.OldEvents,
		OldAttendeeEvents:  req.MeetingAssistEvents,
		NewHostBufferTimes: req.NewHostBufferTimes,
		HostTimezone:       req.HostTimezone,
	}
	if rp != nil {
		original := rp.original
		constraints := rp.constraints
		snapshot.IsReplan = true
		snapshot.OriginalGoogleEventID = rp.googleEventID
		snapshot.OriginalCalendarID = rp.calendarID
		snapshot.OriginalEventDetails = &original
		snapshot.NewConstraints = &constraints
		snapshot.FinalAttendees = rp.finalAttendees
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		appErr := errors.NewAppError(errors.ErrSnapshotFailed, "Failed to encode snapshot", err)
		s.fail(ctx, report, appErr)
		return nil, appErr
	}
	if err := s.store.PutObject(ctx, report.FileKey, body, "application/json"); err != nil {
		appErr := errors.NewAppError(errors.ErrSnapshotFailed, "Failed to store snapshot", err)
		s.fail(ctx, report, appErr)
		return nil, appErr
	}
	if err := s.solver.Solve(ctx, &request); err != nil {
		appErr := errors.NewAppError(errors.ErrDispatchFailed, "Failed to dispatch to solver", err)
		s.fail(ctx, report, appErr)
		return nil, appErr
	}

	report.Status = entity.RunStatusDispatched
	s.save(ctx, report)

	logger.Info("PlannerService:compile:Dispatched",
		"singletonId", singletonID,
		"hostId", req.HostID,
		"eventParts", len(parts),
		"timeslots", len(slots),
		"users", len(users),
	)
	return report, nil
}

// FileKey names the snapshot object of a run.
func FileKey(hostID, singletonID string, rp *replanContext) string {
	if rp != nil {
		return fmt.Sprintf("%s/%s_REPLAN_%s.json", hostID, singletonID, rp.googleEventID)
	}
	return fmt.Sprintf("%s/%s.json", hostID, singletonID)
}

func (s *PlannerService) fail(ctx context.Context, report *entity.RunReport, appErr *errors.AppError) {
	report.Status = entity.RunStatusFailed
	report.Error = appErr.Error()
	logger.Error("PlannerService:compile:Failed", "singletonId", report.SingletonID, "hostId", report.HostID, "code", appErr.Code, "error", appErr.Err)
	s.save(ctx, report)
}

// save persists a report when a run store is configured. Failures are logged only.
func (s *PlannerService) save(ctx context.Context, report *entity.RunReport) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Save(ctx, report); err != nil {
		logger.Error("PlannerService:save", "singletonId", report.SingletonID, "error", err)
	}
}

// buildRoster splits attendees into planning units. When the host is an internal
// attendee it is planned with the others, otherwise it gets its own pass.
func buildRoster(req *dto.CompileRequest) []userUnit {
	guestIDs := make(map[string]bool, len(req.ExternalAttendees))
	for _, a := range req.ExternalAttendees {
		guestIDs[guestUserID(a)] = true
	}

	var pool []entity.Event
	pool = append(pool, req.Events...)
	pool = append(pool, req.MeetingEvents...)
	pool = append(pool, req.NewMeetingEvents...)
	for _, b := range req.NewHostBufferTimes {
		if b.BeforeEvent != nil {
			pool = append(pool, *b.BeforeEvent)
		}
		if b.AfterEvent != nil {
			pool = append(pool, *b.AfterEvent)
		}
	}
	eventsFor := func(userID string) []entity.Event {
		return uniqueByID(filterEvents(pool, func(ev entity.Event) bool { return ev.UserID == userID }))
	}

	var units []userUnit
	hostIsInternal := false
	for _, a := range req.InternalAttendees {
		if a.UserID == req.HostID {
			hostIsInternal = true
			break
		}
	}
	if !hostIsInternal {
		units = append(units, userUnit{
			UserID:   req.HostID,
			Role:     entity.RoleHost,
			Timezone: req.HostTimezone,
			Events:   eventsFor(req.HostID),
		})
	}

	seen := make(map[string]bool)
	for _, a := range req.InternalAttendees {
		if a.UserID == "" || seen[a.UserID] || guestIDs[a.UserID] {
			continue
		}
		seen[a.UserID] = true
		role := entity.RoleInternal
		if a.UserID == req.HostID {
			role = entity.RoleHost
		}
		tz := a.Timezone
		if tz == "" {
			tz = req.HostTimezone
		}
		units = append(units, userUnit{
			UserID:     a.UserID,
			AttendeeID: a.ID,
			Role:       role,
			Timezone:   tz,
			Events:     eventsFor(a.UserID),
		})
	}

	for _, a := range req.ExternalAttendees {
		userID := guestUserID(a)
		if seen[userID] {
			continue
		}
		seen[userID] = true

		var events []entity.Event
		for _, me := range req.MeetingAssistEvents {
			if me.AttendeeID == a.ID {
				events = append(events, me.ToEvent(userID))
			}
		}
		events = uniqueByID(append(events, eventsFor(userID)...))

		units = append(units, userUnit{
			UserID:     userID,
			AttendeeID: a.ID,
			MeetingID:  a.MeetingID,
			Role:       entity.RoleExternal,
			Timezone:   a.Timezone,
			Events:     events,
		})
	}
	return units
}

func guestUserID(a entity.MeetingAssistAttendee) string {
	if a.UserID != "" {
		return a.UserID
	}
	return a.ID
}

// dedupe drops structurally equal items, keeping first occurrences in order.
func dedupe[T any](items []T) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key, err := json.Marshal(item)
		if err != nil {
			out = append(out, item)
			continue
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		out = append(out, item)
	}
	return out
}

// GetRun returns a persisted run report.
func (s *PlannerService) GetRun(ctx context.Context, singletonID string) (*entity.RunReport, *errors.AppError) {
	if s.runs == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Run history is not enabled", nil)
	}
	report, err := s.runs.GetBySingletonID(ctx, singletonID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Run not found", err)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load run", err)
	}
	return report, nil
}

// PruneRuns deletes run reports older than olderThan.
func (s *PlannerService) PruneRuns(ctx context.Context, olderThan time.Duration) error {
	if s.runs == nil {
		return nil
	}
	return s.runs.DeleteOlderThan(ctx, s.now().Add(-olderThan))
}

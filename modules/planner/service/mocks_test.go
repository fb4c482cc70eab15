package service

import (
	"context"
	"sync"
	"time"

	"schedule-compiler/modules/planner/entity"
	"schedule-compiler/modules/planner/repository"
)

// mockDataSource answers ErrNotFound or empty results for every unset func.
type mockDataSource struct {
	listEventsForDateFunc           func(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error)
	listEventsForUserGivenDatesFunc func(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error)
	listEventsWithIdsFunc           func(ctx context.Context, ids []string) ([]entity.Event, error)
	getUserPreferencesFunc          func(ctx context.Context, userID string) (*entity.UserPreference, error)
	getGlobalCalendarFunc           func(ctx context.Context, userID string) (*entity.Calendar, error)
	getMeetingAssistFunc            func(ctx context.Context, id string) (*entity.MeetingAssist, error)
	listAttendeesFunc               func(ctx context.Context, meetingID string) ([]entity.MeetingAssistAttendee, error)
	countAttendeesFunc              func(ctx context.Context, meetingID string) (int, error)
	listAttendeeEventsFunc          func(ctx context.Context, attendeeID string, start, end time.Time, timezone string) ([]entity.MeetingAssistEvent, error)
	listMeetingRangesFunc           func(ctx context.Context, meetingID string) ([]entity.MeetingAssistPreferredTimeRange, error)
	listEventRangesFunc             func(ctx context.Context, eventID string) ([]entity.PreferredTimeRange, error)
	listFutureMeetingAssistsFunc    func(ctx context.Context, userID string, start, end time.Time, excludeIDs []string) ([]entity.MeetingAssist, error)
	listExternalPreferencesFunc     func(ctx context.Context, meetingID, attendeeID string) ([]entity.ExternalAttendeePreference, error)
	getEventForModificationFunc     func(ctx context.Context, eventID string) (*entity.EventWithAttendees, error)
}

func (m *mockDataSource) ListEventsForDate(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error) {
	if m.listEventsForDateFunc == nil {
		return nil, nil
	}
	return m.listEventsForDateFunc(ctx, userID, start, end, timezone)
}

func (m *mockDataSource) ListEventsForUserGivenDates(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error) {
	if m.listEventsForUserGivenDatesFunc == nil {
		return nil, nil
	}
	return m.listEventsForUserGivenDatesFunc(ctx, userID, start, end, timezone)
}

func (m *mockDataSource) ListEventsWithIds(ctx context.Context, ids []string) ([]entity.Event, error) {
	if m.listEventsWithIdsFunc == nil {
		return nil, nil
	}
	return m.listEventsWithIdsFunc(ctx, ids)
}

func (m *mockDataSource) GetUserPreferences(ctx context.Context, userID string) (*entity.UserPreference, error) {
	if m.getUserPreferencesFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.getUserPreferencesFunc(ctx, userID)
}

func (m *mockDataSource) GetGlobalCalendar(ctx context.Context, userID string) (*entity.Calendar, error) {
	if m.getGlobalCalendarFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.getGlobalCalendarFunc(ctx, userID)
}

func (m *mockDataSource) GetMeetingAssist(ctx context.Context, id string) (*entity.MeetingAssist, error) {
	if m.getMeetingAssistFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.getMeetingAssistFunc(ctx, id)
}

func (m *mockDataSource) ListMeetingAssistAttendees(ctx context.Context, meetingID string) ([]entity.MeetingAssistAttendee, error) {
	if m.listAttendeesFunc == nil {
		return nil, nil
	}
	return m.listAttendeesFunc(ctx, meetingID)
}

func (m *mockDataSource) CountMeetingAssistAttendees(ctx context.Context, meetingID string) (int, error) {
	if m.countAttendeesFunc == nil {
		return 0, nil
	}
	return m.countAttendeesFunc(ctx, meetingID)
}

func (m *mockDataSource) ListMeetingAssistEventsForAttendee(ctx context.Context, attendeeID string, start, end time.Time, timezone string) ([]entity.MeetingAssistEvent, error) {
	if m.listAttendeeEventsFunc == nil {
		return nil, nil
	}
	return m.listAttendeeEventsFunc(ctx, attendeeID, start, end, timezone)
}

func (m *mockDataSource) ListMeetingAssistPreferredTimeRanges(ctx context.Context, meetingID string) ([]entity.MeetingAssistPreferredTimeRange, error) {
	if m.listMeetingRangesFunc == nil {
		return nil, nil
	}
	return m.listMeetingRangesFunc(ctx, meetingID)
}

func (m *mockDataSource) ListPreferredTimeRangesForEvent(ctx context.Context, eventID string) ([]entity.PreferredTimeRange, error) {
	if m.listEventRangesFunc == nil {
		return nil, nil
	}
	return m.listEventRangesFunc(ctx, eventID)
}

func (m *mockDataSource) ListFutureMeetingAssists(ctx context.Context, userID string, start, end time.Time, excludeIDs []string) ([]entity.MeetingAssist, error) {
	if m.listFutureMeetingAssistsFunc == nil {
		return nil, nil
	}
	return m.listFutureMeetingAssistsFunc(ctx, userID, start, end, excludeIDs)
}

func (m *mockDataSource) ListExternalAttendeePreferences(ctx context.Context, meetingID, attendeeID string) ([]entity.ExternalAttendeePreference, error) {
	if m.listExternalPreferencesFunc == nil {
		return nil, nil
	}
	return m.listExternalPreferencesFunc(ctx, meetingID, attendeeID)
}

func (m *mockDataSource) GetEventForModification(ctx context.Context, eventID string) (*entity.EventWithAttendees, error) {
	if m.getEventForModificationFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.getEventForModificationFunc(ctx, eventID)
}

type mockStore struct {
	mu      sync.Mutex
	putFunc func(ctx context.Context, key string, body []byte, contentType string) error
	keys    []string
	bodies  [][]byte
}

func (m *mockStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()
	if m.putFunc == nil {
		return nil
	}
	return m.putFunc(ctx, key, body, contentType)
}

type mockSolver struct {
	solveFunc func(ctx context.Context, req *entity.PlannerRequest) error
	requests  []*entity.PlannerRequest
}

func (m *mockSolver) Solve(ctx context.Context, req *entity.PlannerRequest) error {
	m.requests = append(m.requests, req)
	if m.solveFunc == nil {
		return nil
	}
	return m.solveFunc(ctx, req)
}

type mockRunRepository struct {
	saved               []entity.RunReport
	getBySingletonFunc  func(ctx context.Context, singletonID string) (*entity.RunReport, error)
	deleteOlderThanFunc func(ctx context.Context, cutoff time.Time) error
}

func (m *mockRunRepository) Save(ctx context.Context, report *entity.RunReport) error {
	m.saved = append(m.saved, *report)
	return nil
}

func (m *mockRunRepository) GetBySingletonID(ctx context.Context, singletonID string) (*entity.RunReport, error) {
	return m.getBySingletonFunc(ctx, singletonID)
}

func (m *mockRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	return m.deleteOlderThanFunc(ctx, cutoff)
}

// testService builds a PlannerService with deterministic ids.
func testService(ds *mockDataSource, runs repository.RunRepositoryInterface, store *mockStore, solver *mockSolver) *PlannerService {
	s := NewPlannerService(ds, runs, store, solver, Options{Granularity: 30, Workers: 4, Delay: 5, CallbackURL: "http://cb"})
	s.newRunID = func() string { return "run-1" }
	s.partitioner = testPartitioner(30)
	return s
}

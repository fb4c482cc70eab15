package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"schedule-compiler/core/errors"
	"schedule-compiler/modules/planner/dto"
	"schedule-compiler/modules/planner/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func TestApplyAttendeeDelta(t *testing.T) {
	current := []entity.MeetingAssistAttendee{
		{ID: "a1", UserID: "h1", Emails: []entity.AttendeeEmail{{Value: "other@x.io"}, {Primary: true, Value: "host@x.io"}}},
		{ID: "a2", UserID: "u2", PrimaryEmail: "u2@x.io"},
		{ID: "a3", PrimaryEmail: "guest@y.io", ExternalAttendee: true},
	}
	external := false
	c := entity.NewConstraints{
		RemovedAttendeeEmailsOrIDs: []string{"GUEST@y.io", "u2"},
		AddedAttendees: []entity.AddedAttendee{
			{Email: "host@x.io", Name: "dup by email"},
			{Email: "new@z.io", Name: "New Guest"},
			{Email: "colleague@x.io", UserID: "u9", Timezone: "Europe/Berlin", ExternalAttendee: &external},
		},
	}

	got := ApplyAttendeeDelta(current, c, "h1", "America/New_York", "m1", counterIDs("n"))

	require.Len(t, got, 3)
	assert.Equal(t, "a1", got[0].ID)

	guest := got[1]
	assert.Equal(t, "n1", guest.ID)
	assert.True(t, guest.ExternalAttendee)
	assert.Equal(t, "America/New_York", guest.Timezone)
	assert.Equal(t, "new@z.io", guest.Email())
	assert.Equal(t, "m1", guest.MeetingID)

	colleague := got[2]
	assert.Equal(t, "n2", colleague.ID)
	assert.False(t, colleague.ExternalAttendee)
	assert.Equal(t, "Europe/Berlin", colleague.Timezone)

	assert.Len(t, current, 3, "input is not modified")
}

func TestApplyAttendeeDelta_RemovesByPrimaryEmailEntry(t *testing.T) {
	current := []entity.MeetingAssistAttendee{
		{ID: "a1", UserID: "u1", PrimaryEmail: "stale@x.io", Emails: []entity.AttendeeEmail{{Primary: true, Value: "live@x.io"}}},
	}

	kept := ApplyAttendeeDelta(current, entity.NewConstraints{RemovedAttendeeEmailsOrIDs: []string{"stale@x.io"}}, "h1", "UTC", "", counterIDs("n"))
	assert.Len(t, kept, 1)

	removed := ApplyAttendeeDelta(current, entity.NewConstraints{RemovedAttendeeEmailsOrIDs: []string{"live@x.io"}}, "h1", "UTC", "", counterIDs("n"))
	assert.Empty(t, removed)
}

func TestReplanWindow(t *testing.T) {
	utc := mustZone(t, "UTC")
	target := entity.Event{StartDate: "2024-03-04T10:00:00", EndDate: "2024-03-04T11:00:00", Timezone: "Europe/Berlin"}

	start, end, err := ReplanWindow(target, entity.NewConstraints{}, utc)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04T09:00:00", FormatNaive(start))
	assert.Equal(t, "2024-03-11T09:00:00", FormatNaive(end))

	from := time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 8, 18, 0, 0, 0, time.UTC)
	start, end, err = ReplanWindow(target, entity.NewConstraints{NewTimeWindowStartUTC: &from, NewTimeWindowEndUTC: &to}, mustZone(t, "America/New_York"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06T03:00:00", FormatNaive(start))
	assert.Equal(t, "2024-03-08T13:00:00", FormatNaive(end))
}

func TestPlannerService_Replan(t *testing.T) {
	target := entity.Event{
		ID: "ev1#cal1", UserID: "h1", EventID: "g-ev1", CalendarID: "cal1", MeetingID: "m1",
		StartDate: "2024-03-04T10:00:00", EndDate: "2024-03-04T11:00:00", Timezone: "UTC", Priority: 1,
	}
	ds := &mockDataSource{
		getEventForModificationFunc: func(ctx context.Context, eventID string) (*entity.EventWithAttendees, error) {
			assert.Equal(t, "ev1#cal1", eventID)
			return &entity.EventWithAttendees{
				Event: target,
				Attendees: []entity.MeetingAssistAttendee{
					{ID: "a1", UserID: "h1", Timezone: "UTC", PrimaryEmail: "host@x.io"},
					{ID: "a2", UserID: "u2", Timezone: "UTC", PrimaryEmail: "u2@x.io"},
				},
			}, nil
		},
		listEventsForUserGivenDatesFunc: func(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error) {
			assert.Equal(t, "2024-03-04T10:00:00", FormatNaive(start))
			switch userID {
			case "h1":
				return []entity.Event{
					target,
					{ID: "ev2#cal1", UserID: "h1", StartDate: "2024-03-05T14:00:00", EndDate: "2024-03-05T15:00:00", Timezone: "UTC", Modifiable: true},
				}, nil
			case "u2":
				return []entity.Event{
					{ID: "ev3#cal2", UserID: "u2", StartDate: "2024-03-04T15:00:00", EndDate: "2024-03-04T15:30:00", Timezone: "UTC", Modifiable: true},
				}, nil
			}
			return nil, nil
		},
	}
	store, solver := &mockStore{}, &mockSolver{}
	svc := testService(ds, nil, store, solver)

	report, appErr := svc.Replan(context.Background(), &dto.ReplanRequest{
		EventID:        "ev1#cal1",
		NewConstraints: entity.NewConstraints{NewDurationMinutes: 90, RemovedAttendeeEmailsOrIDs: []string{"nobody@x.io"}},
	})

	require.Nil(t, appErr)
	assert.True(t, report.IsReplan)
	assert.Equal(t, "h1/run-1_REPLAN_g-ev1.json", report.FileKey)
	// 3 parts for the 90 minute target, 2 for ev2, 1 for ev3.
	assert.Equal(t, 6, report.EventParts)
	assert.Equal(t, 2, report.Users)

	require.Len(t, store.bodies, 1)
	var snapshot entity.Snapshot
	require.NoError(t, json.Unmarshal(store.bodies[0], &snapshot))
	assert.True(t, snapshot.IsReplan)
	assert.Equal(t, "g-ev1", snapshot.OriginalGoogleEventID)
	assert.Equal(t, "cal1", snapshot.OriginalCalendarID)
	require.NotNil(t, snapshot.OriginalEventDetails)
	assert.Equal(t, "2024-03-04T11:00:00", snapshot.OriginalEventDetails.EndDate)
	require.NotNil(t, snapshot.NewConstraints)
	assert.Equal(t, 90, snapshot.NewConstraints.NewDurationMinutes)
	assert.Len(t, snapshot.FinalAttendees, 2)

	byID := make(map[string]entity.Event)
	for _, ev := range snapshot.AllEvents {
		byID[ev.ID] = ev
	}
	assert.Equal(t, "2024-03-04T11:30:00", byID["ev1#cal1"].EndDate)
	assert.True(t, byID["ev1#cal1"].Modifiable)
	assert.False(t, byID["ev2#cal1"].Modifiable)
	assert.False(t, byID["ev3#cal2"].Modifiable)

	for _, part := range solver.requests[0].EventParts {
		if part.EventID == "ev2#cal1" {
			assert.Equal(t, "TUESDAY", part.PreferredDayOfWeek)
			assert.Equal(t, "14:00:00", part.PreferredTime)
		}
	}
}

func TestPlannerService_Replan_EventNotFound(t *testing.T) {
	svc := testService(&mockDataSource{}, nil, &mockStore{}, &mockSolver{})

	_, appErr := svc.Replan(context.Background(), &dto.ReplanRequest{EventID: "missing"})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestPlannerService_Replan_RejectsOtherUsersEvent(t *testing.T) {
	ds := &mockDataSource{
		getEventForModificationFunc: func(ctx context.Context, eventID string) (*entity.EventWithAttendees, error) {
			return &entity.EventWithAttendees{Event: entity.Event{
				ID: eventID, UserID: "h1", StartDate: "2024-03-04T10:00:00", EndDate: "2024-03-04T11:00:00", Timezone: "UTC",
			}}, nil
		},
	}
	store, solver := &mockStore{}, &mockSolver{}
	svc := testService(ds, nil, store, solver)

	_, appErr := svc.Replan(context.Background(), &dto.ReplanRequest{EventID: "ev1#cal1", CallerID: "intruder"})

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
	assert.Empty(t, store.bodies)
	assert.Empty(t, solver.requests)
}

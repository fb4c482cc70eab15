package repository

import (
	"context"
	"errors"
	"time"

	"schedule-compiler/modules/planner/entity"
)

// ErrNotFound is returned when a single-record lookup finds nothing.
var ErrNotFound = errors.New("record not found")

// DataSourceInterface is the read side of the calendar data service.
type DataSourceInterface interface {
	// ListEventsForDate returns a user's non-deleted events overlapping [start, end).
	ListEventsForDate(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error)
	// ListEventsForUserGivenDates is ListEventsForDate without all-day events.
	ListEventsForUserGivenDates(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error)
	ListEventsWithIds(ctx context.Context, ids []string) ([]entity.Event, error)
	GetUserPreferences(ctx context.Context, userID string) (*entity.UserPreference, error)
	GetGlobalCalendar(ctx context.Context, userID string) (*entity.Calendar, error)

	GetMeetingAssist(ctx context.Context, id string) (*entity.MeetingAssist, error)
	ListMeetingAssistAttendees(ctx context.Context, meetingID string) ([]entity.MeetingAssistAttendee, error)
	CountMeetingAssistAttendees(ctx context.Context, meetingID string) (int, error)
	ListMeetingAssistEventsForAttendee(ctx context.Context, attendeeID string, start, end time.Time, timezone string) ([]entity.MeetingAssistEvent, error)
	ListMeetingAssistPreferredTimeRanges(ctx context.Context, meetingID string) ([]entity.MeetingAssistPreferredTimeRange, error)
	ListPreferredTimeRangesForEvent(ctx context.Context, eventID string) ([]entity.PreferredTimeRange, error)
	// ListFutureMeetingAssists returns the host's open meeting assists whose window
	// overlaps [start, end], skipping excludeIDs.
	ListFutureMeetingAssists(ctx context.Context, userID string, start, end time.Time, excludeIDs []string) ([]entity.MeetingAssist, error)
	ListExternalAttendeePreferences(ctx context.Context, meetingID, attendeeID string) ([]entity.ExternalAttendeePreference, error)
	GetEventForModification(ctx context.Context, eventID string) (*entity.EventWithAttendees, error)
}

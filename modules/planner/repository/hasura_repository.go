package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"schedule-compiler/core/config"
	"schedule-compiler/core/logger"
	"schedule-compiler/modules/planner/entity"
)

const hasuraSecretHeader = "X-Hasura-Admin-Secret"

// HasuraRepository reads calendar data through the Hasura GraphQL endpoint.
type HasuraRepository struct {
	url    string
	secret string
	client *http.Client
}

func NewHasuraRepository(cfg config.DataSourceConfig, client *http.Client) *HasuraRepository {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HasuraRepository{
		url:    cfg.GraphURL,
		secret: cfg.AdminSecret,
		client: client,
	}
}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// execute posts one operation and decodes its data field into T.
func execute[T any](ctx context.Context, r *HasuraRepository, operation, query string, variables map[string]any) (T, error) {
	var zero T

	payload, err := json.Marshal(graphQLRequest{OperationName: operation, Query: query, Variables: variables})
	if err != nil {
		return zero, fmt.Errorf("%s: encode request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return zero, fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(hasuraSecretHeader, r.secret)

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Error("HasuraRepository:execute:Do", "operation", operation, "error", err)
		return zero, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%s: read response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("HasuraRepository:execute:Status", "operation", operation, "status", resp.StatusCode)
		return zero, fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode)
	}

	var decoded graphQLResponse[T]
	if err := json.Unmarshal(body, &decoded); err != nil {
		return zero, fmt.Errorf("%s: decode response: %w", operation, err)
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, len(decoded.Errors))
		for i, e := range decoded.Errors {
			msgs[i] = e.Message
		}
		return zero, fmt.Errorf("%s: %s", operation, strings.Join(msgs, "; "))
	}
	return decoded.Data, nil
}

// naiveIn formats t as a wall-clock timestamp in zone, the shape stored by the data service.
func naiveIn(t time.Time, zone string) string {
	if loc, err := time.LoadLocation(zone); err == nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02T15:04:05")
}

const eventFields = `
	id
	userId
	calendarId
	eventId
	summary
	notes
	startDate
	endDate
	timezone
	allDay
	eventType
	backgroundColor
	deleted
	isBreak
	isPreEvent
	isPostEvent
	modifiable
	priority
	forEventId
	preEventId
	postEventId
	timeBlocking
	recurringEventId
	meetingId
	isMeeting
	isExternalMeeting
	isMeetingModifiable
	isExternalMeetingModifiable
	taskId
	dailyTaskList
	weeklyTaskList
	hardDeadline
	softDeadline
	positiveImpactScore
	negativeImpactScore
	positiveImpactDayOfWeek
	negativeImpactDayOfWeek
	positiveImpactTime
	negativeImpactTime
	preferredDayOfWeek
	preferredTime
	preferredStartTimeRange
	preferredEndTimeRange
`

const listEventsForDateQuery = `
query listEventsForDate($userId: uuid!, $startDate: timestamp!, $endDate: timestamp!) {
	Event(where: {userId: {_eq: $userId}, endDate: {_gt: $startDate}, startDate: {_lt: $endDate}, deleted: {_neq: true}}) {` + eventFields + `}
}`

const listEventsForUserGivenDatesQuery = `
query listEventsForUser($userId: uuid!, $startDate: timestamp!, $endDate: timestamp!) {
	Event(where: {userId: {_eq: $userId}, endDate: {_gt: $startDate}, startDate: {_lt: $endDate}, deleted: {_neq: true}, allDay: {_neq: true}}) {` + eventFields + `}
}`

const listEventsWithIdsQuery = `
query listEventsWithIds($ids: [String!]!) {
	Event(where: {id: {_in: $ids}}) {` + eventFields + `}
}`

func (r *HasuraRepository) ListEventsForDate(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error) {
	data, err := execute[struct {
		Event []entity.Event `json:"Event"`
	}](ctx, r, "listEventsForDate", listEventsForDateQuery, map[string]any{
		"userId":    userID,
		"startDate": naiveIn(start, timezone),
		"endDate":   naiveIn(end, timezone),
	})
	if err != nil {
		return nil, err
	}
	return data.Event, nil
}

func (r *HasuraRepository) ListEventsForUserGivenDates(ctx context.Context, userID string, start, end time.Time, timezone string) ([]entity.Event, error) {
	data, err := execute[struct {
		Event []entity.Event `json:"Event"`
	}](ctx, r, "listEventsForUser", listEventsForUserGivenDatesQuery, map[string]any{
		"userId":    userID,
		"startDate": naiveIn(start, timezone),
		"endDate":   naiveIn(end, timezone),
	})
	if err != nil {
		return nil, err
	}
	return data.Event, nil
}

func (r *HasuraRepository) ListEventsWithIds(ctx context.Context, ids []string) ([]entity.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	data, err := execute[struct {
		Event []entity.Event `json:"Event"`
	}](ctx, r, "listEventsWithIds", listEventsWithIdsQuery, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	return data.Event, nil
}

const getUserPreferencesQuery = `
query getUserPreferences($userId: uuid!) {
	User_Preference(where: {userId: {_eq: $userId}}) {
		id
		userId
		startTimes
		endTimes
		maxWorkLoadPercent
		minNumberOfBreaks
		breakLength
		breakColor
		backToBackMeetings
		maxNumberOfMeetings
	}
}`

func (r *HasuraRepository) GetUserPreferences(ctx context.Context, userID string) (*entity.UserPreference, error) {
	data, err := execute[struct {
		Preferences []entity.UserPreference `json:"User_Preference"`
	}](ctx, r, "getUserPreferences", getUserPreferencesQuery, map[string]any{"userId": userID})
	if err != nil {
		return nil, err
	}
	if len(data.Preferences) == 0 {
		return nil, fmt.Errorf("preferences for %s: %w", userID, ErrNotFound)
	}
	return &data.Preferences[0], nil
}

const getGlobalCalendarQuery = `
query getGlobalPrimaryCalendar($userId: uuid!) {
	Calendar(where: {userId: {_eq: $userId}, globalPrimary: {_eq: true}}) {
		id
		userId
		title
		globalPrimary
	}
}`

func (r *HasuraRepository) GetGlobalCalendar(ctx context.Context, userID string) (*entity.Calendar, error) {
	data, err := execute[struct {
		Calendar []entity.Calendar `json:"Calendar"`
	}](ctx, r, "getGlobalPrimaryCalendar", getGlobalCalendarQuery, map[string]any{"userId": userID})
	if err != nil {
		return nil, err
	}
	if len(data.Calendar) == 0 {
		return nil, fmt.Errorf("global calendar for %s: %w", userID, ErrNotFound)
	}
	return &data.Calendar[0], nil
}

const meetingAssistFields = `
	id
	userId
	summary
	notes
	windowStartDate
	windowEndDate
	timezone
	duration
	calendarId
	priority
	bufferTime
	minThresholdCount
	cancelled
	frequency
	interval
	until
	originalMeetingId
	enableAttendeePreferences
	enableHostPreferences
`

const getMeetingAssistQuery = `
query getMeetingAssistById($id: uuid!) {
	Meeting_Assist_by_pk(id: $id) {` + meetingAssistFields + `}
}`

func (r *HasuraRepository) GetMeetingAssist(ctx context.Context, id string) (*entity.MeetingAssist, error) {
	data, err := execute[struct {
		MeetingAssist *entity.MeetingAssist `json:"Meeting_Assist_by_pk"`
	}](ctx, r, "getMeetingAssistById", getMeetingAssistQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if data.MeetingAssist == nil {
		return nil, fmt.Errorf("meeting assist %s: %w", id, ErrNotFound)
	}
	return data.MeetingAssist, nil
}

const attendeeFields = `
	id
	name
	userId
	hostId
	meetingId
	timezone
	externalAttendee
	primaryEmail
	emails
`

const listMeetingAssistAttendeesQuery = `
query listMeetingAssistAttendeesByMeetingId($meetingId: uuid!) {
	Meeting_Assist_Attendee(where: {meetingId: {_eq: $meetingId}}) {` + attendeeFields + `}
}`

func (r *HasuraRepository) ListMeetingAssistAttendees(ctx context.Context, meetingID string) ([]entity.MeetingAssistAttendee, error) {
	data, err := execute[struct {
		Attendees []entity.MeetingAssistAttendee `json:"Meeting_Assist_Attendee"`
	}](ctx, r, "listMeetingAssistAttendeesByMeetingId", listMeetingAssistAttendeesQuery, map[string]any{"meetingId": meetingID})
	if err != nil {
		return nil, err
	}
	return data.Attendees, nil
}

const countMeetingAssistAttendeesQuery = `
query getMeetingAssistAttendeesCount($meetingId: uuid!) {
	Meeting_Assist_Attendee_aggregate(where: {meetingId: {_eq: $meetingId}}) {
		aggregate {
			count
		}
	}
}`

func (r *HasuraRepository) CountMeetingAssistAttendees(ctx context.Context, meetingID string) (int, error) {
	data, err := execute[struct {
		Aggregate struct {
			Aggregate struct {
				Count int `json:"count"`
			} `json:"aggregate"`
		} `json:"Meeting_Assist_Attendee_aggregate"`
	}](ctx, r, "getMeetingAssistAttendeesCount", countMeetingAssistAttendeesQuery, map[string]any{"meetingId": meetingID})
	if err != nil {
		return 0, err
	}
	return data.Aggregate.Aggregate.Count, nil
}

const listMeetingAssistEventsQuery = `
query listMeetingAssistEventsForAttendeeGivenDates($attendeeId: String!, $startDate: timestamp!, $endDate: timestamp!) {
	Meeting_Assist_Event(where: {attendeeId: {_eq: $attendeeId}, startDate: {_lte: $endDate}, endDate: {_gte: $startDate}}) {
		id
		attendeeId
		meetingId
		summary
		notes
		startDate
		endDate
		timezone
		allDay
		recurringEventId
		eventId
		calendarId
		externalUser
	}
}`

func (r *HasuraRepository) ListMeetingAssistEventsForAttendee(ctx context.Context, attendeeID string, start, end time.Time, timezone string) ([]entity.MeetingAssistEvent, error) {
	data, err := execute[struct {
		Events []entity.MeetingAssistEvent `json:"Meeting_Assist_Event"`
	}](ctx, r, "listMeetingAssistEventsForAttendeeGivenDates", listMeetingAssistEventsQuery, map[string]any{
		"attendeeId": attendeeID,
		"startDate":  naiveIn(start, timezone),
		"endDate":    naiveIn(end, timezone),
	})
	if err != nil {
		return nil, err
	}
	return data.Events, nil
}

const listMeetingAssistPreferredRangesQuery = `
query listMeetingAssistPreferredTimeRangesByMeetingId($meetingId: uuid!) {
	Meeting_Assist_Preferred_Time_Range(where: {meetingId: {_eq: $meetingId}}) {
		id
		meetingId
		dayOfWeek
		startTime
		endTime
		hostId
		attendeeId
	}
}`

func (r *HasuraRepository) ListMeetingAssistPreferredTimeRanges(ctx context.Context, meetingID string) ([]entity.MeetingAssistPreferredTimeRange, error) {
	data, err := execute[struct {
		Ranges []entity.MeetingAssistPreferredTimeRange `json:"Meeting_Assist_Preferred_Time_Range"`
	}](ctx, r, "listMeetingAssistPreferredTimeRangesByMeetingId", listMeetingAssistPreferredRangesQuery, map[string]any{"meetingId": meetingID})
	if err != nil {
		return nil, err
	}
	return data.Ranges, nil
}

const listPreferredTimeRangesForEventQuery = `
query listPreferredTimeRangesGivenEventId($eventId: String!) {
	PreferredTimeRange(where: {eventId: {_eq: $eventId}}) {
		id
		eventId
		dayOfWeek
		startTime
		endTime
		userId
	}
}`

func (r *HasuraRepository) ListPreferredTimeRangesForEvent(ctx context.Context, eventID string) ([]entity.PreferredTimeRange, error) {
	data, err := execute[struct {
		Ranges []entity.PreferredTimeRange `json:"PreferredTimeRange"`
	}](ctx, r, "listPreferredTimeRangesGivenEventId", listPreferredTimeRangesForEventQuery, map[string]any{"eventId": eventID})
	if err != nil {
		return nil, err
	}
	return data.Ranges, nil
}

const listFutureMeetingAssistsQuery = `
query listFutureMeetingAssists($userId: uuid!, $windowStartDate: timestamp!, $windowEndDate: timestamp!, $ids: [uuid!]) {
	Meeting_Assist(where: {userId: {_eq: $userId}, windowStartDate: {_lte: $windowEndDate}, windowEndDate: {_gte: $windowStartDate}, cancelled: {_eq: false}, id: {_nin: $ids}}) {` + meetingAssistFields + `}
}`

func (r *HasuraRepository) ListFutureMeetingAssists(ctx context.Context, userID string, start, end time.Time, excludeIDs []string) ([]entity.MeetingAssist, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	data, err := execute[struct {
		MeetingAssists []entity.MeetingAssist `json:"Meeting_Assist"`
	}](ctx, r, "listFutureMeetingAssists", listFutureMeetingAssistsQuery, map[string]any{
		"userId":          userID,
		"windowStartDate": start.UTC().Format("2006-01-02T15:04:05"),
		"windowEndDate":   end.UTC().Format("2006-01-02T15:04:05"),
		"ids":             excludeIDs,
	})
	if err != nil {
		return nil, err
	}
	return data.MeetingAssists, nil
}

const listExternalAttendeePreferencesQuery = `
query listExternalAttendeePreferences($meetingId: uuid!, $attendeeId: String!) {
	Meeting_Assist_External_Attendee_Preference(where: {meeting_id: {_eq: $meetingId}, attendee_id: {_eq: $attendeeId}}, order_by: {preferred_start_datetime: asc}) {
		preferred_start_datetime
		preferred_end_datetime
	}
}`

func (r *HasuraRepository) ListExternalAttendeePreferences(ctx context.Context, meetingID, attendeeID string) ([]entity.ExternalAttendeePreference, error) {
	data, err := execute[struct {
		Preferences []entity.ExternalAttendeePreference `json:"Meeting_Assist_External_Attendee_Preference"`
	}](ctx, r, "listExternalAttendeePreferences", listExternalAttendeePreferencesQuery, map[string]any{
		"meetingId":  meetingID,
		"attendeeId": attendeeID,
	})
	if err != nil {
		return nil, err
	}
	return data.Preferences, nil
}

const getEventForModificationQuery = `
query getEventWithAttendees($id: String!) {
	Event_by_pk(id: $id) {` + eventFields + `
		Attendees {` + attendeeFields + `}
	}
}`

func (r *HasuraRepository) GetEventForModification(ctx context.Context, eventID string) (*entity.EventWithAttendees, error) {
	data, err := execute[struct {
		Event *struct {
			entity.Event
			Attendees []entity.MeetingAssistAttendee `json:"Attendees"`
		} `json:"Event_by_pk"`
	}](ctx, r, "getEventWithAttendees", getEventForModificationQuery, map[string]any{"id": eventID})
	if err != nil {
		return nil, err
	}
	if data.Event == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return &entity.EventWithAttendees{Event: data.Event.Event, Attendees: data.Event.Attendees}, nil
}

package entity

import "time"

type MeetingAssist struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId"`
	Summary           string       `json:"summary,omitempty"`
	Notes             string       `json:"notes,omitempty"`
	WindowStartDate   string       `json:"windowStartDate"`
	WindowEndDate     string       `json:"windowEndDate"`
	Timezone          string       `json:"timezone"`
	Duration          int          `json:"duration"`
	CalendarID        string       `json:"calendarId,omitempty"`
	Priority          int          `json:"priority"`
	BufferTime        *BufferTimes `json:"bufferTime,omitempty"`
	MinThresholdCount int          `json:"minThresholdCount"`
	Cancelled         bool         `json:"cancelled,omitempty"`

	// Recurrence. Frequency is daily, weekly, monthly or yearly.
	Frequency         string `json:"frequency,omitempty"`
	Interval          int    `json:"interval,omitempty"`
	Until             string `json:"until,omitempty"`
	OriginalMeetingID string `json:"originalMeetingId,omitempty"`

	EnableAttendeePreferences bool `json:"enableAttendeePreferences,omitempty"`
	EnableHostPreferences     bool `json:"enableHostPreferences,omitempty"`
}

type AttendeeEmail struct {
	Primary     bool   `json:"primary"`
	Value       string `json:"value"`
	Type        string `json:"type,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type MeetingAssistAttendee struct {
	ID               string          `json:"id"`
	Name             string          `json:"name,omitempty"`
	UserID           string          `json:"userId"`
	HostID           string          `json:"hostId"`
	MeetingID        string          `json:"meetingId,omitempty"`
	Timezone         string          `json:"timezone"`
	ExternalAttendee bool            `json:"externalAttendee"`
	PrimaryEmail     string          `json:"primaryEmail,omitempty"`
	Emails           []AttendeeEmail `json:"emails,omitempty"`
}

// Email returns the primary address, falling back to the first listed address.
func (a MeetingAssistAttendee) Email() string {
	for _, e := range a.Emails {
		if e.Primary && e.Value != "" {
			return e.Value
		}
	}
	if len(a.Emails) > 0 && a.Emails[0].Value != "" {
		return a.Emails[0].Value
	}
	return a.PrimaryEmail
}

// MeetingAssistEvent is an event synced from a guest's own calendar.
type MeetingAssistEvent struct {
	ID               string `json:"id"`
	AttendeeID       string `json:"attendeeId"`
	MeetingID        string `json:"meetingId,omitempty"`
	Summary          string `json:"summary,omitempty"`
	Notes            string `json:"notes,omitempty"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	Timezone         string `json:"timezone"`
	AllDay           bool   `json:"allDay,omitempty"`
	RecurringEventID string `json:"recurringEventId,omitempty"`
	EventID          string `json:"eventId,omitempty"`
	CalendarID       string `json:"calendarId,omitempty"`
	ExternalUser     bool   `json:"externalUser,omitempty"`
}

// ToEvent converts a guest calendar event into a pinned Event owned by userID.
func (m MeetingAssistEvent) ToEvent(userID string) Event {
	return Event{
		ID:               m.ID,
		UserID:           userID,
		CalendarID:       m.CalendarID,
		EventID:          m.EventID,
		Summary:          m.Summary,
		Notes:            m.Notes,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		Timezone:         m.Timezone,
		AllDay:           m.AllDay,
		RecurringEventID: m.RecurringEventID,
		MeetingID:        m.MeetingID,
		Modifiable:       false,
		Priority:         1,
	}
}

type MeetingAssistPreferredTimeRange struct {
	ID         string `json:"id,omitempty"`
	MeetingID  string `json:"meetingId"`
	DayOfWeek  int    `json:"dayOfWeek,omitempty"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	HostID     string `json:"hostId,omitempty"`
	AttendeeID string `json:"attendeeId,omitempty"`
}

// ExternalAttendeePreference is an explicit availability range a guest submitted, in UTC.
type ExternalAttendeePreference struct {
	PreferredStartDatetime time.Time `json:"preferred_start_datetime"`
	PreferredEndDatetime   time.Time `json:"preferred_end_datetime"`
}

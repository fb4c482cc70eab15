package entity

import "time"

// WorkTime is one weekday's working window in the host zone.
type WorkTime struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	HostID    string `json:"hostId"`
	UserID    string `json:"userId"`
}

type TimeSlot struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	HostID    string `json:"hostId"`
	MonthDay  string `json:"monthDay"`
	Date      string `json:"date"`
}

type PlannerUser struct {
	ID                  string     `json:"id"`
	HostID              string     `json:"hostId"`
	MaxWorkLoadPercent  int        `json:"maxWorkLoadPercent"`
	BackToBackMeetings  bool       `json:"backToBackMeetings"`
	MaxNumberOfMeetings int        `json:"maxNumberOfMeetings"`
	MinNumberOfBreaks   int        `json:"minNumberOfBreaks"`
	WorkTimes           []WorkTime `json:"workTimes"`
}

// EventPart is a fixed-size slice of an event before it is formatted for the solver.
type EventPart struct {
	Event
	GroupID         string
	Part            int
	LastPart        int
	MeetingPart     int
	MeetingLastPart int
	HostID          string
	// Minutes is the slice length: the granularity, or the remainder for the last part.
	Minutes int
}

type PlannerPreferredTimeRange struct {
	DayOfWeek string `json:"dayOfWeek,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	EventID   string `json:"eventId"`
	UserID    string `json:"userId"`
	HostID    string `json:"hostId"`
}

type PlannerEvent struct {
	ID                  string                      `json:"id"`
	UserID              string                      `json:"userId"`
	HostID              string                      `json:"hostId"`
	PreferredTimeRanges []PlannerPreferredTimeRange `json:"preferredTimeRanges,omitempty"`
	EventType           string                      `json:"eventType,omitempty"`
}

// PlannerEventPart is the solver's atomic placement unit.
type PlannerEventPart struct {
	GroupID         string `json:"groupId"`
	EventID         string `json:"eventId"`
	Part            int    `json:"part"`
	LastPart        int    `json:"lastPart"`
	MeetingPart     int    `json:"meetingPart"`
	MeetingLastPart int    `json:"meetingLastPart"`
	MeetingID       string `json:"meetingId,omitempty"`
	HostID          string `json:"hostId"`
	UserID          string `json:"userId"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	TaskID          string `json:"taskId,omitempty"`
	HardDeadline    string `json:"hardDeadline,omitempty"`
	SoftDeadline    string `json:"softDeadline,omitempty"`

	User     PlannerUser `json:"user"`
	Priority int         `json:"priority"`

	IsPreEvent  bool   `json:"isPreEvent"`
	IsPostEvent bool   `json:"isPostEvent"`
	ForEventID  string `json:"forEventId,omitempty"`

	PositiveImpactScore     int    `json:"positiveImpactScore"`
	NegativeImpactScore     int    `json:"negativeImpactScore"`
	PositiveImpactDayOfWeek string `json:"positiveImpactDayOfWeek,omitempty"`
	PositiveImpactTime      string `json:"positiveImpactTime,omitempty"`
	NegativeImpactDayOfWeek string `json:"negativeImpactDayOfWeek,omitempty"`
	NegativeImpactTime      string `json:"negativeImpactTime,omitempty"`

	Modifiable              bool   `json:"modifiable"`
	PreferredDayOfWeek      string `json:"preferredDayOfWeek,omitempty"`
	PreferredTime           string `json:"preferredTime,omitempty"`
	PreferredStartTimeRange string `json:"preferredStartTimeRange,omitempty"`
	PreferredEndTimeRange   string `json:"preferredEndTimeRange,omitempty"`

	IsMeeting                   bool `json:"isMeeting"`
	IsExternalMeeting           bool `json:"isExternalMeeting"`
	IsExternalMeetingModifiable bool `json:"isExternalMeetingModifiable"`
	IsMeetingModifiable         bool `json:"isMeetingModifiable"`

	DailyTaskList     bool    `json:"dailyTaskList"`
	WeeklyTaskList    bool    `json:"weeklyTaskList"`
	Gap               bool    `json:"gap"`
	TotalWorkingHours float64 `json:"totalWorkingHours"`
	RecurringEventID  string  `json:"recurringEventId,omitempty"`

	Event PlannerEvent `json:"event"`
}

// PlannerRequest is the body dispatched to the solver.
type PlannerRequest struct {
	SingletonID string             `json:"singletonId"`
	HostID      string             `json:"hostId"`
	Timeslots   []TimeSlot         `json:"timeslots"`
	UserList    []PlannerUser      `json:"userList"`
	EventParts  []PlannerEventPart `json:"eventParts"`
	FileKey     string             `json:"fileKey"`
	Delay       int                `json:"delay"`
	CallBackURL string             `json:"callBackUrl"`
}

// Snapshot is the audit object written next to each dispatched request.
type Snapshot struct {
	PlannerRequest
	AllEvents          []Event              `json:"allEvents"`
	Breaks             []Event              `json:"breaks"`
	OldEvents          []Event              `json:"oldEvents"`
	OldAttendeeEvents  []MeetingAssistEvent `json:"oldAttendeeEvents"`
	NewHostBufferTimes []BufferEvents       `json:"newHostBufferTimes"`
	HostTimezone       string               `json:"hostTimezone"`

	IsReplan              bool                    `json:"isReplan,omitempty"`
	OriginalGoogleEventID string                  `json:"originalGoogleEventId,omitempty"`
	OriginalCalendarID    string                  `json:"originalCalendarId,omitempty"`
	OriginalEventDetails  *Event                  `json:"originalEventDetails,omitempty"`
	NewConstraints        *NewConstraints         `json:"newConstraints,omitempty"`
	FinalAttendees        []MeetingAssistAttendee `json:"finalAttendees,omitempty"`
}

// NewConstraints is the change set applied when replanning one event.
type NewConstraints struct {
	NewDurationMinutes         int             `json:"newDurationMinutes,omitempty"`
	NewTimeWindowStartUTC      *time.Time      `json:"newTimeWindowStartUTC,omitempty"`
	NewTimeWindowEndUTC        *time.Time      `json:"newTimeWindowEndUTC,omitempty"`
	AddedAttendees             []AddedAttendee `json:"addedAttendees,omitempty"`
	RemovedAttendeeEmailsOrIDs []string        `json:"removedAttendeeEmailsOrIds,omitempty"`
}

type AddedAttendee struct {
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	UserID           string `json:"userId,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	ExternalAttendee *bool  `json:"externalAttendee,omitempty"`
}

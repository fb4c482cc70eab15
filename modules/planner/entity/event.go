package entity

// Event is a calendar event as stored by the data service. StartDate and EndDate are
// wall-clock timestamps ("2006-01-02T15:04:05") in Timezone.
type Event struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	CalendarID string `json:"calendarId,omitempty"`
	// EventID is the provider id, the part of ID before '#'.
	EventID string `json:"eventId,omitempty"`

	Summary         string `json:"summary,omitempty"`
	Notes           string `json:"notes,omitempty"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Timezone        string `json:"timezone"`
	AllDay          bool   `json:"allDay,omitempty"`
	EventType       string `json:"eventType,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Deleted         bool   `json:"deleted,omitempty"`

	IsBreak     bool `json:"isBreak,omitempty"`
	IsPreEvent  bool `json:"isPreEvent,omitempty"`
	IsPostEvent bool `json:"isPostEvent,omitempty"`
	Modifiable  bool `json:"modifiable"`
	Priority    int  `json:"priority,omitempty"`

	ForEventID       string       `json:"forEventId,omitempty"`
	PreEventID       string       `json:"preEventId,omitempty"`
	PostEventID      string       `json:"postEventId,omitempty"`
	TimeBlocking     *BufferTimes `json:"timeBlocking,omitempty"`
	RecurringEventID string       `json:"recurringEventId,omitempty"`

	MeetingID                   string `json:"meetingId,omitempty"`
	IsMeeting                   bool   `json:"isMeeting,omitempty"`
	IsExternalMeeting           bool   `json:"isExternalMeeting,omitempty"`
	IsMeetingModifiable         bool   `json:"isMeetingModifiable,omitempty"`
	IsExternalMeetingModifiable bool   `json:"isExternalMeetingModifiable,omitempty"`

	TaskID         string `json:"taskId,omitempty"`
	DailyTaskList  bool   `json:"dailyTaskList,omitempty"`
	WeeklyTaskList bool   `json:"weeklyTaskList,omitempty"`
	HardDeadline   string `json:"hardDeadline,omitempty"`
	SoftDeadline   string `json:"softDeadline,omitempty"`

	// Solver hints. Day-of-week values are ISO (Monday=1), zero means unset.
	PositiveImpactScore     int    `json:"positiveImpactScore,omitempty"`
	NegativeImpactScore     int    `json:"negativeImpactScore,omitempty"`
	PositiveImpactDayOfWeek int    `json:"positiveImpactDayOfWeek,omitempty"`
	NegativeImpactDayOfWeek int    `json:"negativeImpactDayOfWeek,omitempty"`
	PositiveImpactTime      string `json:"positiveImpactTime,omitempty"`
	NegativeImpactTime      string `json:"negativeImpactTime,omitempty"`
	PreferredDayOfWeek      int    `json:"preferredDayOfWeek,omitempty"`
	PreferredTime           string `json:"preferredTime,omitempty"`
	PreferredStartTimeRange string `json:"preferredStartTimeRange,omitempty"`
	PreferredEndTimeRange   string `json:"preferredEndTimeRange,omitempty"`

	PreferredTimeRanges []PreferredTimeRange `json:"preferredTimeRanges,omitempty"`
}

// BufferTimes holds buffer minutes before and after an event.
type BufferTimes struct {
	BeforeEvent int `json:"beforeEvent,omitempty"`
	AfterEvent  int `json:"afterEvent,omitempty"`
}

// BufferEvents pairs the synthesized buffer events for one event.
type BufferEvents struct {
	BeforeEvent *Event `json:"beforeEvent,omitempty"`
	AfterEvent  *Event `json:"afterEvent,omitempty"`
}

type PreferredTimeRange struct {
	ID        string `json:"id,omitempty"`
	EventID   string `json:"eventId,omitempty"`
	DayOfWeek int    `json:"dayOfWeek,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	UserID    string `json:"userId,omitempty"`
}

// EventWithAttendees is an event fetched for modification, with the meeting roster.
type EventWithAttendees struct {
	Event
	Attendees []MeetingAssistAttendee `json:"attendees"`
}

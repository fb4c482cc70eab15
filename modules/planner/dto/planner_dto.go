package dto

import (
	"errors"
	"fmt"
	"time"

	"schedule-compiler/modules/planner/entity"
)

// ===================== Request DTOs =====================

// CompileRequest carries everything one compilation run needs.
type CompileRequest struct {
	HostID          string `json:"hostId" validate:"required"`
	HostTimezone    string `json:"hostTimezone" validate:"required"`
	WindowStartDate string `json:"windowStartDate" validate:"required"` // naive, host zone
	WindowEndDate   string `json:"windowEndDate" validate:"required"`
	// MeetingAssistID enables explicit guest availability lookups.
	MeetingAssistID string `json:"meetingAssistId,omitempty"`

	InternalAttendees []entity.MeetingAssistAttendee `json:"internalAttendees"`
	ExternalAttendees []entity.MeetingAssistAttendee `json:"externalAttendees"`

	// Events are the existing events of the host and internal attendees.
	Events              []entity.Event              `json:"events"`
	MeetingEvents       []entity.Event              `json:"meetingEvents"`
	NewMeetingEvents    []entity.Event              `json:"newMeetingEvents"`
	NewHostBufferTimes  []entity.BufferEvents       `json:"newHostBufferTimes"`
	MeetingAssistEvents []entity.MeetingAssistEvent `json:"meetingAssistEvents"`
	OldEvents           []entity.Event              `json:"oldEvents"`
}

// Validate checks the fields the assembler cannot default.
func (r *CompileRequest) Validate() error {
	var errs []error
	if r.HostID == "" {
		errs = append(errs, errors.New("hostId is required"))
	}
	if r.HostTimezone == "" {
		errs = append(errs, errors.New("hostTimezone is required"))
	} else if _, err := time.LoadLocation(r.HostTimezone); err != nil {
		errs = append(errs, fmt.Errorf("hostTimezone %q is not a valid zone", r.HostTimezone))
	}
	if r.WindowStartDate == "" {
		errs = append(errs, errors.New("windowStartDate is required"))
	}
	if r.WindowEndDate == "" {
		errs = append(errs, errors.New("windowEndDate is required"))
	}
	return errors.Join(errs...)
}

// ReplanRequest re-runs planning for one existing event under new constraints.
type ReplanRequest struct {
	EventID         string                `json:"eventId" validate:"required"`
	GoogleEventID   string                `json:"googleEventId,omitempty"`
	CalendarID      string                `json:"calendarId,omitempty"`
	HostTimezone    string                `json:"hostTimezone,omitempty"`
	MeetingAssistID string                `json:"meetingAssistId,omitempty"`
	NewConstraints  entity.NewConstraints `json:"newConstraints"`
	// CallerID is the authenticated user. When set, the event must belong to them.
	CallerID string `json:"-"`
}

func (r *ReplanRequest) Validate() error {
	var errs []error
	if r.EventID == "" {
		errs = append(errs, errors.New("eventId is required"))
	}
	c := r.NewConstraints
	if c.NewDurationMinutes < 0 {
		errs = append(errs, errors.New("newDurationMinutes must not be negative"))
	}
	if (c.NewTimeWindowStartUTC == nil) != (c.NewTimeWindowEndUTC == nil) {
		errs = append(errs, errors.New("newTimeWindowStartUTC and newTimeWindowEndUTC must be set together"))
	}
	if c.NewTimeWindowStartUTC != nil && c.NewTimeWindowEndUTC != nil && !c.NewTimeWindowEndUTC.After(*c.NewTimeWindowStartUTC) {
		errs = append(errs, errors.New("newTimeWindowEndUTC must be after newTimeWindowStartUTC"))
	}
	for _, a := range c.AddedAttendees {
		if a.Email == "" && a.UserID == "" {
			errs = append(errs, errors.New("added attendees need an email or userId"))
			break
		}
	}
	return errors.Join(errs...)
}

// ===================== Response DTOs =====================

// CompileResponse wraps the run report returned to HTTP callers.
type CompileResponse struct {
	Run *entity.RunReport `json:"run"`
}

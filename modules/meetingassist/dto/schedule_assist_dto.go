package dto

import (
	"errors"
	"fmt"
	"time"
)

// ScheduleAssistRequest asks for one host's window to be planned, meetings included.
type ScheduleAssistRequest struct {
	UserID          string `json:"userId" validate:"required"`
	WindowStartDate string `json:"windowStartDate" validate:"required"`
	WindowEndDate   string `json:"windowEndDate" validate:"required"`
	Timezone        string `json:"timezone" validate:"required"`
}

func (r *ScheduleAssistRequest) Validate() error {
	var errs []error
	if r.UserID == "" {
		errs = append(errs, errors.New("userId is required"))
	}
	if r.WindowStartDate == "" {
		errs = append(errs, errors.New("windowStartDate is required"))
	}
	if r.WindowEndDate == "" {
		errs = append(errs, errors.New("windowEndDate is required"))
	}
	if r.Timezone == "" {
		errs = append(errs, errors.New("timezone is required"))
	} else if _, err := time.LoadLocation(r.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q is not a valid zone", r.Timezone))
	}
	return errors.Join(errs...)
}

// EnqueueResponse reports the queued task.
type EnqueueResponse struct {
	TaskID string `json:"taskId"`
	Queue  string `json:"queue"`
}

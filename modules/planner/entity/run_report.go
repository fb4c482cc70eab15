package entity

import "time"

const (
	RunStatusDispatched = "dispatched"
	RunStatusFailed     = "failed"

	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"

	RoleHost     = "host"
	RoleInternal = "internal"
	RoleExternal = "external"
)

// UserOutcome records how one user's pass went.
type UserOutcome struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Parts     int    `json:"parts"`
	Timeslots int    `json:"timeslots"`
	Breaks    int    `json:"breaks"`
}

// RunReport summarizes one compilation run.
type RunReport struct {
	SingletonID string        `json:"singletonId" db:"singleton_id"`
	HostID      string        `json:"hostId" db:"host_id"`
	FileKey     string        `json:"fileKey" db:"file_key"`
	IsReplan    bool          `json:"isReplan" db:"is_replan"`
	Status      string        `json:"status" db:"status"`
	EventParts  int           `json:"eventParts" db:"event_parts"`
	Timeslots   int           `json:"timeslots" db:"timeslots"`
	Users       int           `json:"users" db:"users"`
	Outcomes    []UserOutcome `json:"outcomes" db:"-"`
	Error       string        `json:"error,omitempty" db:"-"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
}

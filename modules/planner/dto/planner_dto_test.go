package dto

import (
	"testing"
	"time"

	"schedule-compiler/modules/planner/entity"

	"github.com/stretchr/testify/assert"
)

func TestCompileRequest_Validate(t *testing.T) {
	valid := CompileRequest{
		HostID:          "h1",
		HostTimezone:    "America/New_York",
		WindowStartDate: "2024-03-04T09:00:00",
		WindowEndDate:   "2024-03-08T17:00:00",
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.HostID = ""
	bad.HostTimezone = "Nowhere/City"
	err := bad.Validate()
	assert.ErrorContains(t, err, "hostId is required")
	assert.ErrorContains(t, err, "not a valid zone")
}

func TestReplanRequest_Validate(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	tests := []struct {
		name    string
		req     ReplanRequest
		wantErr string
	}{
		{"valid", ReplanRequest{EventID: "e1"}, ""},
		{"missing event", ReplanRequest{}, "eventId is required"},
		{"half window", ReplanRequest{EventID: "e1", NewConstraints: entity.NewConstraints{NewTimeWindowStartUTC: &start}}, "must be set together"},
		{"inverted window", ReplanRequest{EventID: "e1", NewConstraints: entity.NewConstraints{NewTimeWindowStartUTC: &start, NewTimeWindowEndUTC: &end}}, "must be after"},
		{"anonymous attendee", ReplanRequest{EventID: "e1", NewConstraints: entity.NewConstraints{AddedAttendees: []entity.AddedAttendee{{Name: "x"}}}}, "email or userId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

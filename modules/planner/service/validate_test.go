package service

import (
	"testing"

	"schedule-compiler/modules/planner/entity"

	"github.com/stretchr/testify/assert"
)

func TestValidateEvent(t *testing.T) {
	utc := mustZone(t, "UTC")
	window := PreferenceWindow(weekdayPreference("u1", 9, 17), utc, utc)

	tests := []struct {
		name  string
		event entity.Event
		want  bool
	}{
		{"inside window", utcEvent("a", "10:00:00", "11:00:00"), true},
		{"starts at work end", utcEvent("a", "17:00:00", "17:30:00"), true},
		{"before work start", utcEvent("a", "08:00:00", "09:30:00"), false},
		{"after work end", utcEvent("a", "18:00:00", "18:30:00"), false},
		{"zero length", utcEvent("a", "10:00:00", "10:00:00"), false},
		{"negative length", utcEvent("a", "11:00:00", "10:00:00"), false},
		{"missing timezone", entity.Event{ID: "a", StartDate: "2024-03-04T10:00:00", EndDate: "2024-03-04T11:00:00"}, false},
		{"full day", entity.Event{ID: "a", StartDate: "2024-03-04T10:00:00", EndDate: "2024-03-05T10:00:00", Timezone: "UTC"}, false},
		{"saturday", entity.Event{ID: "a", StartDate: "2024-03-09T10:00:00", EndDate: "2024-03-09T11:00:00", Timezone: "UTC"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEvent(tt.event, window))
		})
	}
}

func TestValidateExternalEvent(t *testing.T) {
	assert.True(t, ValidateExternalEvent(utcEvent("a", "06:00:00", "07:00:00")))
	assert.False(t, ValidateExternalEvent(utcEvent("a", "07:00:00", "06:00:00")))
}

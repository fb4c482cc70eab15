package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEventID(t *testing.T) {
	id := NewEventID("cal-1")
	eventID, calendarID := SplitEventID(id)

	assert.Equal(t, "cal-1", calendarID)
	assert.Len(t, eventID, 36)
	assert.False(t, strings.Contains(NewEventID(""), "#"))
}

func TestSplitEventID_NoCalendar(t *testing.T) {
	eventID, calendarID := SplitEventID("abc")
	assert.Equal(t, "abc", eventID)
	assert.Empty(t, calendarID)
}

func TestTaskID_Stable(t *testing.T) {
	a := TaskID("schedule_assist", "host-1", "2024-03-04T09:00:00", "2024-03-08T17:00:00")
	b := TaskID("schedule_assist", "host-1", "2024-03-04T09:00:00", "2024-03-08T17:00:00")

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "schedule_assist:"))
	assert.NotContains(t, a, " ")
}

func TestGenerateID(t *testing.T) {
	assert.Len(t, GenerateID(), 12)
	assert.NotEqual(t, GenerateID(), GenerateID())
}

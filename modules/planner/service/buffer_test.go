package service

import (
	"testing"

	"schedule-compiler/modules/planner/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferInserter_Insert(t *testing.T) {
	inserter := &BufferInserter{newEventID: fixedIDs("pre", "post")}
	event := entity.Event{
		ID:         "ev1#cal1",
		UserID:     "u1",
		CalendarID: "cal1",
		StartDate:  "2024-03-04T10:00:00",
		EndDate:    "2024-03-04T10:30:00",
		Timezone:   "Europe/Berlin",
	}

	got, err := inserter.Insert(event, entity.BufferTimes{BeforeEvent: 10, AfterEvent: 15})
	require.NoError(t, err)

	require.NotNil(t, got.Before)
	assert.Equal(t, "pre#cal1", got.Before.ID)
	assert.Equal(t, "2024-03-04T09:50:00", got.Before.StartDate)
	assert.Equal(t, "2024-03-04T10:00:00", got.Before.EndDate)
	assert.True(t, got.Before.IsPreEvent)
	assert.Equal(t, "ev1#cal1", got.Before.ForEventID)
	assert.Equal(t, "Buffer time", got.Before.Summary)
	assert.Equal(t, "Europe/Berlin", got.Before.Timezone)
	assert.True(t, got.Before.Modifiable)

	require.NotNil(t, got.After)
	assert.Equal(t, "post#cal1", got.After.ID)
	assert.Equal(t, "2024-03-04T10:30:00", got.After.StartDate)
	assert.Equal(t, "2024-03-04T10:45:00", got.After.EndDate)
	assert.True(t, got.After.IsPostEvent)
	assert.Equal(t, "ev1#cal1", got.After.ForEventID)

	assert.Equal(t, "pre#cal1", got.Event.PreEventID)
	assert.Equal(t, "post#cal1", got.Event.PostEventID)
	assert.Equal(t, &entity.BufferTimes{BeforeEvent: 10, AfterEvent: 15}, got.Event.TimeBlocking)
	assert.Empty(t, event.PreEventID, "input is not modified")
}

func TestBufferInserter_ReusesIDsAndSkipsZero(t *testing.T) {
	inserter := &BufferInserter{newEventID: fixedIDs("unused")}
	event := entity.Event{
		ID:         "ev1",
		PreEventID: "existing-pre",
		StartDate:  "2024-03-04T10:00:00",
		EndDate:    "2024-03-04T10:30:00",
		Timezone:   "UTC",
	}

	got, err := inserter.Insert(event, entity.BufferTimes{BeforeEvent: 5})
	require.NoError(t, err)
	require.NotNil(t, got.Before)
	assert.Equal(t, "existing-pre", got.Before.ID)
	assert.Nil(t, got.After)

	none, err := inserter.Insert(event, entity.BufferTimes{})
	require.NoError(t, err)
	assert.Nil(t, none.Before)
	assert.Nil(t, none.After)
}

func TestBufferInserter_BadTimezone(t *testing.T) {
	inserter := NewBufferInserter()
	_, err := inserter.Insert(entity.Event{ID: "e", StartDate: "2024-03-04T10:00:00", EndDate: "2024-03-04T10:30:00"}, entity.BufferTimes{BeforeEvent: 5})
	assert.Error(t, err)
}

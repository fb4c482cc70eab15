package service

import (
	"fmt"
	"time"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/utils"
	"schedule-compiler/modules/planner/entity"
)

// BufferResult is an event with its synthesized buffers. Before and After are nil
// when the matching buffer length is zero.
type BufferResult struct {
	Event  entity.Event
	Before *entity.Event
	After  *entity.Event
}

// BufferInserter creates buffer events around an event.
type BufferInserter struct {
	newEventID func(calendarID string) string
}

func NewBufferInserter() *BufferInserter {
	return &BufferInserter{newEventID: utils.NewEventID}
}

// Insert returns copies of event and its buffers. The input event is not modified.
// Buffer ids reuse the event's existing PreEventID and PostEventID when set.
func (b *BufferInserter) Insert(event entity.Event, buffer entity.BufferTimes) (BufferResult, error) {
	result := BufferResult{Event: event}
	if buffer.BeforeEvent <= 0 && buffer.AfterEvent <= 0 {
		return result, nil
	}

	start, err := ParseInZone(event.StartDate, event.Timezone)
	if err != nil {
		return result, fmt.Errorf("buffer for %s: %w", event.ID, err)
	}
	end, err := ParseInZone(event.EndDate, event.Timezone)
	if err != nil {
		return result, fmt.Errorf("buffer for %s: %w", event.ID, err)
	}

	if buffer.BeforeEvent > 0 {
		id := event.PreEventID
		if id == "" {
			id = b.newEventID(event.CalendarID)
		}
		pre := b.bufferEvent(event, id, start.Add(-time.Duration(buffer.BeforeEvent)*time.Minute), start)
		pre.IsPreEvent = true
		result.Before = &pre
		result.Event.PreEventID = id
	}

	if buffer.AfterEvent > 0 {
		id := event.PostEventID
		if id == "" {
			id = b.newEventID(event.CalendarID)
		}
		post := b.bufferEvent(event, id, end, end.Add(time.Duration(buffer.AfterEvent)*time.Minute))
		post.IsPostEvent = true
		result.After = &post
		result.Event.PostEventID = id
	}

	result.Event.TimeBlocking = &entity.BufferTimes{
		BeforeEvent: buffer.BeforeEvent,
		AfterEvent:  buffer.AfterEvent,
	}
	return result, nil
}

func (b *BufferInserter) bufferEvent(event entity.Event, id string, start, end time.Time) entity.Event {
	eventID, _ := utils.SplitEventID(id)
	return entity.Event{
		ID:         id,
		EventID:    eventID,
		UserID:     event.UserID,
		CalendarID: event.CalendarID,
		Summary:    constants.BufferTitle,
		Notes:      constants.BufferTitle,
		StartDate:  FormatNaive(start),
		EndDate:    FormatNaive(end),
		Timezone:   event.Timezone,
		ForEventID: event.ID,
		Priority:   1,
		Modifiable: true,
	}
}

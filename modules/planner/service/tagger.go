package service

import (
	"context"
	"fmt"

	"schedule-compiler/modules/planner/entity"
)

// PinUnmodifiable fixes a non-modifiable part to its current day and time so the
// solver keeps it in place. Parts that already carry a preference are left alone.
func PinUnmodifiable(part entity.PlannerEventPart, event entity.Event) entity.PlannerEventPart {
	if part.Modifiable || part.PreferredDayOfWeek != "" || part.PreferredTime != "" {
		return part
	}
	start, err := ParseInZone(event.StartDate, event.Timezone)
	if err != nil {
		return part
	}
	part.PreferredDayOfWeek = DayOfWeekName(ISOWeekday(start))
	part.PreferredTime = FormatClock(start)
	return part
}

// RecurringEventSource looks up the master events of recurring series.
type RecurringEventSource interface {
	ListEventsWithIds(ctx context.Context, ids []string) ([]entity.Event, error)
}

// TaskListTagger copies task-list flags from recurring masters onto their parts.
type TaskListTagger struct {
	source RecurringEventSource
}

func NewTaskListTagger(source RecurringEventSource) *TaskListTagger {
	return &TaskListTagger{source: source}
}

// Tag fetches every referenced master in one call. A part gets weeklyTaskList when the
// master has it set, otherwise dailyTaskList. On a lookup failure the parts are
// returned unchanged together with the error.
func (t *TaskListTagger) Tag(ctx context.Context, parts []entity.PlannerEventPart) ([]entity.PlannerEventPart, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, part := range parts {
		if part.RecurringEventID == "" || seen[part.RecurringEventID] {
			continue
		}
		seen[part.RecurringEventID] = true
		ids = append(ids, part.RecurringEventID)
	}
	if len(ids) == 0 {
		return parts, nil
	}

	masters, err := t.source.ListEventsWithIds(ctx, ids)
	if err != nil {
		return parts, fmt.Errorf("list recurring masters: %w", err)
	}
	byID := make(map[string]entity.Event, len(masters))
	for _, m := range masters {
		byID[m.ID] = m
	}

	tagged := make([]entity.PlannerEventPart, len(parts))
	copy(tagged, parts)
	for i := range tagged {
		master, ok := byID[tagged[i].RecurringEventID]
		if !ok {
			continue
		}
		switch {
		case master.WeeklyTaskList:
			tagged[i].WeeklyTaskList = true
		case master.DailyTaskList:
			tagged[i].DailyTaskList = true
		}
	}
	return tagged, nil
}

package service

import (
	"math"
	"sort"
	"time"

	"schedule-compiler/core/constants"
	"schedule-compiler/core/logger"
	"schedule-compiler/core/utils"
	"schedule-compiler/modules/planner/entity"
)

// BreakBudget is the arithmetic behind one day's break generation, in hours.
type BreakBudget struct {
	WorkingHours          float64
	HoursUsed             float64
	BreakHoursUsed        float64
	BreakHoursFromMin     float64
	HoursMustBeBreak      float64
	BreakHoursAvailable   float64
	BreakHoursToGenerate  float64
	ActualBreakHours      float64
	BreakLengthMinutes    int
	NumberOfBreaksToPlace int
}

// NormalizeBreakLength raises break lengths of 15 minutes or less to 15.
func NormalizeBreakLength(minutes int) int {
	if minutes <= constants.MinBreakLength {
		return constants.MinBreakLength
	}
	return minutes
}

// interval is a parsed event span.
type interval struct {
	start time.Time
	end   time.Time
}

type dayEvent struct {
	interval
	event entity.Event
}

func parseDayEvents(events []entity.Event, hostLoc *time.Location) []dayEvent {
	parsed := make([]dayEvent, 0, len(events))
	for _, ev := range events {
		start, err := ParseInZone(ev.StartDate, ev.Timezone)
		if err != nil {
			continue
		}
		end, err := ParseInZone(ev.EndDate, ev.Timezone)
		if err != nil {
			continue
		}
		parsed = append(parsed, dayEvent{interval: interval{start.In(hostLoc), end.In(hostLoc)}, event: ev})
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].start.Before(parsed[j].start)
	})
	return parsed
}

// PlanBreaks works out how many breaks a day needs. ok is false when no break
// should be generated.
func PlanBreaks(pref entity.UserPreference, workingHours float64, events []dayEvent) (BreakBudget, bool) {
	budget := BreakBudget{
		WorkingHours:       workingHours,
		BreakLengthMinutes: NormalizeBreakLength(pref.BreakLength),
	}
	if len(events) == 0 {
		return budget, false
	}

	// The budget uses the preferred length as given. Only the placed breaks are
	// raised to the minimum length.
	lengthHours := float64(pref.BreakLength) / 60
	if lengthHours <= 0 {
		return budget, false
	}
	for _, ev := range events {
		hours := ev.end.Sub(ev.start).Hours()
		budget.HoursUsed += hours
		if ev.event.IsBreak {
			budget.BreakHoursUsed += hours
		}
	}

	budget.BreakHoursFromMin = lengthHours * float64(pref.MinNumberOfBreaks)
	budget.HoursMustBeBreak = workingHours * (1 - float64(pref.MaxWorkLoadPercent)/100)
	if budget.BreakHoursUsed >= math.Max(budget.BreakHoursFromMin, budget.HoursMustBeBreak) {
		return budget, false
	}

	budget.BreakHoursAvailable = workingHours - budget.HoursUsed
	if budget.BreakHoursAvailable < budget.HoursMustBeBreak {
		budget.BreakHoursAvailable = budget.HoursMustBeBreak
	}
	if budget.BreakHoursAvailable <= 0 {
		return budget, false
	}

	budget.BreakHoursToGenerate = math.Min(budget.BreakHoursFromMin, budget.BreakHoursAvailable)
	budget.ActualBreakHours = budget.BreakHoursToGenerate - budget.BreakHoursUsed
	if budget.ActualBreakHours > budget.BreakHoursAvailable {
		return budget, false
	}

	budget.NumberOfBreaksToPlace = int(math.Floor(budget.ActualBreakHours / lengthHours))
	if budget.NumberOfBreaksToPlace < 1 || budget.BreakHoursToGenerate > constants.MaxBreakHoursPerDay {
		return budget, false
	}
	return budget, true
}

// BreakDay is the input for one user-day of break placement.
type BreakDay struct {
	UserID     string
	CalendarID string
	HostZone   string
	Preference entity.UserPreference
	WorkStart  time.Time
	WorkEnd    time.Time
	// Events are the user's events touching the day, existing breaks included.
	Events []entity.Event
}

// BreakPlacer synthesizes break events that fit before existing events.
type BreakPlacer struct {
	newEventID func(calendarID string) string
}

func NewBreakPlacer() *BreakPlacer {
	return &BreakPlacer{newEventID: utils.NewEventID}
}

// GenerateForDay returns the breaks placed on one day, possibly none.
//
// Each break sits immediately before some non-break event, inside the working window,
// clear of every non-break event and of every other break.
func (p *BreakPlacer) GenerateForDay(day BreakDay) []entity.Event {
	hostLoc := day.WorkStart.Location()
	events := parseDayEvents(day.Events, hostLoc)

	workingHours := day.WorkEnd.Sub(day.WorkStart).Hours()
	budget, ok := PlanBreaks(day.Preference, workingHours, events)
	if !ok {
		return nil
	}

	var (
		regular []dayEvent
		taken   []interval
	)
	for _, ev := range events {
		if ev.event.IsBreak {
			taken = append(taken, ev.interval)
			continue
		}
		regular = append(regular, ev)
	}

	length := time.Duration(budget.BreakLengthMinutes) * time.Minute
	color := day.Preference.BreakColor
	if color == "" {
		color = constants.DefaultBreakColor
	}

	var breaks []entity.Event
	for i := 0; i < budget.NumberOfBreaksToPlace; i++ {
		candidate, found := p.findSlot(regular, taken, length, day.WorkStart, day.WorkEnd)
		if !found {
			logger.Debug("BreakPlacer:GenerateForDay:NoSlot", "userId", day.UserID, "break", i+1)
			continue
		}
		taken = append(taken, candidate)
		breaks = append(breaks, p.newBreak(day, candidate, color))
	}
	return breaks
}

func (p *BreakPlacer) findSlot(regular []dayEvent, taken []interval, length time.Duration, workStart, workEnd time.Time) (interval, bool) {
	for _, anchor := range regular {
		candidate := interval{start: anchor.start.Add(-length), end: anchor.start}
		if candidate.start.Before(workStart) || candidate.end.After(workEnd) {
			continue
		}
		if overlapsAny(candidate, regular) || overlapsAnyInterval(candidate, taken) {
			continue
		}
		return candidate, true
	}
	return interval{}, false
}

func overlapsAny(candidate interval, events []dayEvent) bool {
	for _, ev := range events {
		if Overlaps(candidate.start, candidate.end, ev.start, ev.end) {
			return true
		}
	}
	return false
}

func overlapsAnyInterval(candidate interval, spans []interval) bool {
	for _, s := range spans {
		if Overlaps(candidate.start, candidate.end, s.start, s.end) {
			return true
		}
	}
	return false
}

func (p *BreakPlacer) newBreak(day BreakDay, span interval, color string) entity.Event {
	id := p.newEventID(day.CalendarID)
	eventID, _ := utils.SplitEventID(id)
	return entity.Event{
		ID:              id,
		EventID:         eventID,
		UserID:          day.UserID,
		CalendarID:      day.CalendarID,
		Summary:         constants.BreakTitle,
		Notes:           constants.BreakTitle,
		StartDate:       FormatNaive(span.start),
		EndDate:         FormatNaive(span.end),
		Timezone:        day.HostZone,
		IsBreak:         true,
		Priority:        1,
		Modifiable:      true,
		BackgroundColor: color,
	}
}

package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"schedule-compiler/core/constants"
)

const (
	naiveLayout    = "2006-01-02T15:04:05"
	clockLayout    = "15:04:05"
	dateLayout     = "2006-01-02"
	monthDayLayout = "--01-02"
)

var zoneCache sync.Map

// LoadZone resolves an IANA zone name, caching the result.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("empty timezone")
	}
	if loc, ok := zoneCache.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	zoneCache.Store(name, loc)
	return loc, nil
}

// ParseInZone reads a wall-clock timestamp in zone. Any offset or fraction after the
// seconds field is ignored, and a bare date means midnight.
func ParseInZone(value, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	s := strings.TrimSpace(value)
	if len(s) > len(naiveLayout) {
		s = s[:len(naiveLayout)]
	}
	if len(s) == len(dateLayout) {
		s += "T00:00:00"
	}
	t, err := time.ParseInLocation(naiveLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q in %s: %w", value, zone, err)
	}
	return t, nil
}

// FormatNaive renders t as a zone-less wall-clock timestamp.
func FormatNaive(t time.Time) string {
	return t.Format(naiveLayout)
}

func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// ParseClock reads "HH:mm" or "HH:mm:ss".
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("invalid clock %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

// AtClock returns the instant at hour:minute on t's calendar date in loc.
func AtClock(t time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

// MinutesBetween returns whole minutes from start to end.
func MinutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// RoundToNearest floors t into its half-open bucket [k*step, (k+1)*step) within the hour.
// step must divide an hour.
func RoundToNearest(step time.Duration, t time.Time) time.Time {
	stepMin := int(step / time.Minute)
	if stepMin <= 0 {
		return t
	}
	bucket := (t.Minute() / stepMin) * stepMin
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), bucket, 0, 0, t.Location())
}

// RoundUpToNext returns the start of the bucket after the one containing t.
func RoundUpToNext(step time.Duration, t time.Time) time.Time {
	return RoundToNearest(step, t).Add(step)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ISOWeekday returns Monday=1 through Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// SetISOWeekday moves t to the given weekday of its own ISO week.
func SetISOWeekday(t time.Time, day int) time.Time {
	return t.AddDate(0, 0, day-ISOWeekday(t))
}

// DayOfWeekName returns the solver name for an ISO weekday, or "" when unset.
func DayOfWeekName(day int) string {
	return constants.DayOfWeekName[day]
}

func MonthDay(t time.Time) string {
	return t.Format(monthDayLayout)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// StartOfDay truncates t to midnight in its own zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayStarts returns the window start followed by each later calendar day it spans,
// each keeping the window start's clock time. The last day is the end's date.
func DayStarts(start, end time.Time) []time.Time {
	days := []time.Time{start}
	last := StartOfDay(end)
	for i := 1; ; i++ {
		next := start.AddDate(0, 0, i)
		if StartOfDay(next).After(last) {
			break
		}
		days = append(days, next)
	}
	return days
}

package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short random id for request correlation.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		return uuid.NewString()
	}
	return id
}

// NewEventID builds a calendar-scoped event id, "<uuid>#<calendarId>".
// An empty calendar id yields the bare uuid.
func NewEventID(calendarID string) string {
	id := uuid.NewString()
	if calendarID == "" {
		return id
	}
	return id + "#" + calendarID
}

// SplitEventID returns the provider event id and calendar id of "<eventId>#<calendarId>".
func SplitEventID(id string) (eventID, calendarID string) {
	eventID, calendarID, _ = strings.Cut(id, "#")
	return eventID, calendarID
}

// TaskID derives a stable queue task id from its parts, e.g. host and window bounds.
func TaskID(prefix string, parts ...string) string {
	return prefix + ":" + slug.Make(strings.Join(parts, " "))
}

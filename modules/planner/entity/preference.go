package entity

// DayTime is a weekly clock entry. Day is ISO (Monday=1).
type DayTime struct {
	Day     int `json:"day"`
	Hour    int `json:"hour"`
	Minutes int `json:"minutes"`
}

type UserPreference struct {
	ID                  string    `json:"id,omitempty"`
	UserID              string    `json:"userId"`
	StartTimes          []DayTime `json:"startTimes"`
	EndTimes            []DayTime `json:"endTimes"`
	MaxWorkLoadPercent  int       `json:"maxWorkLoadPercent"`
	MinNumberOfBreaks   int       `json:"minNumberOfBreaks"`
	BreakLength         int       `json:"breakLength"`
	BreakColor          string    `json:"breakColor,omitempty"`
	BackToBackMeetings  bool      `json:"backToBackMeetings"`
	MaxNumberOfMeetings int       `json:"maxNumberOfMeetings"`
}

func findDay(entries []DayTime, day int) (DayTime, bool) {
	for _, e := range entries {
		if e.Day == day {
			return e, true
		}
	}
	return DayTime{}, false
}

func (p UserPreference) StartFor(day int) (DayTime, bool) {
	return findDay(p.StartTimes, day)
}

func (p UserPreference) EndFor(day int) (DayTime, bool) {
	return findDay(p.EndTimes, day)
}

// DefaultUserPreference is used for replan users that have no stored preferences.
// Working hours default to 09:00-17:00 on weekdays.
func DefaultUserPreference(userID string) UserPreference {
	pref := UserPreference{
		UserID:              userID,
		MaxWorkLoadPercent:  100,
		BackToBackMeetings:  false,
		MaxNumberOfMeetings: 99,
		MinNumberOfBreaks:   0,
		BreakLength:         30,
	}
	for day := 1; day <= 5; day++ {
		pref.StartTimes = append(pref.StartTimes, DayTime{Day: day, Hour: 9})
		pref.EndTimes = append(pref.EndTimes, DayTime{Day: day, Hour: 17})
	}
	return pref
}

type Calendar struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	Title         string `json:"title,omitempty"`
	GlobalPrimary bool   `json:"globalPrimary"`
}

package constants

const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Echo context keys
const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

// Asynq task types
const (
	TaskScheduleAssist = "schedule_assist:process"
)

const (
	DefaultBreakColor = "#F7EBF7"
	BreakTitle        = "Break"
	BufferTitle       = "Buffer time"

	// Time slot and event part widths in minutes.
	GranularityFull = 15
	GranularityLite = 30

	// Break ceiling in hours for a single day.
	MaxBreakHoursPerDay = 6
	MinBreakLength      = 15

	ReplanDefaultWindowDays = 7
)

// DayOfWeekName maps ISO weekdays (Monday=1) to solver names.
var DayOfWeekName = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
	6: "SATURDAY",
	7: "SUNDAY",
}

package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is how timestamps are stored at rest (RFC3339 with nanoseconds, UTC)
	TimestampFormat = "2006-01-02T15:04:05.999999999Z07:00"

	HoursPerDay = 24
	DaysPerWeek = 7
)

package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
func GetTodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return now.Format(constants.DateFormat), nil
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC. Calendar arithmetic
// on dates is done in UTC so daylight saving shifts never skip or repeat a day.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", dateStr)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// DateAndHour returns the calendar date and hour-of-day of t in loc.
func DateAndHour(t time.Time, loc *time.Location) (string, int) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return local.Format(constants.DateFormat), local.Hour()
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(dateStr string, n int) (string, error) {
	d, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}

// WeekStart returns the Sunday on or before dateStr (date minus its weekday offset).
func WeekStart(dateStr string) (string, error) {
	d, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, -int(d.Weekday()))), nil
}

// DateRange lists every date from start to end inclusive. Returns an error if end precedes start.
func DateRange(start, end string) ([]string, error) {
	s, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if e.Before(s) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	var dates []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates, nil
}

// WeekDates returns the seven dates of the Sunday-based week containing dateStr.
func WeekDates(dateStr string) ([]string, error) {
	start, err := WeekStart(dateStr)
	if err != nil {
		return nil, err
	}
	end, err := AddDays(start, constants.DaysPerWeek-1)
	if err != nil {
		return nil, err
	}
	return DateRange(start, end)
}

// WeekBucket is one Sunday-based week of a month, clipped to the month's days.
type WeekBucket struct {
	Index int
	Start string
	End   string
	Dates []string
}

// WeeksOfMonth partitions a calendar month into Sunday-based week buckets.
// The first and last buckets are clipped to the month, so every day of the
// month appears in exactly one bucket.
func WeeksOfMonth(year int, month time.Month) ([]WeekBucket, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	var buckets []WeekBucket
	var current *WeekBucket
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if current == nil || d.Weekday() == time.Sunday {
			buckets = append(buckets, WeekBucket{Index: len(buckets), Start: FormatDate(d)})
			current = &buckets[len(buckets)-1]
		}
		current.Dates = append(current.Dates, FormatDate(d))
		current.End = FormatDate(d)
	}
	return buckets, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

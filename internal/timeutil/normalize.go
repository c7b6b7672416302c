package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	// Timestamps are stored with four-digit years.
	MinYear = 1970
	MaxYear = 9999
)

var ErrInvalidFormat = errors.New("invalid date or time format")

// ToUTCInstant combines a YYYY-MM-DD date and an HH:MM time of day, both read
// as wall-clock values in loc, into a UTC instant. A nil loc means UTC.
func ToUTCInstant(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	dateParts := strings.Split(strings.TrimSpace(dateStr), "-")
	timeParts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(dateParts) != 3 || len(timeParts) != 2 {
		return time.Time{}, fmt.Errorf("%w: date %q time %q", ErrInvalidFormat, dateStr, timeStr)
	}

	values := make([]int, 0, 5)
	for _, part := range append(dateParts, timeParts...) {
		value, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date %q time %q", ErrInvalidFormat, dateStr, timeStr)
		}
		values = append(values, value)
	}
	year, month, day, hour, minute := values[0], values[1], values[2], values[3], values[4]

	if year < MinYear || year > MaxYear {
		return time.Time{}, fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidFormat, year, MinYear, MaxYear)
	}
	if month < 1 || month > 12 || day < 1 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: date %q time %q out of range", ErrInvalidFormat, dateStr, timeStr)
	}
	if day > daysIn(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("%w: date %q does not exist", ErrInvalidFormat, dateStr)
	}

	local := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// Wall times skipped by a DST transition normalize to another hour.
	if local.Hour() != hour || local.Minute() != minute || local.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %s %s does not exist in %s", ErrInvalidFormat, dateStr, timeStr, loc)
	}
	return local.UTC(), nil
}

// WallClock renders instant as the date and time-of-day strings that
// ToUTCInstant accepts for the same location.
func WallClock(instant time.Time, loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.UTC
	}
	local := instant.In(loc)
	return local.Format(DateLayout), local.Format(ClockLayout)
}

// ParseInstant parses an RFC 3339 instant, with or without fractional
// seconds, and returns it in UTC.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: instant %q", ErrInvalidFormat, value)
	}
	return parsed.UTC(), nil
}

// ResolveInstant accepts either a complete RFC 3339 instant in clock, or a
// date plus HH:MM pair that is normalized through ToUTCInstant.
func ResolveInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if strings.Contains(clock, "T") {
		return ParseInstant(clock)
	}
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return ToUTCInstant(day.Format(DateLayout), clock, loc)
}

// ParseDate returns the UTC midnight of the calendar date described by value,
// either YYYY-MM-DD or an instant whose UTC date is taken.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if strings.Contains(value, "T") {
		instant, err := ParseInstant(value)
		if err != nil {
			return time.Time{}, err
		}
		return StartOfDay(instant), nil
	}
	return ToUTCInstant(value, "00:00", time.UTC)
}

// LoadLocation resolves an IANA zone name. Empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

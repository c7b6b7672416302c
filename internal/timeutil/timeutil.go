package timeutil

import "time"

// lastInstantOfDay is the offset from midnight of the last representable
// instant of a calendar day at millisecond precision.
const lastInstantOfDay = 24*time.Hour - time.Millisecond

// StartOfDay returns UTC midnight of the UTC calendar date of value.
func StartOfDay(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59.999 UTC of the UTC calendar date of value.
func EndOfDay(value time.Time) time.Time {
	return StartOfDay(value).Add(lastInstantOfDay)
}

// MondayIndex maps the UTC weekday of value to 0 (Monday) .. 6 (Sunday).
func MondayIndex(value time.Time) int {
	return (int(value.UTC().Weekday()) + 6) % 7
}

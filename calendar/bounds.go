// Package calendar computes UTC day, week and month buckets and groups dated
// records into them.
package calendar

import (
	"fmt"
	"time"

	"worktime/internal/timeutil"
)

type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

// ParseUnit accepts "day", "week" or "month".
func ParseUnit(value string) (Unit, error) {
	switch Unit(value) {
	case UnitDay, UnitWeek, UnitMonth:
		return Unit(value), nil
	default:
		return "", fmt.Errorf("unsupported calendar unit %q", value)
	}
}

// Bucket is a UTC time range. Day and week buckets are closed and end at
// 23:59:59.999; month buckets are half-open and End is the first instant of
// the following month.
type Bucket struct {
	Unit         Unit      `json:"unit"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	EndInclusive bool      `json:"endInclusive"`
}

// Contains reports whether t falls inside the bucket.
func (b Bucket) Contains(t time.Time) bool {
	if t.Before(b.Start) {
		return false
	}
	if b.EndInclusive {
		return !t.After(b.End)
	}
	return t.Before(b.End)
}

// Previous returns the bucket of the same unit immediately before b.
func (b Bucket) Previous() Bucket {
	return Bounds(b.Unit, b.Start, -1)
}

// Next returns the bucket of the same unit immediately after b.
func (b Bucket) Next() Bucket {
	return Bounds(b.Unit, b.Start, 1)
}

// Year and Month identify the calendar month the bucket starts in.
func (b Bucket) Year() int         { return b.Start.Year() }
func (b Bucket) Month() time.Month { return b.Start.Month() }

// DayBounds returns the closed UTC day containing ref.
func DayBounds(ref time.Time) Bucket {
	start := timeutil.StartOfDay(ref)
	return Bucket{
		Unit:         UnitDay,
		Start:        start,
		End:          timeutil.EndOfDay(start),
		EndInclusive: true,
	}
}

// WeekBounds returns the closed Monday..Sunday UTC week containing ref after
// shifting it by offsetWeeks whole weeks.
func WeekBounds(ref time.Time, offsetWeeks int) Bucket {
	shifted := timeutil.StartOfDay(ref).AddDate(0, 0, offsetWeeks*7)
	monday := shifted.AddDate(0, 0, -timeutil.MondayIndex(shifted))
	return Bucket{
		Unit:         UnitWeek,
		Start:        monday,
		End:          timeutil.EndOfDay(monday.AddDate(0, 0, 6)),
		EndInclusive: true,
	}
}

// MonthBounds returns the half-open UTC month. Out of range months roll over
// into the neighbouring years, so month 13 is January of the next year.
func MonthBounds(year, month int) Bucket {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Bucket{
		Unit:  UnitMonth,
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// Bounds returns the bucket of unit containing ref, moved by offset buckets.
func Bounds(unit Unit, ref time.Time, offset int) Bucket {
	switch unit {
	case UnitWeek:
		return WeekBounds(ref, offset)
	case UnitMonth:
		ref = ref.UTC()
		return MonthBounds(ref.Year(), int(ref.Month())+offset)
	default:
		return DayBounds(timeutil.StartOfDay(ref).AddDate(0, 0, offset))
	}
}

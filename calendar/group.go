package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"worktime/internal/timeutil"
)

// Weekday is the lowercase English name of a day, used as a grouping key.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayTokens returns the seven tokens, Monday first.
func WeekdayTokens() []Weekday {
	out := make([]Weekday, len(weekdays))
	copy(out, weekdays[:])
	return out
}

// WeekdayToken returns the token of the UTC weekday of t.
func WeekdayToken(t time.Time) Weekday {
	return weekdays[timeutil.MondayIndex(t)]
}

// Group is one calendar date with the records that fall on it.
type Group[T any] struct {
	Label   string    `json:"label"`
	Date    time.Time `json:"date"`
	Records []T       `json:"records"`
}

// GroupByDate buckets records by the locale label of their UTC date. Groups
// appear in the order their label is first seen and records keep their input
// order. Nothing is re-sorted.
func GroupByDate[T any](records []T, occursOn func(T) time.Time, locale timeutil.Locale) []Group[T] {
	groups := make([]Group[T], 0)
	index := make(map[string]int)
	for _, record := range records {
		day := timeutil.StartOfDay(occursOn(record))
		label := timeutil.DateLabel(day, locale)
		pos, ok := index[label]
		if !ok {
			pos = len(groups)
			index[label] = pos
			groups = append(groups, Group[T]{Label: label, Date: day, Records: make([]T, 0, 4)})
		}
		groups[pos].Records = append(groups[pos].Records, record)
	}
	return groups
}

// Week holds records keyed by weekday. All seven keys are always present.
type Week[T any] struct {
	days [7][]T
}

// NewWeek returns a week with seven empty lists.
func NewWeek[T any]() Week[T] {
	var w Week[T]
	for i := range w.days {
		w.days[i] = make([]T, 0)
	}
	return w
}

// Day returns the records of the given weekday.
func (w Week[T]) Day(day Weekday) []T {
	for i, token := range weekdays {
		if token == day {
			return w.days[i]
		}
	}
	return nil
}

// Len returns the total number of records across all days.
func (w Week[T]) Len() int {
	total := 0
	for _, records := range w.days {
		total += len(records)
	}
	return total
}

// MarshalJSON writes the seven keys in Monday-first order.
func (w Week[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, token := range weekdays {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", token)
		records := w.days[i]
		if records == nil {
			records = []T{}
		}
		encoded, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", token, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a weekday-keyed object. Missing days stay empty.
func (w *Week[T]) UnmarshalJSON(data []byte) error {
	raw := make(map[Weekday][]T, 7)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = NewWeek[T]()
	for i, token := range weekdays {
		if records, ok := raw[token]; ok && records != nil {
			w.days[i] = records
		}
	}
	return nil
}

// GroupByWeekday buckets records by the UTC weekday of occursOn, keeping
// input order within each day.
func GroupByWeekday[T any](records []T, occursOn func(T) time.Time) Week[T] {
	week := NewWeek[T]()
	for _, record := range records {
		i := timeutil.MondayIndex(occursOn(record))
		week.days[i] = append(week.days[i], record)
	}
	return week
}

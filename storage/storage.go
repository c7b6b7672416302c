package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"worktime/calendar"
)

var (
	// ErrNotFound is returned when no row matches, including rows that exist
	// but belong to someone else.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInterval is returned when a write would leave end <= start.
	ErrInvalidInterval = errors.New("end must be after start")
	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("record already exists")
)

// Named CHECK constraints that enforce end > start.
const (
	entryIntervalConstraint = "time_entries_interval"
	taskIntervalConstraint  = "tasks_interval"
)

// IsIntervalConstraint reports whether name, or a driver message naming a
// constraint, refers to one of the end > start checks.
func IsIntervalConstraint(name string) bool {
	return strings.Contains(name, entryIntervalConstraint) || strings.Contains(name, taskIntervalConstraint)
}

// timestampLayout is fixed width so stored text compares in time order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(timestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	parsed, err := time.Parse(timestampLayout, raw)
	if err != nil {
		// Rows written by hand may carry plain RFC 3339.
		parsed, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
	}
	return parsed.UTC(), nil
}

// EntryQuery selects time entries inside a calendar bucket.
type EntryQuery struct {
	// OwnerID limits results to one user. Empty selects every user.
	OwnerID     string
	Range       calendar.Bucket
	NewestFirst bool
}

// TaskQuery selects tasks. A nil Range selects all dates.
type TaskQuery struct {
	// AssigneeID limits results to one user. Empty selects every user.
	AssigneeID string
	Range      *calendar.Bucket
}

func upperBoundOp(b calendar.Bucket) string {
	if b.EndInclusive {
		return "<="
	}
	return "<"
}

package calendar

import (
	"testing"
	"time"
)

func mustParseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	got := DayBounds(mustParseRFC3339(t, "2025-08-05T15:42:10Z"))
	if !got.Start.Equal(mustParseRFC3339(t, "2025-08-05T00:00:00Z")) {
		t.Fatalf("unexpected start %v", got.Start)
	}
	if !got.End.Equal(mustParseRFC3339(t, "2025-08-05T23:59:59.999Z")) {
		t.Fatalf("unexpected end %v", got.End)
	}
	if !got.EndInclusive || got.Unit != UnitDay {
		t.Fatalf("expected closed day bucket, got %+v", got)
	}
}

func TestWeekBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ref    string
		offset int
		start  string
		end    string
	}{
		{name: "wednesday", ref: "2025-08-06T10:00:00Z", start: "2025-08-04T00:00:00Z", end: "2025-08-10T23:59:59.999Z"},
		{name: "monday", ref: "2025-08-04T00:00:00Z", start: "2025-08-04T00:00:00Z", end: "2025-08-10T23:59:59.999Z"},
		{name: "sunday belongs to preceding monday", ref: "2025-08-10T23:00:00Z", start: "2025-08-04T00:00:00Z", end: "2025-08-10T23:59:59.999Z"},
		{name: "next week", ref: "2025-08-06T10:00:00Z", offset: 1, start: "2025-08-11T00:00:00Z", end: "2025-08-17T23:59:59.999Z"},
		{name: "previous week across month", ref: "2025-08-06T10:00:00Z", offset: -1, start: "2025-07-28T00:00:00Z", end: "2025-08-03T23:59:59.999Z"},
		{name: "across year", ref: "2025-12-31T12:00:00Z", start: "2025-12-29T00:00:00Z", end: "2026-01-04T23:59:59.999Z"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := WeekBounds(mustParseRFC3339(t, tc.ref), tc.offset)
			if !got.Start.Equal(mustParseRFC3339(t, tc.start)) {
				t.Fatalf("expected start %s, got %v", tc.start, got.Start)
			}
			if !got.End.Equal(mustParseRFC3339(t, tc.end)) {
				t.Fatalf("expected end %s, got %v", tc.end, got.End)
			}
			if got.Start.Weekday() != time.Monday {
				t.Fatalf("expected monday start, got %s", got.Start.Weekday())
			}
		})
	}
}

func TestWeekBoundsIgnoresCallerZone(t *testing.T) {
	t.Parallel()

	// Monday 01:00 in UTC+3 is Sunday 22:00 UTC, so the week is the previous one.
	ref := time.Date(2025, 8, 11, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	got := WeekBounds(ref, 0)
	if !got.Start.Equal(mustParseRFC3339(t, "2025-08-04T00:00:00Z")) {
		t.Fatalf("unexpected start %v", got.Start)
	}
}

func TestMonthBounds(t *testing.T) {
	t.Parallel()

	got := MonthBounds(2025, 8)
	if !got.Start.Equal(mustParseRFC3339(t, "2025-08-01T00:00:00Z")) || !got.End.Equal(mustParseRFC3339(t, "2025-09-01T00:00:00Z")) {
		t.Fatalf("unexpected august bounds %+v", got)
	}
	if got.EndInclusive {
		t.Fatalf("expected half-open month")
	}

	dec := MonthBounds(2025, 12)
	if !dec.End.Equal(mustParseRFC3339(t, "2026-01-01T00:00:00Z")) {
		t.Fatalf("unexpected december end %v", dec.End)
	}
}

func TestMonthBoundsContiguous(t *testing.T) {
	t.Parallel()

	for month := 1; month <= 24; month++ {
		current := MonthBounds(2024, month)
		next := MonthBounds(2024, month+1)
		if !current.End.Equal(next.Start) {
			t.Fatalf("month %d: end %v does not meet next start %v", month, current.End, next.Start)
		}
	}

	if got := MonthBounds(2025, 0); !got.Start.Equal(mustParseRFC3339(t, "2024-12-01T00:00:00Z")) {
		t.Fatalf("expected month 0 to roll back, got %v", got.Start)
	}
}

func TestMonthExcludesNextMonthStart(t *testing.T) {
	t.Parallel()

	bucket := MonthBounds(2025, 8)
	if bucket.Contains(mustParseRFC3339(t, "2025-09-01T00:00:00Z")) {
		t.Fatalf("september 1st must not be in august")
	}
	if !bucket.Contains(mustParseRFC3339(t, "2025-08-31T23:59:59.999Z")) {
		t.Fatalf("last august instant must be in august")
	}
}

func TestDayContainsEnd(t *testing.T) {
	t.Parallel()

	bucket := DayBounds(mustParseRFC3339(t, "2025-08-05T12:00:00Z"))
	if !bucket.Contains(bucket.End) {
		t.Fatalf("closed bucket must contain its end")
	}
	if bucket.Contains(mustParseRFC3339(t, "2025-08-06T00:00:00Z")) {
		t.Fatalf("next midnight must not be in the day")
	}
}

func TestBucketNavigation(t *testing.T) {
	t.Parallel()

	month := MonthBounds(2025, 1)
	if prev := month.Previous(); prev.Year() != 2024 || prev.Month() != time.December {
		t.Fatalf("unexpected previous month %v", prev.Start)
	}
	if next := month.Next(); next.Month() != time.February {
		t.Fatalf("unexpected next month %v", next.Start)
	}

	week := WeekBounds(mustParseRFC3339(t, "2025-08-06T00:00:00Z"), 0)
	if !week.Next().Start.Equal(WeekBounds(week.Start, 1).Start) {
		t.Fatalf("unexpected next week %v", week.Next().Start)
	}

	day := DayBounds(mustParseRFC3339(t, "2025-03-01T00:00:00Z"))
	if !day.Previous().Start.Equal(mustParseRFC3339(t, "2025-02-28T00:00:00Z")) {
		t.Fatalf("unexpected previous day %v", day.Previous().Start)
	}
}

func TestParseUnit(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"day", "week", "month"} {
		if _, err := ParseUnit(value); err != nil {
			t.Fatalf("ParseUnit(%q): %v", value, err)
		}
	}
	if _, err := ParseUnit("year"); err == nil {
		t.Fatalf("expected error for year")
	}
}

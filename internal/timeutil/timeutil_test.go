package timeutil

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 14, 37, 9, 123, time.UTC)
	got := StartOfDay(input)

	if !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected UTC midnight, got %v", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}

func TestStartOfDayUsesUTCDate(t *testing.T) {
	t.Parallel()

	// 01:30 in UTC+2 is still the previous UTC day.
	input := time.Date(2026, 3, 2, 1, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	got := StartOfDay(input)
	if !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 2026-03-01 UTC, got %v", got)
	}
}

func TestEndOfDay(t *testing.T) {
	t.Parallel()

	got := EndOfDay(time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC))
	want := time.Date(2025, 8, 5, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMondayIndex(t *testing.T) {
	t.Parallel()

	// 2025-08-04 is a Monday.
	for offset := 0; offset < 7; offset++ {
		day := time.Date(2025, 8, 4+offset, 12, 0, 0, 0, time.UTC)
		if got := MondayIndex(day); got != offset {
			t.Fatalf("%s: expected index %d, got %d", day.Weekday(), offset, got)
		}
	}
}

func TestToUTCInstant(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CEST", 2*3600)
	tests := []struct {
		name  string
		date  string
		clock string
		loc   *time.Location
		want  time.Time
	}{
		{name: "utc", date: "2025-08-05", clock: "09:00", loc: nil, want: time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC)},
		{name: "offset", date: "2025-08-05", clock: "09:00", loc: berlin, want: time.Date(2025, 8, 5, 7, 0, 0, 0, time.UTC)},
		{name: "previous utc day", date: "2025-08-05", clock: "01:15", loc: berlin, want: time.Date(2025, 8, 4, 23, 15, 0, 0, time.UTC)},
		{name: "leap day", date: "2024-02-29", clock: "23:59", loc: time.UTC, want: time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToUTCInstant(tc.date, tc.clock, tc.loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got.Location() != time.UTC {
				t.Fatalf("expected UTC result, got %v", got.Location())
			}
		})
	}
}

func TestToUTCInstantRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date  string
		clock string
	}{
		{"garbage", "09:00"},
		{"2025-08-05", "9"},
		{"2025-08", "09:00"},
		{"2025-aa-05", "09:00"},
		{"2025-08-05", "09:xx"},
		{"2025-13-01", "09:00"},
		{"2025-02-30", "09:00"},
		{"2025-08-05", "24:00"},
		{"2025-08-05", "09:60"},
		{"", ""},
	}

	for _, tc := range tests {
		if _, err := ToUTCInstant(tc.date, tc.clock, time.UTC); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("ToUTCInstant(%q, %q): expected ErrInvalidFormat, got %v", tc.date, tc.clock, err)
		}
	}
}

func TestWallClockRoundTrip(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	for _, loc := range []*time.Location{time.UTC, berlin, newYork} {
		for _, pair := range [][2]string{{"2025-08-05", "09:00"}, {"2025-01-31", "23:45"}, {"2024-02-29", "00:00"}} {
			instant, err := ToUTCInstant(pair[0], pair[1], loc)
			if err != nil {
				t.Fatalf("%s %v: %v", loc, pair, err)
			}
			date, clock := WallClock(instant, loc)
			if date != pair[0] || clock != pair[1] {
				t.Fatalf("%s: expected %v, got %s %s", loc, pair, date, clock)
			}
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)

	for _, value := range []string{
		"2025-08-05",
		"2025-08-05T00:00:00.000Z",
		"2025-08-05T23:00:00Z",
	} {
		got, err := ParseDate(value)
		if err != nil || !got.Equal(want) {
			t.Fatalf("ParseDate(%q): expected %v, got %v (%v)", value, want, got, err)
		}
	}

	// The UTC date wins even when the sender's offset puts it on another day.
	got, err := ParseDate("2025-08-04T22:00:00-04:00")
	if err != nil || !got.Equal(want) {
		t.Fatalf("offset instant: expected %v, got %v (%v)", want, got, err)
	}

	if _, err := ParseDate("05.08.2025"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestToUTCInstantRejectsYearsOutsideStorableRange(t *testing.T) {
	t.Parallel()

	for _, date := range []string{"10000-01-01", "1969-12-31", "0-01-01"} {
		if _, err := ToUTCInstant(date, "09:00", nil); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("ToUTCInstant(%q): expected ErrInvalidFormat, got %v", date, err)
		}
	}
	if _, err := ToUTCInstant("9999-12-31", "23:59", nil); err != nil {
		t.Fatalf("expected last storable day to be accepted: %v", err)
	}
}

func TestToUTCInstantRejectsSkippedWallTime(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	if _, err := ToUTCInstant("2025-03-30", "02:30", berlin); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for a time inside the DST gap, got %v", err)
	}

	instant, err := ToUTCInstant("2025-03-30", "03:30", berlin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if date, clock := WallClock(instant, berlin); date != "2025-03-30" || clock != "03:30" {
		t.Fatalf("expected round trip, got %s %s", date, clock)
	}
}

func TestResolveInstant(t *testing.T) {
	t.Parallel()

	got, err := ResolveInstant("2025-08-05", "2025-08-05T07:00:00Z", nil)
	if err != nil || !got.Equal(time.Date(2025, 8, 5, 7, 0, 0, 0, time.UTC)) {
		t.Fatalf("instant clock: got %v (%v)", got, err)
	}

	got, err = ResolveInstant("2025-08-05", "09:30", time.FixedZone("CEST", 2*3600))
	if err != nil || !got.Equal(time.Date(2025, 8, 5, 7, 30, 0, 0, time.UTC)) {
		t.Fatalf("wall clock: got %v (%v)", got, err)
	}
}

func TestDateLabel(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)
	if got := DateLabel(day, LocaleGerman); got != "Dienstag, 5. August 2025" {
		t.Fatalf("unexpected german label %q", got)
	}
	if got := DateLabel(day, LocaleEnglish); got != "Tuesday, August 5, 2025" {
		t.Fatalf("unexpected english label %q", got)
	}
}

func TestParseLocale(t *testing.T) {
	t.Parallel()

	cases := map[string]Locale{
		"":      LocaleGerman,
		"de":    LocaleGerman,
		"EN":    LocaleEnglish,
		"de-DE": LocaleGerman,
		"en_US": LocaleEnglish,
	}
	for input, want := range cases {
		got, err := ParseLocale(input)
		if err != nil || got != want {
			t.Fatalf("ParseLocale(%q): expected %q, got %q (%v)", input, want, got, err)
		}
	}
	if _, err := ParseLocale("xx_YY"); err == nil {
		t.Fatalf("expected error for unknown locale")
	}
}

func TestToLocalDisplay(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 8, 4, 23, 15, 0, 0, time.UTC)
	got := ToLocalDisplay(instant, time.FixedZone("CEST", 2*3600), LocaleGerman)
	if got.Date != "2025-08-05" || got.Time != "01:15" || got.DateLabel != "Dienstag, 5. August 2025" {
		t.Fatalf("unexpected display %+v", got)
	}
}

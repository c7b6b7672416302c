package timeutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// Locale selects the language of rendered month and weekday names.
type Locale string

const (
	LocaleGerman  Locale = Locale(monday.LocaleDeDE)
	LocaleEnglish Locale = Locale(monday.LocaleEnUS)

	DefaultLocale = LocaleGerman
)

const (
	germanDateLabel  = "Monday, 2. January 2006"
	englishDateLabel = "Monday, January 2, 2006"
)

// ParseLocale accepts short tags ("de", "en") as well as full ones ("de_DE",
// "en-GB").
func ParseLocale(value string) (Locale, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), "-", "_")
	switch strings.ToLower(value) {
	case "":
		return DefaultLocale, nil
	case "de":
		return LocaleGerman, nil
	case "en":
		return LocaleEnglish, nil
	}
	for _, known := range monday.ListLocales() {
		if strings.EqualFold(string(known), value) {
			return Locale(known), nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q", value)
}

// DateLabel renders the UTC calendar date of day, e.g.
// "Dienstag, 5. August 2025" or "Tuesday, August 5, 2025".
func DateLabel(day time.Time, locale Locale) string {
	if locale == "" {
		locale = DefaultLocale
	}
	layout := englishDateLabel
	if strings.HasPrefix(strings.ToLower(string(locale)), "de") {
		layout = germanDateLabel
	}
	return monday.Format(day.UTC(), layout, monday.Locale(locale))
}

// Display is a stored instant rendered for a viewer.
type Display struct {
	Date      string `json:"date"`
	DateLabel string `json:"dateLabel"`
	Time      string `json:"time"`
}

// ToLocalDisplay renders instant in the viewer's location and locale.
func ToLocalDisplay(instant time.Time, loc *time.Location, locale Locale) Display {
	date, clock := WallClock(instant, loc)
	local := instant
	if loc != nil {
		local = instant.In(loc)
	}
	labelDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return Display{
		Date:      date,
		DateLabel: DateLabel(labelDay, locale),
		Time:      clock,
	}
}

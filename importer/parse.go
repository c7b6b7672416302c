package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"worktime/internal/timeutil"
)

var dateLayouts = []string{
	timeutil.DateLayout,
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
}

var clockLayouts = []string{
	timeutil.ClockLayout,
	"15:04:05",
	"3:04 PM",
	"03:04 PM",
	"15.04",
}

// normalizeDate rewrites a spreadsheet date to YYYY-MM-DD.
func normalizeDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(timeutil.DateLayout), nil
		}
	}
	if instant, err := timeutil.ParseInstant(value); err == nil {
		return instant.Format(timeutil.DateLayout), nil
	}
	return "", fmt.Errorf("unsupported date format: %q", raw)
}

// normalizeClock rewrites a wall-clock time to HH:MM. Complete RFC 3339
// instants pass through unchanged.
func normalizeClock(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("missing time")
	}
	if strings.Contains(value, "T") {
		if _, err := timeutil.ParseInstant(value); err != nil {
			return "", fmt.Errorf("unsupported time format: %q", raw)
		}
		return value, nil
	}
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, strings.ToUpper(value)); err == nil {
			return parsed.Format(timeutil.ClockLayout), nil
		}
	}
	return "", fmt.Errorf("unsupported time format: %q", raw)
}

// parseDecimalHoursToMinutes accepts "1.5", "1,5" and "1.234,5".
func parseDecimalHoursToMinutes(raw string) (int, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("missing hours")
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	minutes := int(math.Round(hours * 60))
	if minutes <= 0 {
		return 0, fmt.Errorf("hours must be positive")
	}
	return minutes, nil
}

// addMinutes returns the HH:MM clock minutes after start on the same day.
func addMinutes(start string, minutes int) (string, error) {
	parsed, err := time.Parse(timeutil.ClockLayout, start)
	if err != nil {
		return "", fmt.Errorf("start %q is not a wall-clock time", start)
	}
	total := parsed.Hour()*60 + parsed.Minute() + minutes
	if total >= 24*60 {
		return "", fmt.Errorf("entry starting %s with %d minutes crosses midnight", start, minutes)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"worktime/calendar"
	"worktime/internal/timeutil"
	"worktime/worklog"
)

// DailySummary condenses one user's entries of one calendar date.
type DailySummary struct {
	Date        time.Time
	Label       string
	Owner       worklog.Owner
	FirstStart  time.Time
	LastEnd     time.Time
	WorkedHours float64
	BreakHours  float64
	EntryCount  int
}

type interval struct {
	start time.Time
	end   time.Time
}

// BuildDailySummaries returns one summary per user and date, ordered by user
// name and then date.
func BuildDailySummaries(entries []worklog.EntryWithOwner, locale timeutil.Locale) []DailySummary {
	if len(entries) == 0 {
		return []DailySummary{}
	}

	sorted := append([]worklog.EntryWithOwner(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Owner.Name != b.Owner.Name {
			return a.Owner.Name < b.Owner.Name
		}
		if a.OwnerID != b.OwnerID {
			return a.OwnerID < b.OwnerID
		}
		if !a.OccursOn.Equal(b.OccursOn) {
			return a.OccursOn.Before(b.OccursOn)
		}
		return a.StartAt.Before(b.StartAt)
	})

	summaries := make([]DailySummary, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].OwnerID == sorted[start].OwnerID {
			end++
		}
		groups := calendar.GroupByDate(sorted[start:end], func(e worklog.EntryWithOwner) time.Time { return e.OccursOn }, locale)
		for _, group := range groups {
			summaries = append(summaries, summarizeDay(group))
		}
		start = end
	}
	return summaries
}

func summarizeDay(group calendar.Group[worklog.EntryWithOwner]) DailySummary {
	summary := DailySummary{
		Date:       group.Date,
		Label:      group.Label,
		Owner:      group.Records[0].Owner,
		EntryCount: len(group.Records),
	}

	worked := time.Duration(0)
	intervals := make([]interval, 0, len(group.Records))
	for i, entry := range group.Records {
		if i == 0 || entry.StartAt.Before(summary.FirstStart) {
			summary.FirstStart = entry.StartAt
		}
		if i == 0 || entry.EndAt.After(summary.LastEnd) {
			summary.LastEnd = entry.EndAt
		}
		worked += entry.Duration()
		intervals = append(intervals, interval{start: entry.StartAt, end: entry.EndAt})
	}

	breaks := summary.LastEnd.Sub(summary.FirstStart) - mergedCoverage(intervals)
	if breaks < 0 {
		breaks = 0
	}
	summary.WorkedHours = roundHours(worked.Hours())
	summary.BreakHours = roundHours(breaks.Hours())
	return summary
}

// mergedCoverage is the total length of the union of intervals.
func mergedCoverage(intervals []interval) time.Duration {
	if len(intervals) == 0 {
		return 0
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	covered := time.Duration(0)
	current := intervals[0]
	for _, next := range intervals[1:] {
		if next.start.After(current.end) {
			covered += current.end.Sub(current.start)
			current = next
			continue
		}
		if next.end.After(current.end) {
			current.end = next.end
		}
	}
	return covered + current.end.Sub(current.start)
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

var summaryHeaders = []string{"User", "Date", "Day", "FirstStart", "LastEnd", "WorkedHours", "BreakHours", "Entries"}

// SummaryTable renders daily summaries with wall-clock times in loc.
func SummaryTable(summaries []DailySummary, loc *time.Location) Table {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		_, first := timeutil.WallClock(summary.FirstStart, loc)
		_, last := timeutil.WallClock(summary.LastEnd, loc)
		rows = append(rows, []string{
			summary.Owner.Name,
			summary.Date.Format(timeutil.DateLayout),
			summary.Label,
			first,
			last,
			fmt.Sprintf("%.2f", summary.WorkedHours),
			fmt.Sprintf("%.2f", summary.BreakHours),
			strconv.Itoa(summary.EntryCount),
		})
	}
	return Table{Name: "Daily", Headers: summaryHeaders, Rows: rows}
}

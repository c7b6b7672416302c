package output

import (
	"fmt"
	"strconv"
	"time"

	"worktime/internal/timeutil"
	"worktime/worklog"
)

var entryHeaders = []string{"ID", "User", "Email", "Date", "Start", "End", "Hours", "Description"}

// EntryTable renders one row per entry with wall-clock times in loc.
func EntryTable(entries []worklog.EntryWithOwner, loc *time.Location) Table {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		_, start := timeutil.WallClock(entry.StartAt, loc)
		_, end := timeutil.WallClock(entry.EndAt, loc)
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Owner.Name,
			entry.Owner.Email,
			entry.OccursOn.UTC().Format(timeutil.DateLayout),
			start,
			end,
			fmt.Sprintf("%.2f", roundHours(entry.Duration().Hours())),
			entry.Description,
		})
	}
	return Table{Name: "Worklog", Headers: entryHeaders, Rows: rows}
}

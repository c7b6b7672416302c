package importer

import (
	"fmt"

	"worktime/service"
)

// Column aliases accepted in import headers, English and German.
var (
	dateColumns        = []string{"date", "datum", "day", "tag"}
	startColumns       = []string{"start", "starttime", "begin", "beginn", "von", "from"}
	endColumns         = []string{"end", "endtime", "finish", "ende", "bis", "to"}
	hoursColumns       = []string{"hours", "duration", "stunden", "dauer"}
	descriptionColumns = []string{"description", "beschreibung", "comment", "kommentar", "notes", "task"}
)

// MapRecord turns one row into an entry input. Blank rows return ok=false.
// End may be replaced by a decimal hours column.
func MapRecord(record Record) (service.EntryInput, bool, error) {
	if record.Blank() {
		return service.EntryInput{}, false, nil
	}

	date, err := normalizeDate(record.Get(dateColumns...))
	if err != nil {
		return service.EntryInput{}, false, fmt.Errorf("row %d: %w", record.RowNumber, err)
	}
	start, err := normalizeClock(record.Get(startColumns...))
	if err != nil {
		return service.EntryInput{}, false, fmt.Errorf("row %d: start: %w", record.RowNumber, err)
	}

	var end string
	if raw := record.Get(endColumns...); raw != "" {
		end, err = normalizeClock(raw)
		if err != nil {
			return service.EntryInput{}, false, fmt.Errorf("row %d: end: %w", record.RowNumber, err)
		}
	} else {
		minutes, err := parseDecimalHoursToMinutes(record.Get(hoursColumns...))
		if err != nil {
			return service.EntryInput{}, false, fmt.Errorf("row %d: end or hours required: %w", record.RowNumber, err)
		}
		if end, err = addMinutes(start, minutes); err != nil {
			return service.EntryInput{}, false, fmt.Errorf("row %d: %w", record.RowNumber, err)
		}
	}

	return service.EntryInput{
		Description: record.Get(descriptionColumns...),
		Date:        date,
		StartTime:   start,
		EndTime:     end,
	}, true, nil
}

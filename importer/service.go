// Package importer reads worklog rows from CSV and Excel files and maps them
// to time entry inputs.
package importer

import (
	"go.uber.org/zap"

	"worktime/internal/logger"
	"worktime/service"
)

type Row struct {
	Source    string
	RowNumber int
	Input     service.EntryInput
}

type Result struct {
	FilesProcessed int
	RowsRead       int
	RowsMapped     int
	RowsSkipped    int
	Rows           []Row
}

// Run reads every path and maps its rows. The first malformed row aborts
// the run so nothing is half-imported.
func Run(paths []string, format string) (*Result, error) {
	result := &Result{Rows: make([]Row, 0, 256)}
	for _, path := range paths {
		sourceFormat, err := inferFormat(path, format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}
		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			input, ok, err := MapRecord(record)
			if err != nil {
				return nil, err
			}
			if !ok {
				result.RowsSkipped++
				continue
			}
			result.RowsMapped++
			result.Rows = append(result.Rows, Row{Source: path, RowNumber: record.RowNumber, Input: input})
		}
		logger.Info("import file read", zap.String("path", path), zap.String("format", sourceFormat), zap.Int("rows", len(records)))
	}
	return result, nil
}

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVReader reads comma or semicolon separated files with a header row.
type CSVReader struct{}

func (r *CSVReader) Read(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(input io.ReadSeeker) ([]Record, error) {
	reader := csv.NewReader(input)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	// German spreadsheet exports use semicolons.
	if len(headers) == 1 {
		if _, err := input.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind csv: %w", err)
		}
		reader = csv.NewReader(input)
		reader.FieldsPerRecord = -1
		reader.Comma = ';'
		if headers, err = reader.Read(); err != nil {
			return nil, fmt.Errorf("read csv header: %w", err)
		}
	}

	normalized := normalizeHeaders(headers)
	records := make([]Record, 0, 128)
	for rowNumber := 2; ; rowNumber++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber, err)
		}
		records = append(records, recordFromRow(rowNumber, normalized, row))
	}
	return records, nil
}

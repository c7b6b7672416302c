package importer

import (
	"strings"
)

// Record is one data row keyed by normalized header names.
type Record struct {
	RowNumber int
	Values    map[string]string
}

// Get returns the first non-missing value among keys.
func (r Record) Get(keys ...string) string {
	for _, key := range keys {
		if value, ok := r.Values[normalizeHeader(key)]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Blank reports whether every cell of the row is empty.
func (r Record) Blank() bool {
	for _, value := range r.Values {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimPrefix(input, "\ufeff")
	trimmed = strings.TrimSpace(strings.ToLower(trimmed))
	return strings.NewReplacer("_", "", "-", "", " ", "", ".", "").Replace(trimmed)
}

func recordFromRow(rowNumber int, headers, row []string) Record {
	values := make(map[string]string, len(headers))
	for col, header := range headers {
		if header == "" {
			continue
		}
		if col < len(row) {
			values[header] = row[col]
		} else {
			values[header] = ""
		}
	}
	return Record{RowNumber: rowNumber, Values: values}
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, header := range headers {
		out[i] = normalizeHeader(header)
	}
	return out
}

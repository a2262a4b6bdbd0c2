// Package csvmap converts parsed CSV tables into domain entities under a
// declarative per-kind schema: auto-detected column mapping, required-field
// validation, and append/overwrite commit semantics.
package csvmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tesseralabs/tessera/internal/errors"
)

// Field describes one logical column a kind needs.
type Field struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Optional bool   `json:"optional"`
}

// Schema is the declarative import configuration for one kind.
type Schema struct {
	// Fields is the ordered list of logical columns.
	Fields []Field

	// AutoMapPatterns maps field keys to case-insensitive substring patterns
	// used to guess which CSV header corresponds to that field.
	AutoMapPatterns map[string][]string

	// RequiredFields is the subset of field keys that must be mapped to a
	// column and non-blank in every row.
	RequiredFields []string
}

// Row maps a header name to the raw cell value for one CSV record.
type Row map[string]string

// Table is a parsed CSV: ordered headers plus one Row per record.
type Table struct {
	Headers []string
	Rows    []Row
}

// Parse reads CSV text into a Table. The first record is the header row;
// headers and values are whitespace-trimmed. Records shorter than the header
// row leave the missing cells blank; longer records drop the extras.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("failed to parse CSV: %v", err))
	}
	if len(records) == 0 {
		return nil, errors.NewValidation("CSV has no header row")
	}

	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// AutoMap proposes a column mapping: for each field, the first header whose
// lowercase form contains any of the field's patterns. Unmatched fields map
// to the empty string for manual selection.
func AutoMap(headers []string, patterns map[string][]string) map[string]string {
	mapping := make(map[string]string, len(patterns))
	for field, fieldPatterns := range patterns {
		mapping[field] = ""
		for _, header := range headers {
			if headerMatches(header, fieldPatterns) {
				mapping[field] = header
				break
			}
		}
	}
	return mapping
}

func headerMatches(header string, patterns []string) bool {
	lower := strings.ToLower(header)
	for _, pattern := range patterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// InvalidRow records a row excluded from import, with one issue per missing
// required field. Index is 1-based to match how users count CSV data rows.
type InvalidRow struct {
	Index  int      `json:"index"`
	Issues []string `json:"issues"`
	Row    Row      `json:"row"`
}

// Validate partitions rows into those with a non-blank value for every
// required field and those missing one or more. Invalid rows are excluded
// without aborting the import.
func Validate(rows []Row, required []string, mapping map[string]string) (valid []Row, invalid []InvalidRow) {
	for i, row := range rows {
		var issues []string
		for _, field := range required {
			column := mapping[field]
			if column == "" || strings.TrimSpace(row[column]) == "" {
				issues = append(issues, fmt.Sprintf("Missing %s", field))
			}
		}
		if len(issues) > 0 {
			invalid = append(invalid, InvalidRow{Index: i + 1, Issues: issues, Row: row})
			continue
		}
		valid = append(valid, row)
	}
	return valid, invalid
}

// CheckRequiredMapped verifies that every required field has a column mapping
// before import proceeds.
func CheckRequiredMapped(schema Schema, mapping map[string]string) error {
	var missing []string
	for _, field := range schema.RequiredFields {
		if mapping[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return errors.NewValidation(fmt.Sprintf("required fields not mapped to a column: %s", strings.Join(missing, ", ")))
	}
	return nil
}

package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"catalog-service/internal/textnorm"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyFile is returned when a file holds no data rows.
	ErrEmptyFile = errors.New("the file contains no data rows")
	// ErrNoSheets is returned when no spreadsheet sheet matches the sheet filter.
	ErrNoSheets = errors.New("no matching sheets found in spreadsheet")
)

// RawRow is one data row keyed by its trimmed column label.
type RawRow struct {
	// Index is the 1-based row number the user sees in the file. Row 1 is the header.
	Index int
	Sheet string
	Cells map[string]string
}

const utf8BOM = "\ufeff"

// Sheets that hold guidance rather than data are skipped unless explicitly selected.
var instructionSheets = map[string]bool{
	"instructions": true,
	"huong dan":    true,
}

func normalizeHeader(label string) string {
	label = strings.TrimSpace(strings.TrimPrefix(label, utf8BOM))
	// Remove required marker if present
	return strings.TrimSpace(strings.TrimSuffix(label, "*"))
}

func buildRow(index int, sheet string, headers, record []string) (RawRow, bool) {
	row := RawRow{Index: index, Sheet: sheet, Cells: make(map[string]string, len(headers))}
	hasValue := false
	for i, value := range record {
		if i >= len(headers) || headers[i] == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if value != "" {
			hasValue = true
		}
		// Duplicated headers: the first non-empty cell wins.
		if existing := row.Cells[headers[i]]; existing != "" {
			continue
		}
		row.Cells[headers[i]] = value
	}
	return row, hasValue
}

// ParseCSV decodes a CSV buffer whose first record is the header row.
func ParseCSV(data []byte) ([]RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = normalizeHeader(headers[i])
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if row, ok := buildRow(line, "", headers, record); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseSpreadsheet decodes every sheet of an xlsx workbook. When sheetFilter is
// non-empty only the named sheets (case-insensitive) are read.
func ParseSpreadsheet(data []byte, sheetFilter []string) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := selectSheets(f.GetSheetList(), sheetFilter)
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	var rows []RawRow
	for _, sheet := range sheets {
		excelRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(excelRows) < 2 {
			continue
		}

		headers := make([]string, len(excelRows[0]))
		for i, h := range excelRows[0] {
			headers[i] = normalizeHeader(h)
		}
		for i, record := range excelRows[1:] {
			// +2: 1-indexed and the header occupies row 1
			if row, ok := buildRow(i+2, sheet, headers, record); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

func selectSheets(all, filter []string) []string {
	if len(filter) == 0 {
		var out []string
		for _, name := range all {
			if !instructionSheets[textnorm.Fold(name)] {
				out = append(out, name)
			}
		}
		return out
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		if name = strings.TrimSpace(name); name != "" {
			wanted[strings.ToLower(name)] = true
		}
	}
	var out []string
	for _, name := range all {
		if wanted[strings.ToLower(strings.TrimSpace(name))] {
			out = append(out, name)
		}
	}
	return out
}

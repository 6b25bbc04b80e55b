// Package sheet decodes uploaded spreadsheet bytes into a plain 2D grid of
// cell strings and encodes grids back to XLSX. All higher layers (importer,
// template extractor, exporter) work on the Grid type and never touch the
// container formats directly.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Grid is a rectangularish table of raw cell values. Rows may have
// different lengths; consumers index defensively.
type Grid [][]string

// ParseError reports structurally unreadable file bytes. Per-row problems
// are never ParseErrors; those are recoverable and handled downstream.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode picks a decoder from the file extension. ".csv" gets the CSV
// reader; everything else is treated as an Excel workbook. Legacy binary
// .xls files are not readable and surface as a ParseError.
func Decode(filename string, data []byte) (Grid, string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		g, err := DecodeCSV(data)
		return g, "", err
	}
	return DecodeXLSX(data)
}

// DecodeXLSX reads the first sheet of an Excel workbook into a Grid and
// returns the sheet name alongside it.
func DecodeXLSX(data []byte) (Grid, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", &ParseError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", &ParseError{Format: "xlsx", Err: fmt.Errorf("workbook has no sheets")}
	}
	name := sheets[0]

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, "", &ParseError{Format: "xlsx", Err: err}
	}

	grid := make(Grid, len(rows))
	for i, row := range rows {
		out := make([]string, len(row))
		for j, cell := range row {
			out[j] = CleanCell(cell)
		}
		grid[i] = out
	}
	return grid, name, nil
}

// DecodeCSV reads CSV bytes into a Grid. Ragged rows and lazy quotes are
// tolerated; invalid UTF-8 is replaced rather than rejected, since exports
// from older tools routinely carry Windows-1252 bytes.
func DecodeCSV(data []byte) (Grid, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: err}
	}

	grid := make(Grid, len(records))
	for i, row := range records {
		out := make([]string, len(row))
		for j, cell := range row {
			out[j] = CleanCell(cell)
		}
		grid[i] = out
	}
	return grid, nil
}

// EncodeXLSX builds a single-sheet workbook from rows. The sheet name
// defaults to "Listings" when empty.
func EncodeXLSX(sheetName string, rows [][]string) ([]byte, error) {
	if sheetName == "" {
		sheetName = "Listings"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="value"), and stray
// wrapping quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// IsEmptyRow reports whether every cell is blank after trimming.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD so the CSV
// reader never chokes on legacy encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

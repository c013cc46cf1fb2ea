package dataprocessing

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbookFile reads the first sheet of an .xlsx file on disk.
func ParseWorkbookFile(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return readFirstSheet(f)
}

// ParseWorkbook reads the first sheet of an .xlsx document. The first row
// holds the headers; fully blank rows are skipped.
func ParseWorkbook(r io.Reader) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()
	return readFirstSheet(f)
}

// ParseWorkbookBytes is ParseWorkbook over an in-memory upload.
func ParseWorkbookBytes(content []byte) (*RawTable, error) {
	if len(content) == 0 {
		return nil, ErrEmptyTable
	}
	return ParseWorkbook(bytes.NewReader(content))
}

func readFirstSheet(f *excelize.File) (*RawTable, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	headers := uniqueHeaders(rows[0])
	table := &RawTable{Headers: headers}
	for r, row := range rows[1:] {
		raw := make(RawRow, len(headers))
		blank := true
		for c, h := range headers {
			if c >= len(row) || strings.TrimSpace(row[c]) == "" {
				raw[h] = EmptyCell()
				continue
			}
			blank = false
			// Data rows start on sheet row 2.
			raw[h] = classifyCell(f, sheet, c+1, r+2, row[c])
		}
		if !blank {
			table.Rows = append(table.Rows, raw)
		}
	}
	if len(table.Rows) == 0 {
		return nil, ErrEmptyTable
	}

	slog.Debug("Workbook read",
		slog.String("sheet_name", sheet),
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// classifyCell keeps numeric and date typed cells as numbers so date
// serials reach the serial fallback; shared and inline strings stay text.
func classifyCell(f *excelize.File, sheet string, col, row int, value string) Cell {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return StringCell(value)
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return StringCell(value)
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return NumberCell(n)
		}
	}
	return StringCell(value)
}

// uniqueHeaders names blank headers "Unnamed: N" and suffixes repeats with ".1", ".2".
func uniqueHeaders(row []string) []string {
	seen := make(map[string]int, len(row))
	out := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

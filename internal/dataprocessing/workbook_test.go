package dataprocessing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows (first row = headers) into the default sheet.
func buildWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	return f
}

func TestParseWorkbookBytes(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{
		{"SO Date", "SO Total CBM", "SI Date", "Warehouse"},
		{"15/09/2025", 22.123456, 44927, "North"},
		{nil, nil, nil, nil},
		{"16/09/2025", "1,000", time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC), nil},
	})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ParseWorkbookBytes(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"SO Date", "SO Total CBM", "SI Date", "Warehouse"}, table.Headers)
	require.Len(t, table.Rows, 2, "blank rows are skipped")

	first := table.Rows[0]
	assert.Equal(t, CellString, first["SO Date"].Kind)
	assert.Equal(t, CellNumber, first["SO Total CBM"].Kind)
	assert.InDelta(t, 22.123456, first["SO Total CBM"].Num, 1e-9)
	assert.Equal(t, CellNumber, first["SI Date"].Kind)
	assert.Equal(t, 44927.0, first["SI Date"].Num)
	assert.Equal(t, "North", first["Warehouse"].String())

	second := table.Rows[1]
	assert.Equal(t, CellString, second["SO Total CBM"].Kind)
	assert.True(t, second["Warehouse"].IsEmpty())

	ds, err := BuildDataset(table)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", ds.Records[0].InvoiceDate.String())
	assert.Equal(t, "2025-09-18", ds.Records[1].InvoiceDate.String())
	assert.Equal(t, 1000.0, ds.Records[1].OrderVolume.Value)
}

func TestParseWorkbookFile(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{
		{"SO Date", "SO Total CBM", "SI Date"},
		{"2025-09-15", 1.5, "2025-09-16"},
	})
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := ParseWorkbookFile(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1.5, table.Rows[0]["SO Total CBM"].Num)
}

func TestParseWorkbookEmpty(t *testing.T) {
	_, err := ParseWorkbookBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	headersOnly := buildWorkbook(t, [][]interface{}{{"SO Date", "SI Date"}})
	buf, err := headersOnly.WriteToBuffer()
	require.NoError(t, err)
	_, err = ParseWorkbookBytes(buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptyTable)

	blank := excelize.NewFile()
	buf, err = blank.WriteToBuffer()
	require.NoError(t, err)
	_, err = ParseWorkbookBytes(buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseWorkbookRejectsNonWorkbook(t *testing.T) {
	_, err := ParseWorkbookBytes([]byte("SO Date,SI Date\n2025-09-15,2025-09-16\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyTable)
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{"Qty", " ", "Qty", "Qty", "Date "})
	assert.Equal(t, []string{"Qty", "Unnamed: 1", "Qty.1", "Qty.2", "Date"}, got)
}

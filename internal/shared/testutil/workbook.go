package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ScenarioHeaders and ScenarioRows describe three orders placed on
// 2025-09-15 and invoiced on the three following days.
var (
	ScenarioHeaders = []string{"SO Date", "SO Total CBM", "Sales Order Qty", "SI Date", "SI Total CBM", "Sales Invoice Qty", "Warehouse"}
	ScenarioRows    = [][]any{
		{"2025-09-15", 22.123456, 10, "2025-09-16", 20.5, 9, "North"},
		{"2025-09-15", 33.456789, 5, "2025-09-17", 30.25, 5, "South"},
		{"2025-09-15", 10.437627, 2, "2025-09-18", 10, 2, "North"},
	}
)

// WorkbookBytes renders headers and rows into an in-memory .xlsx document.
// Nil cells are left blank.
func WorkbookBytes(t testing.TB, headers []string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// ScenarioWorkbook is WorkbookBytes over the scenario rows.
func ScenarioWorkbook(t testing.TB) []byte {
	return WorkbookBytes(t, ScenarioHeaders, ScenarioRows)
}

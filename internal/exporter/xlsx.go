package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
)

// Sheet names of the summary workbook.
const (
	SummarySheet = "Summary"
	DailySheet   = "Daily"
	GroupedSheet = "Grouped"
)

// XLSXWriter renders an analysis result as a summary workbook.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Write builds the workbook and writes it to w. The Grouped sheet is only
// present when res carries a grouped breakdown.
func (x *XLSXWriter) Write(w io.Writer, res *analysis.AnalysisResult) error {
	f, err := x.Build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build assembles the workbook in memory. The caller closes it.
func (x *XLSXWriter) Build(res *analysis.AnalysisResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func(*excelize.File, int, *analysis.AnalysisResult) error{writeSummarySheet, writeDailySheet}
	if res.Grouped != nil {
		steps = append(steps, writeGroupedSheet)
	}
	for _, step := range steps {
		if err := step(f, bold, res); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build workbook: %w", err)
		}
	}

	x.logger.Debug("Summary workbook built",
		slog.Int("daily_rows", len(res.Daily)),
		slog.Bool("grouped", res.Grouped != nil))
	return f, nil
}

func writeSummarySheet(f *excelize.File, bold int, res *analysis.AnalysisResult) error {
	rows := [][]any{
		{"CBM Analysis Report"},
		{"Period", fmt.Sprintf("%s to %s", res.From.Format(dataprocessing.DateLayout), res.To.Format(dataprocessing.DateLayout))},
		{},
		{"Metric", "Value"},
	}
	for _, line := range summaryLines(res) {
		rows = append(rows, []any{line.Label, line.Value})
	}
	if err := setRows(f, SummarySheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A4", "B4", bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "B", 34)
}

func writeDailySheet(f *excelize.File, bold int, res *analysis.AnalysisResult) error {
	if _, err := f.NewSheet(DailySheet); err != nil {
		return err
	}
	rows := [][]any{stringsToRow(DailyHeaders)}
	for _, d := range res.Daily {
		rows = append(rows, append([]any{d.Date.Format(dataprocessing.DateLayout)}, flowValues(d.Flow)...))
	}
	if err := setRows(f, DailySheet, rows); err != nil {
		return err
	}
	return styleHeader(f, DailySheet, len(DailyHeaders), bold)
}

func writeGroupedSheet(f *excelize.File, bold int, res *analysis.AnalysisResult) error {
	if _, err := f.NewSheet(GroupedSheet); err != nil {
		return err
	}
	rows := [][]any{
		{"group_by", res.Grouped.GroupBy, "column", res.Grouped.Column},
		stringsToRow(GroupedHeaders),
	}
	for _, r := range res.Grouped.Rows {
		rows = append(rows, append([]any{r.Key}, flowValues(r.Flow)...))
	}
	return setRows(f, GroupedSheet, rows)
}

// flowValues keeps figures numeric so spreadsheet formulas work on them.
func flowValues(fl analysis.Flow) []any {
	return []any{
		analysis.RoundVolume(fl.InboundVolume),
		analysis.RoundQty(fl.InboundQty),
		analysis.RoundVolume(fl.OutboundVolume),
		analysis.RoundQty(fl.OutboundQty),
		analysis.RoundVolume(fl.NetFlowVolume),
		analysis.RoundQty(fl.NetFlowQty),
	}
}

func stringsToRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns, style int) error {
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

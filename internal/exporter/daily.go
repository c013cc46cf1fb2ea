package exporter

import (
	"io"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
)

// DailyHeaders are the CSV columns of the daily series, matching the JSON
// field names of a daily aggregate.
var DailyHeaders = []string{
	"date",
	"inbound_cbm",
	"inbound_qty",
	"outbound_cbm_si",
	"outbound_qty_si",
	"net_flow_cbm",
	"net_flow_qty",
}

// GroupedHeaders are the CSV columns of a grouped breakdown.
var GroupedHeaders = []string{
	"key",
	"inbound_cbm",
	"inbound_qty",
	"outbound_cbm_si",
	"outbound_qty_si",
	"net_flow_cbm",
	"net_flow_qty",
}

func flowCells(f analysis.Flow) []string {
	return []string{
		formatVolume(f.InboundVolume),
		formatQty(f.InboundQty),
		formatVolume(f.OutboundVolume),
		formatQty(f.OutboundQty),
		formatVolume(f.NetFlowVolume),
		formatQty(f.NetFlowQty),
	}
}

// DailyRecords renders the daily series as CSV rows, one per day.
func DailyRecords(daily []analysis.DailyAggregate) [][]string {
	records := make([][]string, 0, len(daily))
	for _, d := range daily {
		row := append([]string{d.Date.Format(dataprocessing.DateLayout)}, flowCells(d.Flow)...)
		records = append(records, row)
	}
	return records
}

// GroupedRecords renders a grouped breakdown as CSV rows in result order.
func GroupedRecords(g *analysis.GroupedResult) [][]string {
	if g == nil {
		return nil
	}
	records := make([][]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		records = append(records, append([]string{r.Key}, flowCells(r.Flow)...))
	}
	return records
}

// WriteDaily writes the daily series of res as CSV.
func (c *CSVWriter) WriteDaily(w io.Writer, res *analysis.AnalysisResult, bom bool) error {
	return c.Write(w, WriteOptions{
		Headers:   DailyHeaders,
		Records:   DailyRecords(res.Daily),
		BOMPrefix: bom,
	})
}

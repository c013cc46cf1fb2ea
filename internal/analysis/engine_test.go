package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbmflow/internal/dataprocessing"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildDataset(t *testing.T, headers []string, rows ...[]dataprocessing.Cell) *dataprocessing.ParsedDataset {
	t.Helper()
	table := &dataprocessing.RawTable{Headers: headers}
	for _, cells := range rows {
		row := make(dataprocessing.RawRow, len(headers))
		for i, h := range headers {
			row[h] = cells[i]
		}
		table.Rows = append(table.Rows, row)
	}
	ds, err := dataprocessing.BuildDataset(table)
	require.NoError(t, err)
	return ds
}

var (
	str = dataprocessing.StringCell
	num = dataprocessing.NumberCell
)

// scenarioDataset has three orders on 2025-09-15 invoiced on the three following days.
func scenarioDataset(t *testing.T) *dataprocessing.ParsedDataset {
	return buildDataset(t,
		[]string{"SO Date", "SO Total CBM", "Sales Order Qty", "SI Date", "SI Total CBM", "Sales Invoice Qty", "Warehouse"},
		[]dataprocessing.Cell{str("2025-09-15"), num(22.123456), num(10), str("2025-09-16"), num(20.5), num(9), str("North")},
		[]dataprocessing.Cell{str("2025-09-15"), num(33.456789), num(5), str("2025-09-17"), num(30.25), num(5), str("South")},
		[]dataprocessing.Cell{str("2025-09-15"), num(10.437627), num(2), str("2025-09-18"), num(10), num(2), str("North")},
	)
}

func TestAnalyzeSingleDayWindow(t *testing.T) {
	res, err := AnalyzeRange(scenarioDataset(t), "2025-09-15", "2025-09-15", "")
	require.NoError(t, err)

	require.Len(t, res.Daily, 1)
	assert.InDelta(t, 66.017872, res.Totals.InboundVolume, 1e-6)
	assert.Equal(t, 0.0, res.Totals.OutboundVolume)
	assert.Equal(t, 17.0, res.Totals.InboundQty)
	assert.Nil(t, res.Grouped)
}

func TestAnalyzeFullWindow(t *testing.T) {
	res, err := AnalyzeRange(scenarioDataset(t), "2025-09-15", "2025-09-18", "")
	require.NoError(t, err)

	require.Len(t, res.Daily, 4)
	assert.InDelta(t, 20.5+30.25+10, res.Totals.OutboundVolume, 1e-9)
	assert.Equal(t, "2025-09-15", res.KPIs.PeakInboundVolume.Date.String())
	assert.InDelta(t, 66.017872, res.KPIs.PeakInboundVolume.Value, 1e-6)
	assert.Equal(t, "2025-09-17", res.KPIs.PeakOutboundVolume.Date.String())
	assert.Equal(t, "2025-09-16", res.KPIs.PeakOutboundQty.Date.String())

	for i, d := range res.Daily {
		assert.Equal(t, day(2025, 9, 15).AddDate(0, 0, i), d.Date, "consecutive days")
		assert.InDelta(t, d.InboundVolume-d.OutboundVolume, d.NetFlowVolume, 1e-12)
		assert.InDelta(t, d.InboundQty-d.OutboundQty, d.NetFlowQty, 1e-12)
	}
	assert.InDelta(t, res.Totals.InboundVolume-res.Totals.OutboundVolume, res.Totals.NetFlowVolume, 1e-9)
}

func TestAnalyzeZeroFillsAndKeepsNegatives(t *testing.T) {
	res, err := Analyze(scenarioDataset(t), day(2025, 9, 10), day(2025, 9, 20), "")
	require.NoError(t, err)

	require.Len(t, res.Daily, 11)
	assert.Equal(t, Flow{}, res.Daily[0].Flow)
	assert.Equal(t, Flow{}, res.Daily[10].Flow)
	assert.InDelta(t, -20.5, res.Daily[6].NetFlowVolume, 1e-12)
	assert.Equal(t, -9.0, res.Daily[6].NetFlowQty)

	var sum float64
	for _, d := range res.Daily {
		sum += d.InboundVolume
	}
	assert.Equal(t, sum, res.Totals.InboundVolume)
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	res, err := Analyze(scenarioDataset(t), day(2024, 1, 1), day(2024, 1, 3), "")
	require.NoError(t, err)

	require.Len(t, res.Daily, 3)
	assert.Equal(t, Totals{}, res.Totals)
	assert.False(t, res.KPIs.PeakInboundVolume.Date.Valid)
	assert.False(t, res.KPIs.PeakOutboundQty.Date.Valid)
	assert.Zero(t, res.KPIs.AvgNetFlowVolume)
}

func TestAnalyzeWindowErrors(t *testing.T) {
	ds := scenarioDataset(t)

	_, err := AnalyzeRange(ds, "2025-09-18", "2025-09-15", "")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = AnalyzeRange(ds, "yesterday", "2025-09-15", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = AnalyzeRange(ds, "2025-09-15", "44927", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Analyze(nil, day(2025, 9, 15), day(2025, 9, 15), "")
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestAnalyzeIsRepeatable(t *testing.T) {
	ds := scenarioDataset(t)
	first, err := AnalyzeRange(ds, "2025-09-15", "2025-09-18", "warehouse")
	require.NoError(t, err)
	second, err := AnalyzeRange(ds, "2025-09-15", "2025-09-18", "warehouse")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWindowDays(t *testing.T) {
	assert.Equal(t, 1, WindowDays(day(2025, 9, 15), day(2025, 9, 15)))
	assert.Equal(t, 366, WindowDays(day(2024, 1, 1), day(2024, 12, 31)))
	assert.Equal(t, 146098, WindowDays(day(1700, 1, 1), day(2100, 1, 1)))
}

func TestAnalyzeCenturiesWindow(t *testing.T) {
	res, err := Analyze(scenarioDataset(t), day(1700, 1, 1), day(2100, 1, 1), "")
	require.NoError(t, err)

	require.Len(t, res.Daily, 146098)
	assert.True(t, res.Daily[0].Date.Equal(day(1700, 1, 1)))
	assert.True(t, res.Daily[len(res.Daily)-1].Date.Equal(day(2100, 1, 1)))

	for i, d := range res.Daily {
		switch {
		case d.Date.Equal(day(2025, 9, 15)):
			assert.Equal(t, 17.0, d.InboundQty, i)
		case d.Date.Equal(day(2025, 9, 18)):
			assert.Equal(t, 2.0, d.OutboundQty, i)
		}
	}
}

func TestAnalysisResultJSON(t *testing.T) {
	res, err := AnalyzeRange(scenarioDataset(t), "2025-09-15", "2025-09-16", "")
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	daily := decoded["daily"].([]any)
	require.Len(t, daily, 2)
	first := daily[0].(map[string]any)
	assert.Equal(t, "2025-09-15", first["date"])
	assert.Equal(t, 66.017872, first["inbound_cbm"])
	assert.Equal(t, 17.0, first["inbound_qty"])
	assert.Contains(t, first, "outbound_cbm_si")
	assert.Contains(t, first, "net_flow_qty")

	totals := decoded["totals"].(map[string]any)
	assert.Equal(t, 66.017872-20.5, totals["total_net_flow_cbm"])
	assert.Equal(t, 9.0, totals["total_outbound_qty_si"])

	kpis := decoded["kpis"].(map[string]any)
	peak := kpis["peak_outbound_cbm_day"].(map[string]any)
	assert.Equal(t, "2025-09-16", peak["date"])
	assert.Equal(t, 20.5, peak["value"])
	assert.Nil(t, decoded["grouped"])
}

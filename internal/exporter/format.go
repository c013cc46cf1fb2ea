package exporter

import (
	"fmt"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
)

// formatVolume formats a CBM figure with exactly 6 decimal places
func formatVolume(v float64) string {
	return fmt.Sprintf("%.6f", analysis.RoundVolume(v))
}

// formatQty formats a quantity as a whole number
func formatQty(v float64) string {
	return fmt.Sprintf("%.0f", analysis.RoundQty(v))
}

func formatDate(d dataprocessing.NullDate) string {
	return d.String()
}

// summaryLine is one label/value pair of the printable summary.
type summaryLine struct {
	Label string
	Value string
}

// summaryLines lists totals, averages and the peak days that exist.
func summaryLines(res *analysis.AnalysisResult) []summaryLine {
	t, k := res.Totals, res.KPIs
	lines := []summaryLine{
		{"Total Inbound CBM", formatVolume(t.InboundVolume)},
		{"Total Outbound CBM (SI)", formatVolume(t.OutboundVolume)},
		{"Total Net Flow CBM", formatVolume(t.NetFlowVolume)},
		{"Total Inbound Quantity", formatQty(t.InboundQty)},
		{"Total Outbound Quantity (SI)", formatQty(t.OutboundQty)},
		{"Total Net Flow Quantity", formatQty(t.NetFlowQty)},
		{"Average Daily Net Flow CBM", formatVolume(k.AvgNetFlowVolume)},
		{"Average Daily Net Flow Quantity", formatQty(k.AvgNetFlowQty)},
	}

	peaks := []struct {
		label string
		peak  analysis.Peak
		value func(float64) string
		unit  string
	}{
		{"Peak Inbound CBM Day", k.PeakInboundVolume, formatVolume, "CBM"},
		{"Peak Outbound CBM Day", k.PeakOutboundVolume, formatVolume, "CBM"},
		{"Peak Inbound Qty Day", k.PeakInboundQty, formatQty, "units"},
		{"Peak Outbound Qty Day", k.PeakOutboundQty, formatQty, "units"},
	}
	for _, p := range peaks {
		if !p.peak.Date.Valid {
			continue
		}
		lines = append(lines, summaryLine{
			Label: p.label,
			Value: fmt.Sprintf("%s (%s %s)", formatDate(p.peak.Date), p.value(p.peak.Value), p.unit),
		})
	}
	return lines
}

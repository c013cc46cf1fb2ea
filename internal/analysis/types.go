package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"cbmflow/internal/dataprocessing"
)

// Flow holds the inbound, outbound and net figures for one bucket.
type Flow struct {
	InboundVolume  float64
	InboundQty     float64
	OutboundVolume float64
	OutboundQty    float64
	NetFlowVolume  float64
	NetFlowQty     float64
}

func (f *Flow) settle() {
	f.NetFlowVolume = f.InboundVolume - f.OutboundVolume
	f.NetFlowQty = f.InboundQty - f.OutboundQty
}

type flowJSON struct {
	InboundVolume  float64 `json:"inbound_cbm"`
	InboundQty     float64 `json:"inbound_qty"`
	OutboundVolume float64 `json:"outbound_cbm_si"`
	OutboundQty    float64 `json:"outbound_qty_si"`
	NetFlowVolume  float64 `json:"net_flow_cbm"`
	NetFlowQty     float64 `json:"net_flow_qty"`
}

func (f Flow) rounded() flowJSON {
	return flowJSON{
		InboundVolume:  RoundVolume(f.InboundVolume),
		InboundQty:     RoundQty(f.InboundQty),
		OutboundVolume: RoundVolume(f.OutboundVolume),
		OutboundQty:    RoundQty(f.OutboundQty),
		NetFlowVolume:  RoundVolume(f.NetFlowVolume),
		NetFlowQty:     RoundQty(f.NetFlowQty),
	}
}

// DailyAggregate is one calendar day of the analysis window.
type DailyAggregate struct {
	Date time.Time
	Flow
}

func (d DailyAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date string `json:"date"`
		flowJSON
	}{
		Date:     d.Date.Format(dataprocessing.DateLayout),
		flowJSON: d.rounded(),
	})
}

// Totals are the sums of the daily series.
type Totals struct {
	InboundVolume  float64
	OutboundVolume float64
	NetFlowVolume  float64
	InboundQty     float64
	OutboundQty    float64
	NetFlowQty     float64
}

func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		InboundVolume  float64 `json:"total_inbound_cbm"`
		OutboundVolume float64 `json:"total_outbound_cbm_si"`
		NetFlowVolume  float64 `json:"total_net_flow_cbm"`
		InboundQty     float64 `json:"total_inbound_qty"`
		OutboundQty    float64 `json:"total_outbound_qty_si"`
		NetFlowQty     float64 `json:"total_net_flow_qty"`
	}{
		InboundVolume:  RoundVolume(t.InboundVolume),
		OutboundVolume: RoundVolume(t.OutboundVolume),
		NetFlowVolume:  RoundVolume(t.NetFlowVolume),
		InboundQty:     RoundQty(t.InboundQty),
		OutboundQty:    RoundQty(t.OutboundQty),
		NetFlowQty:     RoundQty(t.NetFlowQty),
	})
}

// Peak is the busiest day for one measure. Date is absent when the
// measure's total is not positive.
type Peak struct {
	Date  dataprocessing.NullDate
	Value float64
}

type peakJSON struct {
	Date  dataprocessing.NullDate `json:"date"`
	Value float64                 `json:"value"`
}

// KPIs summarize the daily series.
type KPIs struct {
	PeakInboundVolume  Peak
	PeakOutboundVolume Peak
	PeakInboundQty     Peak
	PeakOutboundQty    Peak
	AvgNetFlowVolume   float64
	AvgNetFlowQty      float64
}

func (k KPIs) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PeakInboundVolume  peakJSON `json:"peak_inbound_cbm_day"`
		PeakOutboundVolume peakJSON `json:"peak_outbound_cbm_day"`
		PeakInboundQty     peakJSON `json:"peak_inbound_qty_day"`
		PeakOutboundQty    peakJSON `json:"peak_outbound_qty_day"`
		AvgNetFlowVolume   float64  `json:"avg_daily_net_flow_cbm"`
		AvgNetFlowQty      float64  `json:"avg_daily_net_flow_qty"`
	}{
		PeakInboundVolume:  peakJSON{k.PeakInboundVolume.Date, RoundVolume(k.PeakInboundVolume.Value)},
		PeakOutboundVolume: peakJSON{k.PeakOutboundVolume.Date, RoundVolume(k.PeakOutboundVolume.Value)},
		PeakInboundQty:     peakJSON{k.PeakInboundQty.Date, RoundQty(k.PeakInboundQty.Value)},
		PeakOutboundQty:    peakJSON{k.PeakOutboundQty.Date, RoundQty(k.PeakOutboundQty.Value)},
		AvgNetFlowVolume:   RoundVolume(k.AvgNetFlowVolume),
		AvgNetFlowQty:      RoundQty(k.AvgNetFlowQty),
	})
}

// GroupRow is the flow of one category value.
type GroupRow struct {
	Key string
	Flow
}

func (g GroupRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key string `json:"key"`
		flowJSON
	}{
		Key:      g.Key,
		flowJSON: g.rounded(),
	})
}

// GroupedResult breaks the window down by a categorical column.
type GroupedResult struct {
	GroupBy string     `json:"group_by"`
	Column  string     `json:"column"`
	Rows    []GroupRow `json:"data"`
}

// AnalysisResult is the full output for one window. Grouped is nil when no
// grouping was requested or the key matched no column.
type AnalysisResult struct {
	From    time.Time        `json:"-"`
	To      time.Time        `json:"-"`
	Daily   []DailyAggregate `json:"daily"`
	Totals  Totals           `json:"totals"`
	KPIs    KPIs             `json:"kpis"`
	Grouped *GroupedResult   `json:"grouped"`
}

// RoundVolume rounds a volume to 6 decimal places for output.
func RoundVolume(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 6, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}

// RoundQty rounds a quantity to a whole number, halves to even.
func RoundQty(v float64) float64 {
	r := math.RoundToEven(v)
	if r == 0 {
		return 0
	}
	return r
}

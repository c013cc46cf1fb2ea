package analysis

import "cbmflow/internal/dataprocessing"

// CalculateKPIs derives peak days and average net flows.
//
// Each peak is taken only when its measure's total is positive; the earliest
// day wins ties. Averages divide by the number of days whose net flow is
// non-zero, and are 0 when every day nets to zero.
func CalculateKPIs(daily []DailyAggregate, totals Totals) KPIs {
	var k KPIs
	if totals.InboundVolume > 0 {
		k.PeakInboundVolume = peak(daily, func(d DailyAggregate) float64 { return d.InboundVolume })
	}
	if totals.OutboundVolume > 0 {
		k.PeakOutboundVolume = peak(daily, func(d DailyAggregate) float64 { return d.OutboundVolume })
	}
	if totals.InboundQty > 0 {
		k.PeakInboundQty = peak(daily, func(d DailyAggregate) float64 { return d.InboundQty })
	}
	if totals.OutboundQty > 0 {
		k.PeakOutboundQty = peak(daily, func(d DailyAggregate) float64 { return d.OutboundQty })
	}
	k.AvgNetFlowVolume = nonZeroMean(daily, func(d DailyAggregate) float64 { return d.NetFlowVolume })
	k.AvgNetFlowQty = nonZeroMean(daily, func(d DailyAggregate) float64 { return d.NetFlowQty })
	return k
}

func peak(daily []DailyAggregate, value func(DailyAggregate) float64) Peak {
	var p Peak
	for _, d := range daily {
		v := value(d)
		if !p.Date.Valid || v > p.Value {
			p = Peak{Date: dataprocessing.SomeDate(d.Date), Value: v}
		}
	}
	return p
}

func nonZeroMean(daily []DailyAggregate, value func(DailyAggregate) float64) float64 {
	var sum float64
	count := 0
	for _, d := range daily {
		if v := value(d); v != 0 {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

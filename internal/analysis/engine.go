package analysis

import (
	"errors"
	"fmt"
	"time"

	"cbmflow/internal/dataprocessing"
)

var (
	ErrInvalidWindow = errors.New("date_from must not be after date_to")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNoDataset     = errors.New("no dataset")
)

// ParseWindow reads the two window bounds.
func ParseWindow(dateFrom, dateTo string) (time.Time, time.Time, error) {
	from, ok := dataprocessing.ParseDate(dateFrom)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date_from %q", ErrInvalidDate, dateFrom)
	}
	to, ok := dataprocessing.ParseDate(dateTo)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date_to %q", ErrInvalidDate, dateTo)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}
	return from, to, nil
}

// WindowDays returns the number of calendar days in [from, to].
func WindowDays(from, to time.Time) int {
	from, to = dataprocessing.CalendarDay(from), dataprocessing.CalendarDay(to)
	return daysBetween(from, to) + 1
}

// daysBetween counts whole days between two UTC midnights. It works on Unix
// seconds so windows longer than a time.Duration can hold stay exact.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AnalyzeRange parses the bounds and runs Analyze.
func AnalyzeRange(ds *dataprocessing.ParsedDataset, dateFrom, dateTo, groupBy string) (*AnalysisResult, error) {
	from, to, err := ParseWindow(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	return Analyze(ds, from, to, groupBy)
}

// Analyze aggregates the dataset into one entry per calendar day of
// [from, to], both inclusive. Inbound counts rows whose order date falls in
// the window and outbound counts rows whose invoice date does, independently,
// so a row may contribute to one side only. Missing days are zero-filled.
func Analyze(ds *dataprocessing.ParsedDataset, from, to time.Time, groupBy string) (*AnalysisResult, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	from, to = dataprocessing.CalendarDay(from), dataprocessing.CalendarDay(to)
	if from.After(to) {
		return nil, ErrInvalidWindow
	}

	daily := DailySeries(ds, from, to)
	totals := SumDaily(daily)
	result := &AnalysisResult{
		From:   from,
		To:     to,
		Daily:  daily,
		Totals: totals,
		KPIs:   CalculateKPIs(daily, totals),
	}
	if groupBy != "" {
		if grouped, ok := Group(ds, from, to, groupBy); ok {
			result.Grouped = grouped
		}
	}
	return result, nil
}

// DailySeries builds the zero-filled daily series for the window.
func DailySeries(ds *dataprocessing.ParsedDataset, from, to time.Time) []DailyAggregate {
	n := WindowDays(from, to)
	daily := make([]DailyAggregate, n)
	for i := range daily {
		daily[i].Date = from.AddDate(0, 0, i)
	}

	index := func(d time.Time) (int, bool) {
		if d.Before(from) || d.After(to) {
			return 0, false
		}
		return daysBetween(from, d), true
	}

	for _, rec := range ds.Records {
		if rec.ValidInbound() {
			if i, ok := index(rec.OrderDate.Date); ok {
				daily[i].InboundVolume += rec.OrderVolume.Value
				daily[i].InboundQty += rec.OrderQty.Value
			}
		}
		if rec.ValidOutbound() {
			if i, ok := index(rec.InvoiceDate.Date); ok {
				daily[i].OutboundVolume += rec.InvoiceVolume.Value
				daily[i].OutboundQty += rec.InvoiceQty.Value
			}
		}
	}
	for i := range daily {
		daily[i].settle()
	}
	return daily
}

// SumDaily totals the series in date order.
func SumDaily(daily []DailyAggregate) Totals {
	var t Totals
	for _, d := range daily {
		t.InboundVolume += d.InboundVolume
		t.OutboundVolume += d.OutboundVolume
		t.NetFlowVolume += d.NetFlowVolume
		t.InboundQty += d.InboundQty
		t.OutboundQty += d.OutboundQty
		t.NetFlowQty += d.NetFlowQty
	}
	return t
}

package analysis

import (
	"strings"
	"time"

	"cbmflow/internal/dataprocessing"
)

// FindGroupColumn returns the first header, in table order, containing key
// case-insensitively.
func FindGroupColumn(headers []string, key string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(key))
	if needle == "" {
		return "", false
	}
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), needle) {
			return h, true
		}
	}
	return "", false
}

// Group aggregates the window by the values of the column matched by key.
// Rows appear in the order their value is first seen, inbound side first.
// The boolean is false when key matches no column.
func Group(ds *dataprocessing.ParsedDataset, from, to time.Time, key string) (*GroupedResult, bool) {
	if ds == nil {
		return nil, false
	}
	column, ok := FindGroupColumn(ds.Headers, key)
	if !ok {
		return nil, false
	}
	from, to = dataprocessing.CalendarDay(from), dataprocessing.CalendarDay(to)
	inWindow := func(d time.Time) bool { return !d.Before(from) && !d.After(to) }

	result := &GroupedResult{GroupBy: key, Column: column, Rows: []GroupRow{}}
	positions := make(map[string]int)
	row := func(value string) *Flow {
		i, seen := positions[value]
		if !seen {
			i = len(result.Rows)
			positions[value] = i
			result.Rows = append(result.Rows, GroupRow{Key: value})
		}
		return &result.Rows[i].Flow
	}

	for _, rec := range ds.Records {
		if rec.ValidInbound() && inWindow(rec.OrderDate.Date) {
			f := row(rec.Raw[column].String())
			f.InboundVolume += rec.OrderVolume.Value
			f.InboundQty += rec.OrderQty.Value
		}
	}
	for _, rec := range ds.Records {
		if rec.ValidOutbound() && inWindow(rec.InvoiceDate.Date) {
			f := row(rec.Raw[column].String())
			f.OutboundVolume += rec.InvoiceVolume.Value
			f.OutboundQty += rec.InvoiceQty.Value
		}
	}
	for i := range result.Rows {
		result.Rows[i].settle()
	}
	return result, true
}

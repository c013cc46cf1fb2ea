package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies the dynamic type of a raw spreadsheet cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is a single raw value read from a spreadsheet.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
}

// EmptyCell returns a cell with no value.
func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

// StringCell returns a text cell. Whitespace-only text is treated as empty.
func StringCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return EmptyCell()
	}
	return Cell{Kind: CellString, Str: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	if math.IsNaN(f) {
		return EmptyCell()
	}
	return Cell{Kind: CellNumber, Num: f}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String renders the cell the way it is shown in previews and group keys.
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return strings.TrimSpace(c.Str)
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// RawRow maps a raw header to the cell found under it.
type RawRow map[string]Cell

// RawTable is an ordered set of headers and rows as read from a sheet.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// Column returns the cells of one header in row order.
func (t *RawTable) Column(header string) []Cell {
	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[header]
	}
	return cells
}

// FieldKey names a logical field of the order/invoice schema.
type FieldKey string

const (
	FieldOrderDate     FieldKey = "so_date"
	FieldOrderVolume   FieldKey = "so_total_cbm"
	FieldInvoiceDate   FieldKey = "si_date"
	FieldInvoiceVolume FieldKey = "si_total_cbm"
	FieldUnitVolume    FieldKey = "per_unit_cbm"
	FieldOrderQty      FieldKey = "so_qty"
	FieldInvoiceQty    FieldKey = "si_qty"
)

// FieldKeys lists every logical field in a stable order.
var FieldKeys = []FieldKey{
	FieldOrderDate,
	FieldOrderVolume,
	FieldInvoiceDate,
	FieldInvoiceVolume,
	FieldUnitVolume,
	FieldOrderQty,
	FieldInvoiceQty,
}

// NullFloat is a float that may be absent.
type NullFloat struct {
	Value float64
	Valid bool
}

// SomeFloat returns a present NullFloat.
func SomeFloat(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// NullDate is a calendar date that may be absent. Date is always UTC midnight.
type NullDate struct {
	Date  time.Time
	Valid bool
}

// SomeDate returns a present NullDate truncated to its calendar day.
func SomeDate(t time.Time) NullDate { return NullDate{Date: CalendarDay(t), Valid: true} }

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Date.Format(DateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD" or null.
func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Date.Format(DateLayout))), nil
}

// DateLayout is the canonical output format for calendar dates.
const DateLayout = "2006-01-02"

// CalendarDay drops the time of day and location, keeping the wall-clock date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is the span of valid order and invoice dates in a dataset.
type DateRange struct {
	Min NullDate `json:"min_date"`
	Max NullDate `json:"max_date"`
}

func (r *DateRange) include(t time.Time) {
	if !r.Min.Valid || t.Before(r.Min.Date) {
		r.Min = SomeDate(t)
	}
	if !r.Max.Valid || t.After(r.Max.Date) {
		r.Max = SomeDate(t)
	}
}

package dataprocessing

import (
	"errors"
	"log/slog"
)

var (
	ErrMissingOrderDate       = errors.New("SO Date column not found. Required for inbound analysis.")
	ErrMissingInvoiceDate     = errors.New("Sales Invoice Date column not found. Required for outbound analysis.")
	ErrOrderVolumeUnavailable = errors.New("SO Total CBM column not found and cannot compute from Per Unit CBM * Qty")
	ErrEmptyTable             = errors.New("Excel file is empty")
	ErrInvalidWorkbook        = errors.New("failed to open workbook")
)

// VolumeKind tags where a record's volume comes from.
type VolumeKind int

const (
	VolumeAbsent VolumeKind = iota
	VolumeDirect
	VolumeComputed
)

func (k VolumeKind) String() string {
	switch k {
	case VolumeDirect:
		return "direct"
	case VolumeComputed:
		return "computed"
	default:
		return "absent"
	}
}

// VolumeSource records how a volume field was obtained.
type VolumeSource struct {
	Kind       VolumeKind
	Column     string
	UnitColumn string
	QtyColumn  string
}

// DirectVolume reads volume straight from column.
func DirectVolume(column string) VolumeSource {
	return VolumeSource{Kind: VolumeDirect, Column: column}
}

// ComputedVolume derives volume as unit × qty.
func ComputedVolume(unit, qty string) VolumeSource {
	return VolumeSource{Kind: VolumeComputed, UnitColumn: unit, QtyColumn: qty}
}

// ColumnMapping is the resolved header for each logical field. It is not
// modified after the builder returns it.
type ColumnMapping struct {
	columns       map[FieldKey]string
	OrderVolume   VolumeSource
	InvoiceVolume VolumeSource
}

// Column returns the raw header resolved for key.
func (m ColumnMapping) Column(key FieldKey) (string, bool) {
	c, ok := m.columns[key]
	return c, ok
}

// Detected renders the mapping for API responses: each field key maps to its
// header or nil, plus so_cbm_computed and si_cbm_computed flags.
func (m ColumnMapping) Detected() map[string]any {
	out := make(map[string]any, len(FieldKeys)+2)
	for _, key := range FieldKeys {
		if c, ok := m.columns[key]; ok {
			out[string(key)] = c
		} else {
			out[string(key)] = nil
		}
	}
	out["so_cbm_computed"] = m.OrderVolume.Kind == VolumeComputed
	out["si_cbm_computed"] = m.InvoiceVolume.Kind == VolumeComputed
	return out
}

// ParsedRecord is one normalized row of the dataset.
type ParsedRecord struct {
	OrderDate     NullDate
	OrderVolume   NullFloat
	OrderQty      NullFloat
	InvoiceDate   NullDate
	InvoiceVolume NullFloat
	InvoiceQty    NullFloat
	Raw           RawRow
}

// ValidInbound reports whether the order side of the row can be aggregated.
func (r ParsedRecord) ValidInbound() bool {
	return r.OrderDate.Valid && r.OrderVolume.Valid && r.OrderQty.Valid
}

// ValidOutbound reports whether the invoice side of the row can be aggregated.
func (r ParsedRecord) ValidOutbound() bool {
	return r.InvoiceDate.Valid && r.InvoiceVolume.Valid && r.InvoiceQty.Valid
}

// ParsedDataset is a fully built, read-only dataset.
type ParsedDataset struct {
	Records   []ParsedRecord
	Columns   ColumnMapping
	DateRange DateRange
	Headers   []string
}

// SampleRows returns up to n leading raw rows keyed by header, with empty
// cells rendered as "".
func (d *ParsedDataset) SampleRows(n int) []map[string]string {
	if n > len(d.Records) {
		n = len(d.Records)
	}
	out := make([]map[string]string, 0, n)
	for _, rec := range d.Records[:n] {
		row := make(map[string]string, len(d.Headers))
		for _, h := range d.Headers {
			row[h] = rec.Raw[h].String()
		}
		out = append(out, row)
	}
	return out
}

// Builder turns raw tables into parsed datasets.
type Builder struct {
	synonyms Synonyms
	logger   *slog.Logger
}

// NewBuilder returns a builder using DefaultSynonyms. A nil logger uses slog.Default().
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{synonyms: DefaultSynonyms, logger: logger}
}

// BuildDataset builds a dataset with the default builder.
func BuildDataset(table *RawTable) (*ParsedDataset, error) {
	return NewBuilder(nil).Build(table)
}

// Build resolves the schema, normalizes every row and fails as a whole when
// a required field cannot be resolved.
func (b *Builder) Build(table *RawTable) (*ParsedDataset, error) {
	if table == nil || len(table.Headers) == 0 || len(table.Rows) == 0 {
		return nil, ErrEmptyTable
	}

	columns := make(map[FieldKey]string, len(FieldKeys))
	for _, key := range FieldKeys {
		if c, ok := b.synonyms.Resolve(table.Headers, key); ok {
			columns[key] = c
		}
	}
	mapping := ColumnMapping{columns: columns}

	orderDateCol, ok := columns[FieldOrderDate]
	if !ok {
		return nil, ErrMissingOrderDate
	}
	invoiceDateCol, ok := columns[FieldInvoiceDate]
	if !ok {
		return nil, ErrMissingInvoiceDate
	}

	unitCol, hasUnit := columns[FieldUnitVolume]
	orderQtyCol, hasOrderQty := columns[FieldOrderQty]
	invoiceQtyCol, hasInvoiceQty := columns[FieldInvoiceQty]

	switch c, ok := columns[FieldOrderVolume]; {
	case ok:
		mapping.OrderVolume = DirectVolume(c)
	case hasUnit && hasOrderQty:
		mapping.OrderVolume = ComputedVolume(unitCol, orderQtyCol)
	default:
		return nil, ErrOrderVolumeUnavailable
	}

	switch c, ok := columns[FieldInvoiceVolume]; {
	case ok:
		mapping.InvoiceVolume = DirectVolume(c)
	case hasUnit && hasInvoiceQty:
		mapping.InvoiceVolume = ComputedVolume(unitCol, invoiceQtyCol)
	}

	orderDates := NormalizeDates(table.Column(orderDateCol))
	invoiceDates := NormalizeDates(table.Column(invoiceDateCol))
	orderVolumes := b.volumes(table, mapping.OrderVolume)
	invoiceVolumes := b.volumes(table, mapping.InvoiceVolume)
	orderQty := quantities(table, orderQtyCol, hasOrderQty)
	invoiceQty := quantities(table, invoiceQtyCol, hasInvoiceQty)

	ds := &ParsedDataset{
		Records: make([]ParsedRecord, len(table.Rows)),
		Columns: mapping,
		Headers: append([]string(nil), table.Headers...),
	}
	inbound, outbound := 0, 0
	for i, row := range table.Rows {
		rec := ParsedRecord{
			OrderDate:     orderDates[i],
			OrderVolume:   orderVolumes[i],
			OrderQty:      orderQty[i],
			InvoiceDate:   invoiceDates[i],
			InvoiceVolume: invoiceVolumes[i],
			InvoiceQty:    invoiceQty[i],
			Raw:           row,
		}
		if rec.ValidInbound() {
			ds.DateRange.include(rec.OrderDate.Date)
			inbound++
		}
		if rec.ValidOutbound() {
			ds.DateRange.include(rec.InvoiceDate.Date)
			outbound++
		}
		ds.Records[i] = rec
	}

	b.logger.Info("Dataset built",
		slog.Int("total_rows", len(ds.Records)),
		slog.Int("valid_inbound_rows", inbound),
		slog.Int("valid_outbound_rows", outbound),
		slog.String("order_volume", mapping.OrderVolume.Kind.String()),
		slog.String("invoice_volume", mapping.InvoiceVolume.Kind.String()))

	return ds, nil
}

// volumes is absent-safe: with no source every row gets 0.
func (b *Builder) volumes(table *RawTable, src VolumeSource) []NullFloat {
	switch src.Kind {
	case VolumeDirect:
		return NumberColumn(table.Column(src.Column))
	case VolumeComputed:
		units := NumberColumn(table.Column(src.UnitColumn))
		qty := NumberColumn(table.Column(src.QtyColumn))
		out := make([]NullFloat, len(units))
		for i := range units {
			if units[i].Valid && qty[i].Valid {
				out[i] = SomeFloat(units[i].Value * qty[i].Value)
			}
		}
		return out
	default:
		out := make([]NullFloat, len(table.Rows))
		for i := range out {
			out[i] = SomeFloat(0)
		}
		return out
	}
}

func quantities(table *RawTable, column string, present bool) []NullFloat {
	if present {
		return NumberColumn(table.Column(column))
	}
	out := make([]NullFloat, len(table.Rows))
	for i := range out {
		out[i] = SomeFloat(0)
	}
	return out
}

// Package store persists the upload ledger: one record per workbook that
// was successfully turned into a dataset.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cbmflow/internal/dataprocessing"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// ErrClosed is returned by ledgers used after Close.
var ErrClosed = errors.New("store: ledger closed")

// UploadRecord describes one accepted upload.
type UploadRecord struct {
	ID         string                  `json:"id"`
	Filename   string                  `json:"filename"`
	TotalRows  int                     `json:"total_rows"`
	Columns    map[string]any          `json:"columns_detected"`
	MinDate    dataprocessing.NullDate `json:"min_date"`
	MaxDate    dataprocessing.NullDate `json:"max_date"`
	UploadedAt time.Time               `json:"uploaded_at"`
}

// NewUploadRecord describes ds as uploaded now under id.
func NewUploadRecord(id, filename string, ds *dataprocessing.ParsedDataset) UploadRecord {
	return UploadRecord{
		ID:         id,
		Filename:   filename,
		TotalRows:  len(ds.Records),
		Columns:    ds.Columns.Detected(),
		MinDate:    ds.DateRange.Min,
		MaxDate:    ds.DateRange.Max,
		UploadedAt: time.Now().UTC(),
	}
}

// Ledger records uploads and lists them newest first.
type Ledger interface {
	Record(ctx context.Context, rec UploadRecord) error
	List(ctx context.Context, limit int) ([]UploadRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// NopLedger discards records; used when storage is disabled.
type NopLedger struct{}

func (NopLedger) Record(ctx context.Context, rec UploadRecord) error {
	_ = rec
	return ctx.Err()
}

func (NopLedger) List(ctx context.Context, limit int) ([]UploadRecord, error) {
	_ = limit
	return []UploadRecord{}, ctx.Err()
}

func (NopLedger) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (NopLedger) Close() error {
	return nil
}

// Limit normalizes a caller-supplied list limit.
func Limit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// EncodeColumns serializes the detected-columns map for a text or JSON column.
func EncodeColumns(columns map[string]any) ([]byte, error) {
	if columns == nil {
		columns = map[string]any{}
	}
	raw, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("encode columns: %w", err)
	}
	return raw, nil
}

// DecodeColumns is the inverse of EncodeColumns.
func DecodeColumns(raw []byte) (map[string]any, error) {
	columns := map[string]any{}
	if len(raw) == 0 {
		return columns, nil
	}
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	return columns, nil
}

// ParseDay turns a stored YYYY-MM-DD value back into a NullDate.
func ParseDay(s string) (dataprocessing.NullDate, error) {
	if s == "" {
		return dataprocessing.NullDate{}, nil
	}
	t, err := time.Parse(dataprocessing.DateLayout, s)
	if err != nil {
		return dataprocessing.NullDate{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return dataprocessing.SomeDate(t), nil
}

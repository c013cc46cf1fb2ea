// Package postgres keeps the upload ledger in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cbmflow/internal/dataprocessing"
	"cbmflow/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		total_rows INTEGER NOT NULL,
		columns_detected JSONB NOT NULL,
		min_date DATE,
		max_date DATE,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS uploads_uploaded_at ON uploads (uploaded_at DESC)`,
}

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Ledger = (*Store)(nil)

// ParseConfig validates a connection URL and caps the pool size.
func ParseConfig(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres: connection url is required")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 8 {
		cfg.MaxConns = 8
	}
	return cfg, nil
}

// New connects and creates the uploads table when missing.
func New(ctx context.Context, url string) (*Store, error) {
	cfg, err := ParseConfig(url)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	for _, statement := range schema {
		if _, err := pool.Exec(ctx, statement); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Record(ctx context.Context, rec store.UploadRecord) error {
	columns, err := store.EncodeColumns(rec.Columns)
	if err != nil {
		return err
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO uploads (
			id, filename, total_rows, columns_detected, min_date, max_date, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		rec.ID, rec.Filename, rec.TotalRows, columns,
		dateArg(rec.MinDate), dateArg(rec.MaxDate), rec.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: record upload %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]store.UploadRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, total_rows, columns_detected, min_date, max_date, uploaded_at
		FROM uploads
		ORDER BY uploaded_at DESC, id
		LIMIT $1
	`, store.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("postgres: list uploads: %w", err)
	}
	defer rows.Close()

	records := []store.UploadRecord{}
	for rows.Next() {
		var (
			rec              store.UploadRecord
			columns          []byte
			minDate, maxDate *time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.TotalRows, &columns, &minDate, &maxDate, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan upload: %w", err)
		}
		if rec.Columns, err = store.DecodeColumns(columns); err != nil {
			return nil, err
		}
		rec.MinDate = dateValue(minDate)
		rec.MaxDate = dateValue(maxDate)
		rec.UploadedAt = rec.UploadedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func dateArg(d dataprocessing.NullDate) any {
	if !d.Valid {
		return nil
	}
	return d.Date
}

func dateValue(t *time.Time) dataprocessing.NullDate {
	if t == nil {
		return dataprocessing.NullDate{}
	}
	return dataprocessing.SomeDate(*t)
}

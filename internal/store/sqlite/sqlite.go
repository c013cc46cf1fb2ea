package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"cbmflow/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Ledger = (*Store)(nil)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Record(ctx context.Context, rec store.UploadRecord) error {
	columns, err := store.EncodeColumns(rec.Columns)
	if err != nil {
		return err
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO uploads (
			id, filename, total_rows, columns_detected, min_date, max_date, uploaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Filename,
		rec.TotalRows,
		string(columns),
		nullableDay(rec.MinDate.Valid, rec.MinDate.String()),
		nullableDay(rec.MaxDate.Valid, rec.MaxDate.String()),
		rec.UploadedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record upload %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]store.UploadRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, total_rows, columns_detected, min_date, max_date, uploaded_at
		FROM uploads
		ORDER BY uploaded_at DESC, rowid DESC
		LIMIT ?
	`, store.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list uploads: %w", err)
	}
	defer rows.Close()

	records := []store.UploadRecord{}
	for rows.Next() {
		var (
			rec              store.UploadRecord
			columns          string
			minDate, maxDate sql.NullString
			uploadedAt       string
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.TotalRows, &columns, &minDate, &maxDate, &uploadedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan upload: %w", err)
		}
		if rec.Columns, err = store.DecodeColumns([]byte(columns)); err != nil {
			return nil, err
		}
		if rec.MinDate, err = store.ParseDay(minDate.String); err != nil {
			return nil, err
		}
		if rec.MaxDate, err = store.ParseDay(maxDate.String); err != nil {
			return nil, err
		}
		if rec.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse uploaded_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableDay(valid bool, day string) any {
	if !valid {
		return nil
	}
	return day
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			total_rows INTEGER NOT NULL,
			columns_detected TEXT NOT NULL,
			min_date TEXT,
			max_date TEXT,
			uploaded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS uploads_uploaded_at ON uploads (uploaded_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

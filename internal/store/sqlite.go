package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS incidents (
			id TEXT PRIMARY KEY,
			mine TEXT,
			owner TEXT,
			district TEXT,
			state TEXT,
			mineral TEXT,
			place TEXT,
			date TEXT,
			time TEXT,
			casualties INTEGER,
			injured INTEGER,
			cause TEXT,
			best_practices TEXT,
			cause_label TEXT,
			date_unix INTEGER,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_date_unix ON incidents(date_unix);`,
		`CREATE TABLE IF NOT EXISTS error_logs (
			id TEXT PRIMARY KEY,
			endpoint TEXT NOT NULL,
			message TEXT NOT NULL,
			detail TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfNegative(value int) any {
	if value < 0 {
		return nil
	}
	return value
}

func nullIfZeroInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

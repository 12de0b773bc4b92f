package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type ErrorLogEntry struct {
	ID        string
	Endpoint  string
	Message   string
	Detail    string
	CreatedAt string
}

func (s *Store) LogError(ctx context.Context, endpoint, message, detail string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO error_logs (id, endpoint, message, detail) VALUES (?, ?, ?, ?)`,
		uuid.NewString(),
		endpoint,
		message,
		nullIfEmpty(detail),
	)
	if err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}

func (s *Store) ListErrorLogs(ctx context.Context, limit int) ([]ErrorLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, endpoint, message, COALESCE(detail, ''), created_at
		 FROM error_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list error logs: %w", err)
	}
	defer rows.Close()
	entries := []ErrorLogEntry{}
	for rows.Next() {
		var entry ErrorLogEntry
		if err := rows.Scan(&entry.ID, &entry.Endpoint, &entry.Message, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error logs: %w", err)
	}
	return entries, nil
}

// ReportError writes an error record without ever failing the caller:
// it runs on a detached context so request cancellation cannot abort
// the write, and a write failure is only logged. A nil store is a no-op.
func ReportError(store *Store, logger *slog.Logger, endpoint, message, detail string) {
	if store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.LogError(ctx, endpoint, message, detail); err != nil && logger != nil {
			logger.Error("failed to write error log", "endpoint", endpoint, "error", err)
		}
	}()
}

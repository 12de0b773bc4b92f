package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestLogErrorAndList(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	if err := sqlStore.LogError(ctx, "/api/v1/chat", "model call failed", "upstream timeout"); err != nil {
		t.Fatalf("log error: %v", err)
	}

	entries, err := sqlStore.ListErrorLogs(ctx, 10)
	if err != nil {
		t.Fatalf("list error logs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Endpoint != "/api/v1/chat" || entries[0].Detail != "upstream timeout" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestReportErrorWritesEventually(t *testing.T) {
	sqlStore := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ReportError(sqlStore, logger, "/api/v1/reports", "boom", "")

	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := sqlStore.ListErrorLogs(context.Background(), 10)
		if err != nil {
			t.Fatalf("list error logs: %v", err)
		}
		if len(entries) == 1 {
			if entries[0].Endpoint != "/api/v1/reports" {
				t.Fatalf("unexpected endpoint: %s", entries[0].Endpoint)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("error log entry never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReportErrorNilStoreIsNoop(t *testing.T) {
	ReportError(nil, nil, "/api/v1/chat", "ignored", "")
}

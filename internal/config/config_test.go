package config

import (
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.DBPath != filepath.Join("/data", "minewatch", "incidents.sqlite") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if !cfg.PersistenceEnabled() {
		t.Fatal("expected persistence enabled by default")
	}
	if cfg.ChatContextRows != 7 {
		t.Fatalf("unexpected context row cap: %d", cfg.ChatContextRows)
	}
	if cfg.ChatMinYear != 2016 {
		t.Fatalf("unexpected min year: %d", cfg.ChatMinYear)
	}
	if cfg.ChatMaxYear != 0 {
		t.Fatalf("expected max year to default to 0 (current year), got %d", cfg.ChatMaxYear)
	}
	if cfg.LLMTimeoutSec != 60 {
		t.Fatalf("unexpected llm timeout: %d", cfg.LLMTimeoutSec)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("unexpected llm provider: %s", cfg.LLMProvider)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MINEWATCH_DATA_DIR", "/tmp/mw")
	t.Setenv("MINEWATCH_HTTP_ADDR", ":9090")
	t.Setenv("MINEWATCH_LLM_PROVIDER", "openai")
	t.Setenv("MINEWATCH_CHAT_CONTEXT_ROWS", "5")
	t.Setenv("MINEWATCH_CHAT_MAX_YEAR", "2024")
	t.Setenv("MINEWATCH_ALERTS_FETCH_PER_SECOND", "2.5")

	cfg := FromEnv()

	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.DBPath != filepath.Join("/tmp/mw", "minewatch", "incidents.sqlite") {
		t.Fatalf("db path should follow data dir: %s", cfg.DBPath)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("unexpected provider: %s", cfg.LLMProvider)
	}
	if cfg.ChatContextRows != 5 {
		t.Fatalf("unexpected context row cap: %d", cfg.ChatContextRows)
	}
	if cfg.ChatMaxYear != 2024 {
		t.Fatalf("unexpected max year: %d", cfg.ChatMaxYear)
	}
	if cfg.AlertsFetchPerSec != 2.5 {
		t.Fatalf("unexpected fetch rate: %f", cfg.AlertsFetchPerSec)
	}
}

func TestFromEnvDisabledPersistence(t *testing.T) {
	t.Setenv("MINEWATCH_DB_DISABLED", "true")
	cfg := FromEnv()
	if cfg.PersistenceEnabled() {
		t.Fatal("expected persistence disabled")
	}
}

func TestFromEnvRejectsGarbageNumbers(t *testing.T) {
	t.Setenv("MINEWATCH_CHAT_CONTEXT_ROWS", "not-a-number")
	t.Setenv("MINEWATCH_LLM_TIMEOUT_SECONDS", "-4")
	cfg := FromEnv()
	if cfg.ChatContextRows != 7 {
		t.Fatalf("expected fallback row cap, got %d", cfg.ChatContextRows)
	}
	if cfg.LLMTimeoutSec != 60 {
		t.Fatalf("expected fallback timeout, got %d", cfg.LLMTimeoutSec)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment   string
	HTTPAddr      string
	DataDir       string
	DBPath        string
	AllowedOrigin string
	SettingsPath  string

	LLMProvider   string // gemini | openai
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int

	ChatContextRows int
	ChatMinYear     int
	ChatMaxYear     int // 0 means current year

	TrendsCacheTTLSec int

	AlertsURL         string
	AlertsCron        string
	AlertsPollSec     int
	AlertsStatePath   string
	AlertsFetchPerSec float64
	InboxDir          string
}

func FromEnv() Config {
	dataDir := stringOrDefault("MINEWATCH_DATA_DIR", "/data")
	dbPath := stringOrDefault("MINEWATCH_DB_PATH", filepath.Join(dataDir, "minewatch", "incidents.sqlite"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("MINEWATCH_DB_DISABLED")), "true") {
		dbPath = ""
	}

	return Config{
		Environment:   stringOrDefault("MINEWATCH_ENV", "development"),
		HTTPAddr:      stringOrDefault("MINEWATCH_HTTP_ADDR", ":8080"),
		DataDir:       dataDir,
		DBPath:        dbPath,
		AllowedOrigin: stringOrDefault("MINEWATCH_ALLOWED_ORIGIN", "*"),
		SettingsPath:  stringOrDefault("MINEWATCH_SETTINGS_PATH", filepath.Join(dataDir, "minewatch", "settings.yaml")),

		LLMProvider:   stringOrDefault("MINEWATCH_LLM_PROVIDER", "gemini"),
		LLMBaseURL:    stringOrDefault("MINEWATCH_LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:     strings.TrimSpace(os.Getenv("MINEWATCH_LLM_API_KEY")),
		LLMModel:      strings.TrimSpace(os.Getenv("MINEWATCH_LLM_MODEL")),
		LLMTimeoutSec: intOrDefault("MINEWATCH_LLM_TIMEOUT_SECONDS", 60),

		ChatContextRows: intOrDefault("MINEWATCH_CHAT_CONTEXT_ROWS", 7),
		ChatMinYear:     intOrDefault("MINEWATCH_CHAT_MIN_YEAR", 2016),
		ChatMaxYear:     intOrZero("MINEWATCH_CHAT_MAX_YEAR"),

		TrendsCacheTTLSec: intOrDefault("MINEWATCH_TRENDS_CACHE_TTL_SECONDS", 600),

		AlertsURL:         strings.TrimSpace(os.Getenv("MINEWATCH_ALERTS_URL")),
		AlertsCron:        strings.TrimSpace(os.Getenv("MINEWATCH_ALERTS_CRON")),
		AlertsPollSec:     intOrDefault("MINEWATCH_ALERTS_POLL_SECONDS", 300),
		AlertsStatePath:   stringOrDefault("MINEWATCH_ALERTS_STATE_PATH", filepath.Join(dataDir, "minewatch", "known_alerts.json")),
		AlertsFetchPerSec: floatOrDefault("MINEWATCH_ALERTS_FETCH_PER_SECOND", 0.5),
		InboxDir:          strings.TrimSpace(os.Getenv("MINEWATCH_INBOX_DIR")),
	}
}

// PersistenceEnabled reports whether a database path was configured.
// Without one the API keeps serving and treats the store as unavailable.
func (c Config) PersistenceEnabled() bool {
	return strings.TrimSpace(c.DBPath) != ""
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func intOrZero(name string) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return 0
	}
	return parsed
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

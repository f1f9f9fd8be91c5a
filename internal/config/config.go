// Package config loads typed configuration from the environment once at
// startup. A .env file is honored when present so local runs do not need
// exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service needs to start.
type Config struct {
	// Ledger service credentials.
	OrganizzeEmail   string
	OrganizzeAPIKey  string
	OrganizzeBaseURL string // optional override, for tests

	// Model settings.
	GeminiAPIKey string
	GeminiModel  string // optional, defaults inside the assistant

	// Chat transport.
	TelegramToken  string
	AllowedChatIDs []int64

	// Admin endpoints are disabled when the token is empty.
	AdminToken string

	// HTTP server.
	Port int

	// Async processing.
	QueueBuffer  int
	QueueWorkers int

	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the environment, optionally seeded from a .env file, and
// validates required settings. All missing required variables are
// reported in one error.
func Load() (*Config, error) {
	// Best effort: production deployments set real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		OrganizzeEmail:   os.Getenv("ORGANIZZE_EMAIL"),
		OrganizzeAPIKey:  os.Getenv("ORGANIZZE_API_KEY"),
		OrganizzeBaseURL: os.Getenv("ORGANIZZE_BASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RequestTimeout:   30 * time.Second,
		ShutdownTimeout:  15 * time.Second,
	}

	var missing []string
	for _, req := range []struct {
		name  string
		value string
	}{
		{"ORGANIZZE_EMAIL", cfg.OrganizzeEmail},
		{"ORGANIZZE_API_KEY", cfg.OrganizzeAPIKey},
		{"GEMINI_API_KEY", cfg.GeminiAPIKey},
		{"TELEGRAM_TOKEN", cfg.TelegramToken},
	} {
		if req.value == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("Load: missing required environment variables: %s", strings.Join(missing, ", "))
	}

	ids, err := parseChatIDs(os.Getenv("ALLOWED_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	cfg.AllowedChatIDs = ids

	cfg.Port, err = getEnvInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	cfg.QueueBuffer, err = getEnvInt("QUEUE_BUFFER", 64)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	cfg.QueueWorkers, err = getEnvInt("QUEUE_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	return cfg, nil
}

// parseChatIDs splits a comma-separated id list. An empty value is valid
// and yields an empty allow-list, which denies everyone.
func parseChatIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing ALLOWED_CHAT_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return n, nil
}

// Package config centralises configuration parsing for the dashboard.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const localAPIBaseURL = "http://localhost:8000/api"

// Config captures runtime configuration values for the dashboard.
type Config struct {
	HTTPAddress    string
	APIBaseURL     string
	BackendTimeout time.Duration // Zero disables the client timeout.
	EditCloseDelay time.Duration // Delay before a saved edit form closes.

	JWTSecret string
	JWTIssuer string

	CSRFKey        []byte
	CSRFSecure     bool
	TrustedOrigins []string

	PostgresURL        string // Empty disables the user event outbox.
	KafkaBrokers       []string
	SchemaRegistryURL  string
	OutboxTopic        string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
func Load() Config {
	return Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":8080"),
		APIBaseURL:         resolveAPIBaseURL(),
		BackendTimeout:     getDurationEnv("BACKEND_TIMEOUT", 0),
		EditCloseDelay:     getDurationEnv("EDIT_CLOSE_DELAY", time.Second),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:          getEnv("JWT_ISSUER", "i5e.identity"),
		CSRFKey:            csrfKey(getEnv("CSRF_KEY", "octofit-dev-csrf-key-32-bytes!!!")),
		CSRFSecure:         getBoolEnv("CSRF_SECURE", false),
		TrustedOrigins:     splitAndTrim(getEnv("TRUSTED_ORIGINS", "localhost:8080,127.0.0.1:8080")),
		PostgresURL:        getEnv("POSTGRES_URL", ""),
		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		SchemaRegistryURL:  getEnv("SCHEMA_REGISTRY_URL", "http://schema-registry:8081"),
		OutboxTopic:        getEnv("OUTBOX_TOPIC", "user_events"),
		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 25),
	}
}

// resolveAPIBaseURL picks the REST API root: an explicit API_BASE_URL wins,
// then the Codespaces forwarded port, then the local backend.
func resolveAPIBaseURL() string {
	if explicit := getEnv("API_BASE_URL", ""); explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if codespace := getEnv("CODESPACE_NAME", ""); codespace != "" {
		return fmt.Sprintf("https://%s-8000.app.github.dev/api", codespace)
	}
	return localAPIBaseURL
}

// csrfKey pads or truncates the configured key to the 32 bytes gorilla/csrf expects.
func csrfKey(raw string) []byte {
	key := make([]byte, 32)
	copy(key, raw)
	return key
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// Package config resolves client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// FallbackAPIURL is used when no API URL is configured.
const FallbackAPIURL = "http://localhost:5001/api/v1"

// AnswerFallback selects how answers are graded when the server is unreachable.
type AnswerFallback string

const (
	// FallbackLocal grades against the locally known correct answer.
	FallbackLocal AnswerFallback = "local"
	// FallbackNone leaves the answer ungraded and surfaces the error.
	FallbackNone AnswerFallback = "none"
)

// Config holds all client configuration.
type Config struct {
	// APIURL is the backend base URL, e.g. "https://api.levo.app/api/v1".
	APIURL string

	// HTTPTimeout bounds a single HTTP request. Default: 15s.
	HTTPTimeout time.Duration

	// RateLimit caps outgoing requests per second. 0 disables the limiter.
	RateLimit float64

	// DBPath is the encrypted local store. Empty means the XDG default.
	DBPath string

	// StoreSecret is the key material for the local store. When empty a
	// random key file is created next to the database.
	StoreSecret string

	// MaxHearts is the heart ledger capacity. Default: 5.
	MaxHearts int

	// AnswerFallback is the grading policy when the server call fails.
	AnswerFallback AnswerFallback

	Log LogConfig
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string // debug, info, warn, error
	File  string // empty means stderr
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:         FallbackAPIURL,
		HTTPTimeout:    15 * time.Second,
		MaxHearts:      5,
		AnswerFallback: FallbackLocal,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a .env file if present and builds a Config from the environment.
func Load() (Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.APIURL = strings.TrimRight(getEnv("LEVO_API_URL", cfg.APIURL), "/")
	cfg.HTTPTimeout = getEnvDuration("LEVO_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.RateLimit = getEnvFloat("LEVO_RATE_LIMIT", cfg.RateLimit)
	cfg.DBPath = getEnv("LEVO_DB", cfg.DBPath)
	cfg.StoreSecret = getEnv("LEVO_STORE_SECRET", cfg.StoreSecret)
	cfg.MaxHearts = getEnvInt("LEVO_MAX_HEARTS", cfg.MaxHearts)
	cfg.AnswerFallback = AnswerFallback(strings.ToLower(getEnv("LEVO_ANSWER_FALLBACK", string(cfg.AnswerFallback))))
	cfg.Log.Level = getEnv("LEVO_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LEVO_LOG_FILE", cfg.Log.File)

	return cfg
}

// Validate checks that all fields hold usable values.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("LEVO_API_URL cannot be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("LEVO_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("LEVO_HTTP_TIMEOUT must be > 0")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("LEVO_RATE_LIMIT must be >= 0")
	}
	if c.MaxHearts <= 0 {
		return fmt.Errorf("LEVO_MAX_HEARTS must be > 0")
	}
	switch c.AnswerFallback {
	case FallbackLocal, FallbackNone:
	default:
		return fmt.Errorf("unknown answer fallback: %q", c.AnswerFallback)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

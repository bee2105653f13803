package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration, read once at startup.
type Config struct {
	Port     string
	LogLevel string

	// Upstream scheduling API.
	CalendlyBaseURL      string
	CalendlyClientID     string
	CalendlyClientSecret string
	CalendlyTokenURL     string
	CalendlyStaticToken  string
	EventTypeUUID        string

	// Widget behaviour.
	DefaultTimezone  string
	AvailabilityOnly bool
	SessionTTL       time.Duration

	// Embed auth (optional).
	StaticTokens  string
	JWTHMACSecret string

	// Google Calendar export (optional).
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Per-client rate limit on session-mutating routes.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. The two widget identifiers are the only hard requirements.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CalendlyBaseURL:      getEnv("CALENDLY_BASE_URL", "https://calendly.com/api/booking"),
		CalendlyClientID:     os.Getenv("CALENDLY_CLIENT_ID"),
		CalendlyClientSecret: os.Getenv("CALENDLY_CLIENT_SECRET"),
		CalendlyTokenURL:     os.Getenv("CALENDLY_TOKEN_URL"),
		CalendlyStaticToken:  os.Getenv("CALENDLY_STATIC_TOKEN"),
		EventTypeUUID:        os.Getenv("EVENT_TYPE_UUID"),
		DefaultTimezone:      getEnv("DEFAULT_TIMEZONE", "America/New_York"),
		AvailabilityOnly:     getBool("AVAILABILITY_ONLY", false),
		SessionTTL:           getDuration("SESSION_TTL", 2*time.Hour),
		StaticTokens:         os.Getenv("STATIC_TOKENS"),
		JWTHMACSecret:        os.Getenv("JWT_HMAC_SECRET"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:    os.Getenv("GOOGLE_REDIRECT_URL"),
		RateLimitRPS:         getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 20),
	}

	if cfg.CalendlyClientID == "" {
		return nil, fmt.Errorf("CALENDLY_CLIENT_ID required")
	}
	if cfg.EventTypeUUID == "" {
		return nil, fmt.Errorf("EVENT_TYPE_UUID required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the tutoring service.
type Config struct {
	BindAddr                 string
	PublicBaseURL            string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	StateDir string

	OracleMode         string
	OracleBaseURL      string
	OracleAPIKey       string
	OracleChatModel    string
	OracleSuggestModel string

	DatabaseURL string
	SQLitePath  string
	SinkURL     string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		PublicBaseURL:    envOrDefault("APP_PUBLIC_BASE_URL", "http://localhost:8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "tutorly"),
		AllowAnyOrigin:   false,
		// One subdirectory per browsing context; holds the identity and
		// session slots of the session engine.
		StateDir:   envOrDefault("APP_STATE_DIR", ".state/sessions"),
		OracleMode: envOrDefault("ORACLE_MODE", "auto"),
		// The chat exchange uses the stronger model, suggestions the cheap one.
		OracleBaseURL:            envOrDefault("ORACLE_BASE_URL", "https://api.openai.com"),
		OracleChatModel:          envOrDefault("ORACLE_CHAT_MODEL", "gpt-4.1"),
		OracleSuggestModel:       envOrDefault("ORACLE_SUGGEST_MODEL", "gpt-3.5-turbo"),
		OracleAPIKey:             envTrimmed("ORACLE_API_KEY"),
		DatabaseURL:              envTrimmed("DATABASE_URL"),
		SQLitePath:               envTrimmed("APP_SQLITE_PATH"),
		SinkURL:                  envTrimmed("SUBMISSION_SINK_URL"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < time.Minute {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 1m")
	}
	if strings.TrimSpace(cfg.StateDir) == "" {
		return Config{}, fmt.Errorf("APP_STATE_DIR must not be empty")
	}
	if cfg.DatabaseURL != "" && cfg.SQLitePath != "" {
		return Config{}, fmt.Errorf("set only one of DATABASE_URL and APP_SQLITE_PATH")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}

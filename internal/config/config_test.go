package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_PUBLIC_BASE_URL",
		"APP_METRICS_NAMESPACE",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_STATE_DIR",
		"ORACLE_MODE",
		"ORACLE_BASE_URL",
		"ORACLE_API_KEY",
		"ORACLE_CHAT_MODEL",
		"ORACLE_SUGGEST_MODEL",
		"DATABASE_URL",
		"APP_SQLITE_PATH",
		"SUBMISSION_SINK_URL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.MetricsNamespace != "tutorly" {
		t.Fatalf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, "tutorly")
	}
	if cfg.OracleMode != "auto" {
		t.Fatalf("OracleMode = %q, want %q", cfg.OracleMode, "auto")
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 15*time.Second)
	}
	if cfg.SessionInactivityTimeout != 30*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want %v", cfg.SessionInactivityTimeout, 30*time.Minute)
	}
	if cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = true, want false")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_BIND_ADDR", ":9999")
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "5m")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "true")
	t.Setenv("ORACLE_API_KEY", "  sk-test  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9999" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9999")
	}
	if cfg.SessionInactivityTimeout != 5*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want %v", cfg.SessionInactivityTimeout, 5*time.Minute)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
	if cfg.OracleAPIKey != "sk-test" {
		t.Fatalf("OracleAPIKey = %q, want trimmed value", cfg.OracleAPIKey)
	}
}

func TestLoadRejectsShortInactivityTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "10s")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want timeout validation error")
	}
}

func TestLoadRejectsConflictingBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tutorly")
	t.Setenv("APP_SQLITE_PATH", "tutorly.db")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want backend conflict error")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want parse error")
	}
}

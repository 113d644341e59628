package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"DB_PATH", "SERVER_PORT", "LOG_LEVEL", "LLM_ENDPOINT", "LLM_API_KEY", "LLM_MODELS",
		"SENTRY_DSN", "ENV", "SHUTDOWN_GRACE", "RATE_LIMIT_BURST", "RATE_LIMIT_RPS", "RATE_LIMIT_CLIENT_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.RateLimit.Burst != defaultRateLimitBurst {
		t.Errorf("expected rate limit burst %d, got %d", defaultRateLimitBurst, cfg.RateLimit.Burst)
	}

	if cfg.RateLimit.RequestsPerSecond != defaultRateLimitRPS {
		t.Errorf("expected rate limit rps %d, got %v", defaultRateLimitRPS, cfg.RateLimit.RequestsPerSecond)
	}

	if cfg.RateLimit.ClientTTL != defaultRateLimitClientTTL {
		t.Errorf("expected client ttl %s, got %s", defaultRateLimitClientTTL, cfg.RateLimit.ClientTTL)
	}

	if cfg.LLMModels != nil {
		t.Errorf("expected nil LLMModels, got %v", cfg.LLMModels)
	}

	if cfg.LLMEnabled() {
		t.Errorf("expected LLM search to be disabled without credentials")
	}

	if cfg.SentryDSN != "" {
		t.Errorf("expected empty Sentry DSN, got %q", cfg.SentryDSN)
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/docs.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_ENDPOINT", "https://example.com/llm")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_MODELS", `["alpha","beta"]`)
	t.Setenv("SENTRY_DSN", "dsn")
	t.Setenv("ENV", "production")
	t.Setenv("SHUTDOWN_GRACE", "3s")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_CLIENT_TTL", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != "/tmp/docs.db" {
		t.Errorf("expected DB path %q, got %q", "/tmp/docs.db", cfg.DBPath)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}

	if cfg.LLMEndpoint != "https://example.com/llm" {
		t.Errorf("expected LLM endpoint https://example.com/llm, got %q", cfg.LLMEndpoint)
	}

	expectedModels := []string{"alpha", "beta"}
	if len(cfg.LLMModels) != len(expectedModels) {
		t.Fatalf("expected %d models, got %d", len(expectedModels), len(cfg.LLMModels))
	}

	for i, model := range cfg.LLMModels {
		if model != expectedModels[i] {
			t.Errorf("expected model %q at index %d, got %q", expectedModels[i], i, model)
		}
	}

	if !cfg.LLMEnabled() {
		t.Errorf("expected LLM search to be enabled")
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}

	if cfg.ShutdownGrace != 3*time.Second {
		t.Errorf("expected shutdown grace 3s, got %s", cfg.ShutdownGrace)
	}

	if cfg.RateLimit.Burst != 5 || cfg.RateLimit.RequestsPerSecond != 2.5 || cfg.RateLimit.ClientTTL != time.Minute {
		t.Errorf("unexpected rate limit settings %#v", cfg.RateLimit)
	}
}

func TestLoadWithModelObject(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODELS", `{"models":["gamma","delta"]}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	expected := []string{"gamma", "delta"}
	if len(cfg.LLMModels) != len(expected) {
		t.Fatalf("expected %d models, got %d", len(expected), len(cfg.LLMModels))
	}

	for i, model := range cfg.LLMModels {
		if model != expected[i] {
			t.Errorf("expected model %q at index %d, got %q", expected[i], i, model)
		}
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "invalid")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port, got nil")
	}

	if !strings.Contains(err.Error(), "invalid SERVER_PORT value") {
		t.Fatalf("expected error to mention invalid SERVER_PORT value, got %v", err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHUTDOWN_GRACE", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}

	if !strings.Contains(err.Error(), "invalid SHUTDOWN_GRACE value") {
		t.Fatalf("expected error to mention SHUTDOWN_GRACE, got %v", err)
	}
}

func TestLoadInvalidModels(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODELS", `{"models":null}`)

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when models JSON is invalid, got nil")
	}

	if !strings.Contains(err.Error(), "parsing LLM_MODELS") {
		t.Fatalf("expected error to mention parsing LLM_MODELS, got %v", err)
	}
}

package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the documentation server.
type Config struct {
	DBPath        string
	ServerPort    int
	LogLevel      string
	LLMEndpoint   string
	LLMAPIKey     string
	LLMModels     []string
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration
	RateLimit     RateLimit
}

// RateLimit configures the per-client token bucket applied to HTTP requests.
type RateLimit struct {
	Burst             int
	RequestsPerSecond float64
	ClientTTL         time.Duration
}

const (
	defaultDBPath             = "./data/docs.db"
	defaultServerPort         = 8080
	defaultLogLevel           = "info"
	defaultEnvironment        = "development"
	defaultShutdownGrace      = 10 * time.Second
	defaultRateLimitBurst     = 20
	defaultRateLimitRPS       = 10
	defaultRateLimitClientTTL = 10 * time.Minute
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:      getEnv("DB_PATH", defaultDBPath),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel),
		LLMEndpoint: os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Environment: getEnv("ENV", defaultEnvironment),
	}

	if modelsJSON := os.Getenv("LLM_MODELS"); modelsJSON != "" {
		models, err := parseModels(modelsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "parsing LLM_MODELS")
		}
		cfg.LLMModels = models
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if cfg.ShutdownGrace, err = getDuration("SHUTDOWN_GRACE", defaultShutdownGrace); err != nil {
		return nil, err
	}

	burstValue := getEnv("RATE_LIMIT_BURST", strconv.Itoa(defaultRateLimitBurst))
	if cfg.RateLimit.Burst, err = strconv.Atoi(burstValue); err != nil {
		return nil, eris.Wrapf(err, "invalid RATE_LIMIT_BURST value: %s", burstValue)
	}

	rpsValue := getEnv("RATE_LIMIT_RPS", strconv.Itoa(defaultRateLimitRPS))
	if cfg.RateLimit.RequestsPerSecond, err = strconv.ParseFloat(rpsValue, 64); err != nil {
		return nil, eris.Wrapf(err, "invalid RATE_LIMIT_RPS value: %s", rpsValue)
	}

	if cfg.RateLimit.ClientTTL, err = getDuration("RATE_LIMIT_CLIENT_TTL", defaultRateLimitClientTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LLMEnabled reports whether an LLM searcher can be configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != "" && len(c.LLMModels) > 0
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, value)
	}
	if duration <= 0 {
		return 0, eris.Errorf("invalid %s value: %s must be positive", key, value)
	}

	return duration, nil
}

func parseModels(raw string) ([]string, error) {
	// Accept either a JSON array of strings or an object with a `models` field.
	var arrayInput []string
	if err := json.Unmarshal([]byte(raw), &arrayInput); err == nil {
		return arrayInput, nil
	}

	var objectInput struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal([]byte(raw), &objectInput); err != nil {
		return nil, eris.Wrap(err, "decoding JSON")
	}

	if len(objectInput.Models) == 0 {
		return nil, eris.New("models list is empty")
	}

	return objectInput.Models, nil
}

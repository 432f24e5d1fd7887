package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the portal client configuration.
type Config struct {
	// Backend settings
	APIURL      string
	BearerToken string
	Timeout     time.Duration

	// Output settings
	OutputDir string
	Player    string
	Autoplay  bool

	// Diagnostics settings
	SentryDSN         string
	SentryEnvironment string

	// Logging settings
	LogLevel  string
	LogFormat string
}

// StubConfig holds the configuration of the local development backend.
type StubConfig struct {
	HTTPPort      int
	BearerToken   string
	Voices        []string
	MaxTextLength int

	// RateLimit caps speak requests per second; 0 disables it.
	RateLimit   int
	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads portal configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		// Backend settings
		APIURL:      getEnvString("TTS_PORTAL_API_URL", "http://localhost:8000"),
		BearerToken: os.Getenv("TTS_PORTAL_BEARER_TOKEN"),
		Timeout:     getEnvDuration("TTS_PORTAL_TIMEOUT", 2*time.Minute),

		// Output settings
		OutputDir: getEnvString("TTS_PORTAL_OUTPUT_DIR", "."),
		Player:    os.Getenv("TTS_PORTAL_PLAYER"),
		Autoplay:  getEnvBool("TTS_PORTAL_AUTOPLAY", true),

		// Diagnostics settings
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: getEnvString("SENTRY_ENVIRONMENT", "development"),

		// Logging settings
		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("TTS_PORTAL_API_URL must be an absolute URL")
	}

	if c.Timeout < 0 {
		return errors.New("TTS_PORTAL_TIMEOUT must be non-negative")
	}

	if c.OutputDir == "" {
		return errors.New("TTS_PORTAL_OUTPUT_DIR cannot be empty")
	}

	return validateLogging(c.LogLevel, c.LogFormat)
}

// DiagnosticsEnabled returns true if errors are reported to Sentry.
func (c *Config) DiagnosticsEnabled() bool {
	return c.SentryDSN != ""
}

// LoadStub reads the development backend configuration from the environment.
func LoadStub() (*StubConfig, error) {
	cfg := &StubConfig{
		HTTPPort:      getEnvInt("STUB_HTTP_PORT", 8000),
		BearerToken:   os.Getenv("STUB_BEARER_TOKEN"),
		Voices:        getEnvList("STUB_VOICES", []string{"es_ES"}),
		MaxTextLength: getEnvInt("STUB_MAX_TEXT_LENGTH", 5000),
		RateLimit:     getEnvInt("STUB_RATE_LIMIT", 0),
		CORSOrigins:   getEnvList("STUB_CORS_ORIGINS", nil),

		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AuthDisabled returns true if bearer token authentication is disabled.
func (c *StubConfig) AuthDisabled() bool {
	return c.BearerToken == ""
}

// Validate checks that configuration values are usable.
func (c *StubConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return errors.New("STUB_HTTP_PORT must be between 1 and 65535")
	}

	if c.MaxTextLength < 1 {
		return errors.New("STUB_MAX_TEXT_LENGTH must be at least 1")
	}

	if c.RateLimit < 0 {
		return errors.New("STUB_RATE_LIMIT must not be negative")
	}

	return validateLogging(c.LogLevel, c.LogFormat)
}

func validateLogging(level, format string) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[level] {
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[format] {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a list or a default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return defaultValue
	}
	return items
}

package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_STRING_VALUE"
	os.Unsetenv(key)
	assert.Equal(t, "default", getEnvString(key, "default"))

	os.Setenv(key, "custom")
	defer os.Unsetenv(key)
	assert.Equal(t, "custom", getEnvString(key, "default"))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VALUE"
	os.Unsetenv(key)
	assert.Equal(t, 42, getEnvInt(key, 42))

	os.Setenv(key, "7")
	defer os.Unsetenv(key)
	assert.Equal(t, 7, getEnvInt(key, 42))

	os.Setenv(key, "not-a-number")
	assert.Equal(t, 42, getEnvInt(key, 42), "Invalid values should fall back to the default")
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VALUE"
	os.Unsetenv(key)
	assert.Equal(t, 30*time.Second, getEnvDuration(key, 30*time.Second))

	os.Setenv(key, "2m")
	defer os.Unsetenv(key)
	assert.Equal(t, 2*time.Minute, getEnvDuration(key, 30*time.Second))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VALUE"
	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))

	os.Setenv(key, "false")
	defer os.Unsetenv(key)
	assert.False(t, getEnvBool(key, true))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func validTestConfig() *Config {
	cfg := New()
	cfg.Gemini = GeminiConfig{
		BaseURL:     "https://generativelanguage.googleapis.com",
		APIVersion:  "v1beta",
		Model:       "gemini-2.5-flash",
		Timeout:     60 * time.Second,
		MaxTokens:   8192,
		Temperature: 0.2,
		TopP:        0.9,
		TopK:        40,
	}
	cfg.Review = ReviewConfig{
		DetectMaxChars:  2000,
		DetectMinLength: 20,
		FallbackTag:     "javascript",
	}
	cfg.Database = DatabaseConfig{
		Path:            "/tmp/test.db",
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		BusyTimeout:     5000,
		ForeignKeys:     true,
		ConnMaxLife:     5 * time.Minute,
		QueryTimeout:    30 * time.Second,
	}
	cfg.Logging = LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
	cfg.Server = ServerConfig{
		Host:            "127.0.0.1",
		Port:            8520,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validTestConfig()
	assert.NoError(t, cfg.Validate(), "A complete config should validate")
}

func TestValidateWithoutAPIKey(t *testing.T) {
	// The key is checked when the review service is constructed, so a
	// key-less process can still run migrations and browse history
	cfg := validTestConfig()
	cfg.Gemini.APIKey = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad api version", func(c *Config) { c.Gemini.APIVersion = "v2" }},
		{"zero timeout", func(c *Config) { c.Gemini.Timeout = 0 }},
		{"negative max tokens", func(c *Config) { c.Gemini.MaxTokens = -1 }},
		{"zero detect max chars", func(c *Config) { c.Review.DetectMaxChars = 0 }},
		{"zero detect min length", func(c *Config) { c.Review.DetectMinLength = 0 }},
		{"empty fallback tag", func(c *Config) { c.Review.FallbackTag = "" }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromEnv(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 2000, cfg.Review.DetectMaxChars)
	assert.Equal(t, 20, cfg.Review.DetectMinLength)
	assert.Equal(t, "javascript", cfg.Review.FallbackTag)
	assert.Equal(t, 8520, cfg.Server.Port)
	assert.Contains(t, cfg.Database.Path, dir, "The database should live in the config directory")
}

func TestLoadFromEnvOverrides(t *testing.T) {
	dir := t.TempDir()

	os.Setenv("REVU_GEMINI_API_KEY", "test-key")
	os.Setenv("REVU_REVIEW_FALLBACK_TAG", "python")
	os.Setenv("REVU_SERVER_PORT", "9000")
	defer func() {
		os.Unsetenv("REVU_GEMINI_API_KEY")
		os.Unsetenv("REVU_REVIEW_FALLBACK_TAG")
		os.Unsetenv("REVU_SERVER_PORT")
	}()

	cfg, err := LoadFromEnv(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, "python", cfg.Review.FallbackTag)
	assert.Equal(t, 9000, cfg.Server.Port)
}

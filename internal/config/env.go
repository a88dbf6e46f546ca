package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables
// Parameters:
// - configDir: Directory containing config files (or empty for default)
// - configFilePath: Path to .env file (or empty for default)
func LoadFromEnv(configDir string, configFilePath string) (*Config, error) {
	cfg := New()

	// If configDir is empty, use the default
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".revu")

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	cfg.configDir = configDir

	// Default database and log paths live in the config directory
	cfg.Database.Path = filepath.Join(configDir, "revu.db")
	defaultLogPath := filepath.Join(configDir, "revu.log")

	// Use provided config file path or default
	if configFilePath == "" {
		configFilePath = filepath.Join(configDir, ".env")
	}

	// Check if ENV_FILE_PATH is set to load from a custom .env file
	envFilePath := getEnvString("ENV_FILE_PATH", "")
	if envFilePath != "" {
		// User specified a custom env file path
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFilePath, err)
		}
	} else {
		// Try to load from config directory first
		if err := godotenv.Load(configFilePath); err != nil {
			// Then try current directory as fallback
			_ = godotenv.Load() // Ignore errors if file doesn't exist
		}
	}

	// Gemini configuration
	cfg.Gemini = GeminiConfig{
		APIKey:      getEnvString("REVU_GEMINI_API_KEY", ""),
		BaseURL:     getEnvString("REVU_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		APIVersion:  getEnvString("REVU_GEMINI_API_VERSION", "v1beta"),
		Model:       getEnvString("REVU_GEMINI_MODEL", "gemini-2.5-flash"),
		Timeout:     getEnvDuration("REVU_GEMINI_TIMEOUT", 60*time.Second),
		MaxTokens:   getEnvInt("REVU_GEMINI_MAX_TOKENS", 8192),
		Temperature: getEnvFloat("REVU_GEMINI_TEMPERATURE", 0.2),
		TopP:        getEnvFloat("REVU_GEMINI_TOP_P", 0.9),
		TopK:        getEnvInt("REVU_GEMINI_TOP_K", 40),
	}

	// Review orchestration configuration
	cfg.Review = ReviewConfig{
		DetectMaxChars:  getEnvInt("REVU_REVIEW_DETECT_MAX_CHARS", 2000),
		DetectMinLength: getEnvInt("REVU_REVIEW_DETECT_MIN_LENGTH", 20),
		FallbackTag:     getEnvString("REVU_REVIEW_FALLBACK_TAG", "javascript"),
	}

	// Database configuration
	cfg.Database = DatabaseConfig{
		Path:            getEnvString("REVU_DB_PATH", cfg.Database.Path),
		BusyTimeout:     getEnvInt("REVU_DB_BUSY_TIMEOUT", 5000),
		JournalMode:     getEnvString("REVU_DB_JOURNAL_MODE", "WAL"),
		SynchronousMode: getEnvString("REVU_DB_SYNCHRONOUS_MODE", "NORMAL"),
		CacheSize:       getEnvInt("REVU_DB_CACHE_SIZE", -64000), // ~64MB
		ForeignKeys:     getEnvBool("REVU_DB_FOREIGN_KEYS", true),
		ConnMaxLife:     getEnvDuration("REVU_DB_CONN_MAX_LIFE", 5*time.Minute),
		QueryTimeout:    getEnvDuration("REVU_DB_QUERY_TIMEOUT", 30*time.Second),
	}

	// Logging configuration
	cfg.Logging = LoggingConfig{
		Level:      getEnvString("REVU_LOG_LEVEL", "info"),
		Format:     getEnvString("REVU_LOG_FORMAT", "text"),
		Output:     getEnvString("REVU_LOG_OUTPUT", defaultLogPath),
		AddSource:  getEnvBool("REVU_LOG_ADD_SOURCE", false),
		TimeFormat: getEnvString("REVU_LOG_TIME_FORMAT", time.RFC3339),
	}

	// Server configuration
	cfg.Server = ServerConfig{
		Host:            getEnvString("REVU_SERVER_HOST", "127.0.0.1"),
		Port:            getEnvInt("REVU_SERVER_PORT", 8520),
		ReadTimeout:     getEnvDuration("REVU_SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("REVU_SERVER_WRITE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getEnvDuration("REVU_SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("REVU_SERVER_MAX_BODY_BYTES", 1<<20),
	}

	// Validate the configuration
	return cfg, cfg.Validate()
}

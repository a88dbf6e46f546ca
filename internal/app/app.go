// Package app provides the application initialization and lifecycle management
package app

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/revu/internal/config"
	"github.com/tildaslashalef/revu/internal/database"
	"github.com/tildaslashalef/revu/internal/gemini"
	"github.com/tildaslashalef/revu/internal/history"
	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
)

// App represents the application instance with its dependencies
type App struct {
	Config  *config.Config
	Review  *review.Service
	History *history.Service
}

// New initializes a new application instance with all its dependencies
func New() (*App, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	loggy.Info("Application initializing",
		"version", os.Getenv("VERSION"),
		"log_level", cfg.Logging.Level,
	)

	if err := database.InitDB(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	// Embedded migrations keep a fresh install working without any setup step
	if err := database.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := initServices(cfg, db)
	if err != nil {
		return nil, err
	}

	loggy.Info("Application initialized successfully")
	return app, nil
}

// initConfig loads and sets up the application configuration
func initConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv("", "")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	config.Set(cfg)
	return cfg, nil
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initServices initializes all application services
func initServices(cfg *config.Config, db *sql.DB) (*App, error) {
	logger := loggy.GetGlobalLogger()

	historyService := history.NewService(db, logger)

	// The review service needs an API key. History browsing, export and
	// migrations do not, so a missing key is only fatal once a command
	// actually tries to review something.
	var reviewService *review.Service
	client := gemini.NewClient(gemini.Config{
		APIKey:       cfg.Gemini.APIKey,
		BaseURL:      cfg.Gemini.BaseURL,
		APIVersion:   cfg.Gemini.APIVersion,
		DefaultModel: cfg.Gemini.Model,
		Timeout:      cfg.Gemini.Timeout,
		MaxTokens:    cfg.Gemini.MaxTokens,
		Temperature:  gemini.Float64Ptr(cfg.Gemini.Temperature),
		TopP:         gemini.Float64Ptr(cfg.Gemini.TopP),
		TopK:         gemini.IntPtr(cfg.Gemini.TopK),
	})

	reviewService, err := review.NewService(client, cfg, logger)
	if err != nil {
		loggy.Warn("Review service unavailable", "error", err)
		reviewService = nil
	}

	return &App{
		Config:  cfg,
		Review:  reviewService,
		History: historyService,
	}, nil
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	loggy.Info("Shutting down application")

	if err := database.CloseDB(); err != nil {
		loggy.Error("Error closing database connection", "error", err)
	}

	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}

// RequireReview returns the review service or an error when no API key is
// configured.
func (app *App) RequireReview() (*review.Service, error) {
	if app.Review == nil {
		return nil, review.ErrMissingAPIKey
	}
	return app.Review, nil
}

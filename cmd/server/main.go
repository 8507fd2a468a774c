package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogstack/blogstack/internal/api"
	"github.com/blogstack/blogstack/internal/config"
	"github.com/blogstack/blogstack/internal/database"
	"github.com/blogstack/blogstack/internal/migrate"
	"github.com/blogstack/blogstack/internal/utils"
	"github.com/blogstack/blogstack/migrations"
)

const version = "v0.1.0"

func main() {
	// Parse command line flags
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg := config.LoadConfigOrDefault(configPath)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger := setupLogging(cfg)
	logger.Info().
		Str("version", version).
		Int("port", cfg.HTTP.Port).
		Msg("Starting blogstack API server")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Connect to database over the pooled URL
	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	// The server never applies migrations itself, that is CI's job; it
	// only warns when the schema is behind the ledger.
	checkPendingMigrations(db, logger)

	// Install the process-wide shared instance
	database.SetDefault(db)

	// Create and start HTTP server
	server, err := api.NewServer(cfg, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP server")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.HTTP.Port); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("HTTP server error")
	}

	// Graceful shutdown
	logger.Info().Msg("Starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to gracefully shutdown HTTP server")
	}

	logger.Info().Msg("Shutdown complete")
}

// setupLogging configures the logger based on configuration
func setupLogging(cfg *config.Config) zerolog.Logger {
	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		Pretty:     cfg.Server.Debug,
		CallerInfo: cfg.Server.Debug,
		LogFile:    os.Getenv("LOG_FILE"),
	}

	utils.SetupGlobalLogger(logConfig)
	return utils.NewLogger(logConfig)
}

// connectToDatabase establishes the pooled database connection
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	dsn, err := config.DSN(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db := database.NewDatabase(database.Options{
		DSN:             dsn,
		Target:          config.Redacted(cfg.Database.URL),
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        cfg.Database.LogLevel,
	})

	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info().
		Str("target", config.Redacted(cfg.Database.URL)).
		Msg("Database connection established")
	return db, nil
}

// checkPendingMigrations logs a warning when the database is behind the
// embedded ledger. Startup continues either way.
func checkPendingMigrations(db *database.Database, logger zerolog.Logger) {
	ledger, err := migrate.LoadLedger(migrations.FS)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load embedded migration ledger")
		return
	}

	plan, err := migrate.NewRunner(db.DB(), ledger, logger).Plan()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to check migration status")
		return
	}

	if len(plan.Pending) > 0 {
		logger.Warn().
			Int("pending", len(plan.Pending)).
			Msg("Database schema is behind the migration ledger")
	}
}

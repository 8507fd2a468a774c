package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogstack/blogstack/internal/config"
	"github.com/blogstack/blogstack/internal/database"
	"github.com/blogstack/blogstack/internal/seed"
	"github.com/blogstack/blogstack/internal/utils"
)

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
	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		Pretty:     cfg.Server.Debug,
		CallerInfo: cfg.Server.Debug,
	}
	utils.SetupGlobalLogger(logConfig)
	logger := utils.NewLogger(logConfig)

	// Connect to database
	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	// Reset the posts table to the sample dataset
	seeder := seed.NewSeeder(db.DB(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seeder.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Seeding failed")
	}
}

// connectToDatabase establishes the pooled database connection
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	dsn, err := config.DSN(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db := database.NewDatabase(database.Options{
		DSN:          dsn,
		Target:       config.Redacted(cfg.Database.URL),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		LogLevel:     cfg.Database.LogLevel,
	})

	if err := db.Connect(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, err
	}

	logger.Info().
		Str("target", config.Redacted(cfg.Database.URL)).
		Msg("Database connection established")
	return db, nil
}

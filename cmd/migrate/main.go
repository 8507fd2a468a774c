package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogstack/blogstack/internal/config"
	"github.com/blogstack/blogstack/internal/database"
	"github.com/blogstack/blogstack/internal/migrate"
	"github.com/blogstack/blogstack/internal/utils"
	"github.com/blogstack/blogstack/migrations"
)

func main() {
	// Parse command line flags
	var (
		configPath string
		ledgerDir  string
		status     bool
		verify     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&ledgerDir, "dir", "", "Load the ledger from a directory instead of the embedded copy")
	flag.BoolVar(&status, "status", false, "List applied and pending entries without applying anything")
	flag.BoolVar(&verify, "verify", false, "Audit checksums and ordering without applying anything")
	flag.Parse()

	// Load configuration
	cfg := config.LoadConfigOrDefault(configPath)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger := setupLogging(cfg)

	// Load the migration ledger
	ledger, err := loadLedger(ledgerDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load migration ledger")
	}

	logger.Info().
		Int("entries", ledger.Len()).
		Str("target", config.Redacted(cfg.Database.MigrationURL())).
		Msg("Loaded migration ledger")

	// Migrations always go over the direct (non-pooled) connection
	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	runner := migrate.NewRunner(db.DB(), ledger, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case status:
		if err := printStatus(runner); err != nil {
			logger.Fatal().Err(err).Msg("Status check failed")
		}

	case verify:
		if _, err := runner.Plan(); err != nil {
			logger.Fatal().Err(err).Msg("Ledger verification failed")
		}
		logger.Info().Msg("Ledger and applied record are consistent")

	default:
		if err := runner.Apply(ctx); err != nil {
			// Classify the failure so the CI log says what went wrong
			// without anyone reading a stack trace.
			event := logger.Fatal().Err(err)
			switch {
			case utils.IsConnectionError(err):
				event.Msg("Migration failed: database unreachable")
			case utils.IsOrderingError(err):
				event.Msg("Migration refused: ledger and applied record have diverged")
			case utils.IsChecksumError(err):
				event.Msg("Migration refused: an applied entry was edited after the fact")
			case utils.IsStatementError(err):
				event.Msg("Migration failed: entry rolled back, fix it and re-run")
			default:
				event.Msg("Migration failed")
			}
		}
	}
}

// loadLedger loads the embedded ledger, or one from disk when -dir is set.
func loadLedger(dir string) (*migrate.Ledger, error) {
	var fsys fs.FS = migrations.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	return migrate.LoadLedger(fsys)
}

// printStatus lists every ledger entry with its applied/pending state.
func printStatus(runner *migrate.Runner) error {
	plan, err := runner.Plan()
	if err != nil {
		return err
	}

	for _, record := range plan.Applied {
		fmt.Printf("applied  %s  %s\n", record.Name, record.AppliedAt.UTC().Format(time.RFC3339))
	}
	for _, entry := range plan.Pending {
		fmt.Printf("pending  %s\n", entry.Name)
	}

	fmt.Printf("\n%d applied, %d pending\n", len(plan.Applied), len(plan.Pending))
	return nil
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

// connectToDatabase establishes the direct database connection
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	connString := cfg.Database.MigrationURL()

	dsn, err := config.DSN(connString)
	if err != nil {
		return nil, err
	}

	db := database.NewDatabase(database.Options{
		DSN:    dsn,
		Target: config.Redacted(connString),
		// One process, one apply loop; no point in a wide pool.
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
		Str("target", config.Redacted(connString)).
		Msg("Database connection established")
	return db, nil
}

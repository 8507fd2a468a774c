package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogstack/blogstack/internal/utils"
)

// Options configures a Database connection.
type Options struct {
	// DSN is the connection string in keyword/value form.
	DSN string
	// Target is a redacted label for the connection, safe to log and to
	// embed in errors. Never put the DSN here.
	Target string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// LogLevel controls GORM's own statement logging
	// (silent, error, warn, info).
	LogLevel string
}

// Database manages the database connection and operations
type Database struct {
	db   *gorm.DB
	opts Options
	mu   sync.RWMutex
}

// NewDatabase creates a new Database instance
func NewDatabase(opts Options) *Database {
	return &Database{opts: opts}
}

// Connect establishes a connection to the PostgreSQL database with retry logic
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(d.getLogLevel()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	// Retry the initial dial only; once connected there are no retries
	// anywhere else.
	maxRetries := 5
	retryDelay := 2 * time.Second

	var err error
	for i := 0; i < maxRetries; i++ {
		d.db, err = gorm.Open(postgres.Open(d.opts.DSN), gormConfig)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			time.Sleep(retryDelay)
			retryDelay *= 2 // Exponential backoff
		}
	}

	if err != nil {
		return &utils.ConnectionError{
			Target: d.opts.Target,
			Cause:  fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, err),
		}
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns := d.opts.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	maxIdleConns := d.opts.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 10
	}
	connMaxLifetime := d.opts.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = time.Hour
	}
	connMaxIdleTime := d.opts.ConnMaxIdleTime
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// Health checks the database connection health
func (d *Database) Health(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database not connected")
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return &utils.ConnectionError{Target: d.opts.Target, Cause: err}
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	d.db = nil
	return nil
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// SetDB sets the underlying gorm.DB instance (for testing)
func (d *Database) SetDB(db *gorm.DB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.db = db
}

// WithTransaction executes a function within a database transaction
func (d *Database) WithTransaction(fn func(*gorm.DB) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database not connected")
	}

	// Default isolation: read committed on postgres, which is all the
	// callers need.
	return d.db.Transaction(fn)
}

// getLogLevel returns the GORM log level from options
func (d *Database) getLogLevel() logger.LogLevel {
	switch d.opts.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Error
	}
}

// Process-wide shared instance. The connection is established once at
// startup and reused for the lifetime of the process so the pool is shared
// across requests; there is no teardown before exit.
var (
	defaultDB *Database
	defaultMu sync.RWMutex
)

// Default returns the process-wide Database instance, or nil before
// SetDefault has been called.
func Default() *Database {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultDB
}

// SetDefault installs the process-wide Database instance.
func SetDefault(db *Database) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDB = db
}

package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/blogstack/blogstack/internal/models"
	"github.com/blogstack/blogstack/internal/utils"
)

// advisoryLockKey is the fixed pg_advisory_lock key shared by every runner
// instance, so two concurrent CI jobs against the same database serialize
// instead of racing on the record table.
const advisoryLockKey int64 = 7230174228390875422

// Plan is the classification of the ledger against the applied-migrations
// record of one database.
type Plan struct {
	// Applied holds the record rows, ascending by version.
	Applied []models.SchemaMigration
	// Pending holds the ledger entries not yet recorded, ascending.
	Pending []Entry
}

// Runner applies pending ledger entries to a target database. It is the
// only writer of the schema_migrations table. One runner per database at a
// time; concurrent invocations are serialized by an advisory lock.
type Runner struct {
	db     *gorm.DB
	ledger *Ledger
	logger zerolog.Logger
}

// NewRunner creates a new migration runner
func NewRunner(db *gorm.DB, ledger *Ledger, logger zerolog.Logger) *Runner {
	return &Runner{
		db:     db,
		ledger: ledger,
		logger: logger,
	}
}

// Plan compares the ledger against the applied-migrations record and
// returns the applied/pending split. It fails without touching the schema
// when the two have diverged:
//
//   - a recorded entry missing from the ledger, or recorded with a
//     different checksum, is corruption of the ledger's immutability;
//   - a pending entry older than an applied one means the ledger was
//     rewritten under an already-migrated database.
func (r *Runner) Plan() (*Plan, error) {
	if err := r.ensureRecordTable(); err != nil {
		return nil, err
	}

	var applied []models.SchemaMigration
	if err := r.db.Order("version asc").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	byVersion := make(map[string]Entry, r.ledger.Len())
	for _, entry := range r.ledger.Entries() {
		byVersion[entry.Version] = entry
	}

	for _, record := range applied {
		entry, ok := byVersion[record.Version]
		if !ok {
			return nil, &utils.OrderingError{
				Entry:  record.Name,
				Reason: "recorded as applied but missing from the ledger",
			}
		}
		if entry.Checksum != record.Checksum {
			return nil, &utils.ChecksumError{
				Entry:    entry.Name,
				Recorded: record.Checksum,
				Actual:   entry.Checksum,
			}
		}
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, record := range applied {
		appliedSet[record.Version] = true
	}

	var pending []Entry
	for _, entry := range r.ledger.Entries() {
		if appliedSet[entry.Version] {
			if len(pending) > 0 {
				return nil, &utils.OrderingError{
					Entry:  pending[0].Name,
					Reason: fmt.Sprintf("pending but precedes applied entry %s", entry.Name),
				}
			}
			continue
		}
		pending = append(pending, entry)
	}

	return &Plan{Applied: applied, Pending: pending}, nil
}

// Apply executes all pending entries in ascending order, one transaction
// per entry. The first failure rolls back that entry, leaves it pending and
// stops; nothing later is attempted. Running against a fully applied
// database is a no-op. There are no retries at any level.
func (r *Runner) Apply(ctx context.Context) error {
	logger := r.logger.With().Str("run_id", uuid.NewString()).Logger()

	unlock, err := r.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	plan, err := r.Plan()
	if err != nil {
		return err
	}

	if len(plan.Pending) == 0 {
		logger.Info().
			Int("applied", len(plan.Applied)).
			Msg("Ledger fully applied, nothing to do")
		return nil
	}

	logger.Info().
		Int("applied", len(plan.Applied)).
		Int("pending", len(plan.Pending)).
		Msg("Applying pending migrations")

	for _, entry := range plan.Pending {
		if err := r.applyEntry(ctx, entry, logger); err != nil {
			return err
		}
	}

	logger.Info().
		Int("count", len(plan.Pending)).
		Msg("All pending migrations applied")
	return nil
}

// applyEntry runs one entry's statements and records it, atomically where
// the database supports transactional DDL.
func (r *Runner) applyEntry(ctx context.Context, entry Entry, logger zerolog.Logger) error {
	statements := SplitStatements(entry.SQL)
	if len(statements) == 0 {
		return &utils.StatementError{
			Entry:     entry.Name,
			Statement: 0,
			Cause:     fmt.Errorf("entry contains no statements"),
		}
	}

	logger.Info().
		Str("version", entry.Version).
		Str("name", entry.Name).
		Int("statements", len(statements)).
		Msg("Running migration")

	start := time.Now()

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to start transaction: %w", tx.Error)
	}

	for i, statement := range statements {
		if err := tx.Exec(statement).Error; err != nil {
			tx.Rollback()
			return &utils.StatementError{
				Entry:     entry.Name,
				Statement: i + 1,
				Cause:     err,
			}
		}
	}

	record := &models.SchemaMigration{
		Version:   entry.Version,
		Name:      entry.Name,
		Checksum:  entry.Checksum,
		AppliedAt: time.Now().UTC(),
	}

	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", entry.Name, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", entry.Name, err)
	}

	logger.Info().
		Str("version", entry.Version).
		Str("name", entry.Name).
		Dur("duration", time.Since(start)).
		Msg("Migration completed successfully")

	return nil
}

// ensureRecordTable creates the schema_migrations table if it is missing.
func (r *Runner) ensureRecordTable() error {
	if err := r.db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// acquireLock takes the advisory lock on postgres. Advisory locks are held
// per connection, so a dedicated connection is pinned until unlock. Other
// dialects (sqlite in tests) have no equivalent and rely on the caller
// running a single instance.
func (r *Runner) acquireLock(ctx context.Context) (func(), error) {
	if r.db.Dialector.Name() != "postgres" {
		return func() {}, nil
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, &utils.ConnectionError{Cause: err}
	}

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", advisoryLockKey); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	r.logger.Debug().Msg("Acquired migration advisory lock")

	return func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockKey); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to release migration advisory lock")
		}
		conn.Close()
	}, nil
}

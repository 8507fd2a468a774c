package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the migration pipeline can hit.
var (
	// ErrConnection is returned when the database is unreachable or
	// authentication fails. Nothing has been recorded when this is seen.
	ErrConnection = errors.New("connection error")

	// ErrStatement is returned when a DDL statement inside a ledger entry
	// fails. The entry's transaction has been rolled back and the entry
	// remains pending.
	ErrStatement = errors.New("statement error")

	// ErrOrdering is returned when the ledger on disk and the applied
	// record in the database have diverged: a recorded entry is missing
	// from the ledger, or a pending entry precedes an applied one.
	ErrOrdering = errors.New("ordering violation")

	// ErrChecksum is returned when a ledger entry's content no longer
	// matches the checksum recorded when it was applied.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("not found")
)

// ConnectionError wraps a failure to reach or authenticate with the database.
type ConnectionError struct {
	Target string
	Cause  error
}

func (e *ConnectionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("connection to %s failed: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("connection failed: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnection
}

// StatementError carries the failing entry and statement position.
type StatementError struct {
	Entry     string
	Statement int
	Cause     error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("entry %s statement %d failed: %v", e.Entry, e.Statement, e.Cause)
}

func (e *StatementError) Unwrap() error {
	return ErrStatement
}

// OrderingError describes a divergence between ledger and applied record.
type OrderingError struct {
	Entry  string
	Reason string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("ordering violation at %s: %s", e.Entry, e.Reason)
}

func (e *OrderingError) Unwrap() error {
	return ErrOrdering
}

// ChecksumError reports an applied entry whose script was edited afterwards.
type ChecksumError struct {
	Entry    string
	Recorded string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: recorded %s, ledger has %s", e.Entry, e.Recorded, e.Actual)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksum
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Error checking functions

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsStatementError checks if an error is a statement error
func IsStatementError(err error) bool {
	return errors.Is(err, ErrStatement)
}

// IsOrderingError checks if an error is an ordering violation
func IsOrderingError(err error) bool {
	return errors.Is(err, ErrOrdering)
}

// IsChecksumError checks if an error is a checksum mismatch
func IsChecksumError(err error) bool {
	return errors.Is(err, ErrChecksum)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

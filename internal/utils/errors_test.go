package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{
			name:     "connection error",
			err:      &ConnectionError{Target: "db.example.com:5432/blog", Cause: errors.New("refused")},
			sentinel: ErrConnection,
			check:    IsConnectionError,
		},
		{
			name:     "statement error",
			err:      &StatementError{Entry: "20240115093000_create_posts", Statement: 2, Cause: errors.New("syntax error")},
			sentinel: ErrStatement,
			check:    IsStatementError,
		},
		{
			name:     "ordering error",
			err:      &OrderingError{Entry: "20240116120000_create_tags", Reason: "pending but precedes applied entry"},
			sentinel: ErrOrdering,
			check:    IsOrderingError,
		},
		{
			name:     "checksum error",
			err:      &ChecksumError{Entry: "20240115093000_create_posts", Recorded: "aaa", Actual: "bbb"},
			sentinel: ErrChecksum,
			check:    IsChecksumError,
		},
		{
			name:     "not found error",
			err:      &NotFoundError{Resource: "post", ID: "42"},
			sentinel: ErrNotFound,
			check:    IsNotFoundError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.ErrorIs(t, tt.err, tt.sentinel)

			// Classification survives wrapping.
			wrapped := fmt.Errorf("outer context: %w", tt.err)
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	connErr := &ConnectionError{Target: "db:5432/app", Cause: errors.New("refused")}
	assert.Contains(t, connErr.Error(), "db:5432/app")

	stmtErr := &StatementError{Entry: "20240115093000_x", Statement: 3, Cause: errors.New("boom")}
	assert.Contains(t, stmtErr.Error(), "statement 3")

	checksumErr := &ChecksumError{Entry: "e", Recorded: "aaa", Actual: "bbb"}
	assert.Contains(t, checksumErr.Error(), "aaa")
	assert.Contains(t, checksumErr.Error(), "bbb")
}

func TestErrorClassesAreDistinct(t *testing.T) {
	stmtErr := &StatementError{Entry: "e", Statement: 1, Cause: errors.New("boom")}

	assert.False(t, IsConnectionError(stmtErr))
	assert.False(t, IsOrderingError(stmtErr))
	assert.False(t, IsChecksumError(stmtErr))
}

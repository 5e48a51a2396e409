package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/pomolit/internal/logger"
)

var (
	// ErrNotReady is returned when the database handle has not been opened yet.
	ErrNotReady = errors.New("database not found")
	// ErrNotFound is returned when a lookup by id matches no rows.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an optimistic update lost a race with another writer.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrInvalidIdentifier is returned for table or column names that are not plain identifiers.
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// OpError wraps an engine failure with the operation and table it happened on.
type OpError struct {
	Op    string
	Table string
	Err   error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.Table == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Wrap maps sql.ErrNoRows to ErrNotFound, passes sentinel errors through, and
// logs and wraps everything else in an OpError.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrNotReady) {
		return err
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	logger.Error("Database operation failed", "op", op, "table", table, "error", err)
	return &OpError{Op: op, Table: table, Err: err}
}

package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/pomolit/internal/keyring"
	"github.com/julianstephens/pomolit/internal/logger"
	"github.com/julianstephens/pomolit/internal/storage"
)

// UserMessage turns store failures into the coarse messages shown on the
// command line. Engine details stay in the log file.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, storage.ErrNotReady):
		return "database not found: run 'pomolit init' first"
	case errors.Is(err, storage.ErrNotFound):
		return "record not found"
	case errors.Is(err, storage.ErrConflict):
		return "record was changed by another writer, reload and try again"
	case errors.Is(err, keyring.ErrNotFound):
		return "no cloud credentials stored: run 'pomolit cloud login' first"
	case errors.Is(err, keyring.ErrKeyringUnavailable):
		return "OS keyring is not available"
	}
	var opErr *storage.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("%s %s failed, see log for details", opErr.Op, opErr.Table)
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", UserMessage(err))
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}

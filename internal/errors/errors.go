package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habithero/internal/logger"
)

var (
	// ErrInvalidDateKey is returned when a calendar-day string is not a valid YYYY-MM-DD date
	ErrInvalidDateKey = stderrors.New("invalid date key")
	// ErrNotFound is returned when an operation targets a habit absent from the store
	ErrNotFound = stderrors.New("habit not found")
	// ErrUnauthorized is returned when the acting identity does not own the targeted record
	ErrUnauthorized = stderrors.New("habit belongs to another user")
	// ErrStoreUnavailable is returned when the store fails for reasons outside the request
	ErrStoreUnavailable = stderrors.New("store unavailable")
	// ErrValidation is returned when user input is rejected
	ErrValidation = stderrors.New("invalid input")
)

// Unavailable wraps a driver or transport failure as ErrStoreUnavailable.
// A nil err yields nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// Kind returns a short machine-readable name for the taxonomy member err belongs to
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrInvalidDateKey):
		return "invalid_date_key"
	case stderrors.Is(err, ErrNotFound):
		return "not_found"
	case stderrors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case stderrors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case stderrors.Is(err, ErrValidation):
		return "validation"
	default:
		return "unknown"
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", Kind(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

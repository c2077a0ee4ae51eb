package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitquest/internal/logger"
)

// Engine error kinds. Every rejected operation leaves engine state unchanged,
// so all of these are recoverable by changing the input and trying again.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrSlotLimitExceeded    = errors.New("habit slot limit reached")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// NotFound wraps ErrNotFound with a formatted message
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Validation wraps ErrValidation with a formatted message
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// SlotLimit reports that no slot is free for a new habit
func SlotLimit(used, available int) error {
	return fmt.Errorf("%w: %d of %d slots in use", ErrSlotLimitExceeded, used, available)
}

// ConfirmationRequired reports that an action would discard progress
func ConfirmationRequired(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfirmationRequired, fmt.Sprintf(format, args...))
}

// Hint returns a short user-facing suggestion for a known error kind, or ""
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrSlotLimitExceeded):
		return "Delete a habit or keep every habit complete for 7 days in a row to unlock more slots."
	case errors.Is(err, ErrConfirmationRequired):
		return "Re-run with --confirm to reset the streak and mastery progress of this habit."
	case errors.Is(err, ErrNotFound):
		return "Run 'habitquest habit list' to see habit and task ids."
	default:
		return ""
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
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
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "       %s\n", hint)
		}
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

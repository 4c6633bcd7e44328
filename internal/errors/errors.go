package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/DarkZangetsu/medcare/internal/logger"
)

var (
	// ErrInvalidSchedule is matched by InvalidScheduleError
	ErrInvalidSchedule = stderrors.New("reminder date must be in the future")
	// ErrPermissionDenied is matched by PermissionDeniedError
	ErrPermissionDenied = stderrors.New("notification permission denied")
	// ErrRemote is matched by RemoteError
	ErrRemote = stderrors.New("remote API call failed")
	// ErrNotFound is matched by NotFoundError
	ErrNotFound = stderrors.New("not found")
	// ErrValidation is matched by ValidationError
	ErrValidation = stderrors.New("invalid input")
)

// InvalidScheduleError is returned when a trigger instant is not strictly in
// the future, or when a reminder yields no trigger at all.
type InvalidScheduleError struct {
	Trigger time.Time
	Now     time.Time
	Reason  string
}

func (e *InvalidScheduleError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %s", ErrInvalidSchedule, e.Reason)
	}
	return fmt.Sprintf("%v: %s is not after %s",
		ErrInvalidSchedule, e.Trigger.Format(time.RFC3339), e.Now.Format(time.RFC3339))
}

func (e *InvalidScheduleError) Is(target error) bool { return target == ErrInvalidSchedule }

// PermissionDeniedError is returned when notifications are refused.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return ErrPermissionDenied.Error()
	}
	return fmt.Sprintf("%v: %s", ErrPermissionDenied, e.Reason)
}

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

// RemoteError wraps a failed backend call (network or server side).
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// NotFoundError is returned when an id is absent from the current set.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is returned for malformed user input.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Remote wraps err in a RemoteError unless it is nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}

// Invalid wraps err in a ValidationError unless it is nil.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
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

// Package errors defines the error kinds shared by the habit core and the
// helpers the command line uses to report them.
package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habithero/internal/logger"
)

// Kinds, for use with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error carries the operation that failed along with its kind.
type Error struct {
	Op   string // e.g. "registry.Create", "ledger.Record"
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches the kind as well as anything in the wrapped chain.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func Validation(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches an operation and kind to an underlying error.
func Wrap(op string, kind error, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Msg: msg, Err: err}
}

// KindOf reports which kind err belongs to, or nil if it is none of them.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case ErrValidation:
		return fmt.Sprintf("Error (invalid input): %v", err)
	case ErrNotFound:
		return fmt.Sprintf("Error (not found): %v", err)
	case ErrConflict:
		return fmt.Sprintf("Error (conflict): %v", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

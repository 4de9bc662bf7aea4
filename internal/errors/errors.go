// Package errors holds the sentinel errors shared by the transaction,
// outbox and lambda layers. Handlers map them to HTTP status codes and
// Lambda error results.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the transaction or event does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the write clashes with stored data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means an event, body or parameter was rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable means a downstream dependency (database, bus, webhook)
	// could not serve the call.
	ErrUnavailable = errors.New("unavailable")
)

// New returns a plain error with message.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether err matches target anywhere in its chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Kind returns the first sentinel err matches, or nil for unclassified
// errors.
func Kind(err error) error {
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnavailable} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

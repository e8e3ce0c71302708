package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrIDNotFound is returned when no object matches the requested id.
	ErrIDNotFound = errors.New("metadata: id not found")

	// ErrNameNotFound is returned when no object matches the requested name.
	ErrNameNotFound = errors.New("metadata: name not found")

	// ErrNotFound is returned when no object matches a lookup on another key.
	ErrNotFound = errors.New("metadata: not found")

	// ErrInvalidParameter is returned for missing or invalid fields, an
	// unexpected affected-row count, or an empty result where rows were expected.
	ErrInvalidParameter = errors.New("metadata: invalid parameter")

	// ErrAlreadyExists is returned when inserting an object whose name is taken.
	ErrAlreadyExists = errors.New("metadata: name already exists")

	// ErrInternal is returned for malformed documents, decode failures and
	// backend failures.
	ErrInternal = errors.New("metadata: internal error")

	// ErrNotSupported is returned for unsupported lookup keys.
	ErrNotSupported = errors.New("metadata: not supported")

	// ErrUnknown is the fallback for uninitialized state.
	ErrUnknown = errors.New("metadata: unknown error")
)

// Errorf wraps kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Internal joins a backend failure to ErrInternal so callers can classify
// it without inspecting driver errors.
func Internal(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrInternal, op, err)
}

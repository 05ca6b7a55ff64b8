package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed field; the caller must fix
	// the request before resubmitting.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to a room that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is reserved for strict uniqueness violations. Every write
	// path is an idempotent upsert or an append, so nothing returns it today.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable marks a persistence failure or timeout. All writes
	// are appends or idempotent upserts, so retrying is always safe.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

func notFound(what, key string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, what, key)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

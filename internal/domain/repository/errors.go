package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup. Ownership-scoped
	// lookups return it for both missing and not-owned rows so callers cannot
	// tell the two apart.
	ErrNotFound = errors.New("repository: not found")

	// ErrConflict is returned when a unique constraint rejects the write.
	ErrConflict = errors.New("repository: conflict")
)

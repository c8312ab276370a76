package application

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing resource and a resource the caller
	// does not own. The two are deliberately indistinguishable so callers
	// cannot enumerate other users' resources.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict reports a duplicate unique field, e.g. a taken username.
	ErrConflict = errors.New("resource already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a field value outside its domain bounds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

package store

import "errors"

var (
	// ErrNotFound means no row matched the given slug.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a unique constraint or foreign key check was
	// violated.
	ErrConflict = errors.New("record conflict")
)

package repository

import "errors"

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means a record with the same key already exists.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

var (
	ErrSessionNotFound = ErrNotFound
)

// Package storage defines record stores and their errors.
package storage

import "errors"

// Storage errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a record whose ID exists.
	// Receipts are immutable once stored.
	ErrDuplicateKey = errors.New("duplicate key: receipts cannot be replaced")

	// ErrInvalidInput is returned for a nil record or an empty ID.
	ErrInvalidInput = errors.New("invalid input")
)

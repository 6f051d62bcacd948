package storage

import "errors"

var (
	// ErrDuplicate is returned when a drink title is already taken.
	ErrDuplicate = errors.New("resource already exists")

	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrMalformedRecipe is returned when a stored recipe cannot be decoded.
	ErrMalformedRecipe = errors.New("malformed recipe")
)

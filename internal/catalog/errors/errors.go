// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product matches the given reference.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProduct is returned when a write violates the unique
	// constraint on title or slug.
	ErrDuplicateProduct = errors.New("product with the same title or slug already exists")

	// ErrInvalidProductID is returned when an identifier is not a well-formed
	// UUID, before any storage access happens.
	ErrInvalidProductID = errors.New("invalid product id")
)

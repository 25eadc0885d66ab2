// Package storage defines domain-specific errors
package storage

import "errors"

var (
	ErrNotFound    = errors.New("collection not found")
	ErrWriteFailed = errors.New("storage write failed")
)

// Package checkpoint defines domain-specific errors
package checkpoint

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Record validation errors
	ErrNilRecord        = errors.New("checkpoint record cannot be nil")
	ErrInvalidRecordID  = errors.New("invalid checkpoint record ID")
	ErrInvalidThreadID  = errors.New("invalid thread ID")
	ErrNilChannelValues = errors.New("checkpoint channel values cannot be nil")

	// Persistence errors
	ErrRecordNotFound = errors.New("checkpoint record not found")
	ErrAppendFailed   = errors.New("failed to append checkpoint record")
)

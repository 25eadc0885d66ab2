// Package thread defines domain-specific errors
package thread

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrInvalidThreadID        = errors.New("invalid thread ID")
	ErrInvalidStatus          = errors.New("invalid thread status")
	ErrInvalidInteractionType = errors.New("invalid interaction type")
	ErrThreadNotFound         = errors.New("thread metadata not found")
)

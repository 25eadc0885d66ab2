package dto

import "errors"

// Application-level errors
var (
	ErrMissingThreadID     = errors.New("thread ID is required")
	ErrMissingInteraction  = errors.New("interruption carries no interaction request")
	ErrBundleUnavailable   = errors.New("bundle could not be rehydrated")
	ErrPresentationFailed  = errors.New("interaction presentation failed")
	ErrAnalyzerMissing     = errors.New("required analyzer collaborator is not configured")
	ErrExecutorMissing     = errors.New("no graph executor is configured")
	ErrServiceNotInCatalog = errors.New("service has no catalog definition")
)

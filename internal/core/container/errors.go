// Package container defines domain-specific errors
package container

import "errors"

var (
	// ErrServiceNotAvailable is raised when resolution is attempted for
	// a name outside the container's declared membership.
	ErrServiceNotAvailable = errors.New("service not available in container")
)

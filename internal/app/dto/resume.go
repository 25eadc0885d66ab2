package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ResumeRequest asks the runtime to continue an interrupted thread with
// the caller's response to its pending interaction.
type ResumeRequest struct {
	ThreadID string                 `json:"thread_id" validate:"required"`
	Response map[string]interface{} `json:"response,omitempty"`
}

// Validate checks the request; a missing thread identity is a
// configuration error, not a not-found.
func (r *ResumeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingThreadID, err)
	}
	return nil
}

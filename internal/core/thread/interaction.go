// Package thread provides interaction request definitions
package thread

// InteractionType classifies what kind of external input a paused
// thread is waiting for.
type InteractionType string

const (
	InteractionTextInput InteractionType = "text_input"
	InteractionApproval  InteractionType = "approval"
	InteractionChoice    InteractionType = "choice"
)

// InteractionRequest describes the external (often human) input a
// paused thread is waiting for. Created once per interruption and
// immutable afterwards; read by whatever surface presents it and by the
// eventual resume call.
type InteractionRequest struct {
	ID              string                 `json:"id"`
	ThreadID        string                 `json:"thread_id"`
	NodeName        string                 `json:"node_name"`
	InteractionType InteractionType        `json:"interaction_type"`
	Prompt          string                 `json:"prompt"`
	Context         map[string]interface{} `json:"context,omitempty"`
	Options         []string               `json:"options,omitempty"`
	// TimeoutSeconds is advisory metadata only; enforcement is a
	// higher-level sweeper's responsibility.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// Validate ensures request integrity.
func (r *InteractionRequest) Validate() error {
	if r.ThreadID == "" {
		return ErrInvalidThreadID
	}
	if r.InteractionType == "" {
		return ErrInvalidInteractionType
	}
	return nil
}

package debate

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOrganization indicates a run started without an organization.
	ErrNoOrganization = errors.New("debate: no organization in state")

	// ErrUnknownAgent indicates the moderator chose an agent that does not
	// take part in the debate.
	ErrUnknownAgent = errors.New("agent not in debate")
)

// ResolutionError reports a decided next agent that could not be resolved.
type ResolutionError struct {
	// Name is the agent name the moderator decided on.
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("debate: resolve agent %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

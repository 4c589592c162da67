package estate

import (
	"errors"
	"fmt"

	"estate/server/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("record not found")

// ValidationError reports a violated data-integrity rule
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransitionError reports a workflow operation invoked in a state that forbids it
type TransitionError struct {
	Operation string
	State     models.PropertyState
	Message   string
}

func (e *TransitionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cannot %s a property in state %q", e.Operation, e.State)
}

func invalid(rule, message string) error {
	return &ValidationError{Rule: rule, Message: message}
}

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransition reports whether err carries a TransitionError
func IsTransition(err error) bool {
	var t *TransitionError
	return errors.As(err, &t)
}

package core

import "fmt"

// MissingInputError means a mode that needs input data had none to use.
type MissingInputError struct {
	Message string
}

func (e *MissingInputError) Error() string {
	return e.Message
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

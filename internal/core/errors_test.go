package core

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	baseErr := errors.New("base error")

	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name: "with field",
			err: &ValidationError{
				Field:   "temp",
				Message: "must be between 0 and 2",
				Err:     baseErr,
			},
			expected: "temp: must be between 0 and 2",
		},
		{
			name: "without field",
			err: &ValidationError{
				Message: "invalid input",
				Err:     baseErr,
			},
			expected: "invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.expected)
			}
			if !errors.Is(tt.err, baseErr) {
				t.Error("ValidationError should unwrap to base error")
			}
		})
	}
}

func TestMissingInputError(t *testing.T) {
	err := error(&MissingInputError{Message: "No input data given to edit request"})

	if err.Error() != "No input data given to edit request" {
		t.Errorf("unexpected message %q", err.Error())
	}

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Error("errors.As should match MissingInputError")
	}
}

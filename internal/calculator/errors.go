package calculator

import "fmt"

// ValidationError reports an invalid indicator parameter.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func requirePositive(field string, v int) error {
	if v <= 0 {
		return &ValidationError{Field: field, Err: fmt.Errorf("must be positive, got %d", v)}
	}
	return nil
}

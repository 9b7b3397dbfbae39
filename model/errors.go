package model

import "fmt"

// ValidationError reports a record or request that does not satisfy its schema.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Record is implemented by every entity stored in a collection document.
type Record interface {
	RecordID() string
	Validate() error
}

package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	// ErrInvalidField is a validation failure for a field name the entity
	// does not declare.
	ErrInvalidField = fmt.Errorf("%w: invalid field", ErrValidation)
	ErrFormat       = errors.New("malformed value")
	ErrNotFound     = errors.New("not found")
)

// FieldError is a rejected update. Kind is one of the sentinels above and
// Message is safe to show to the operator.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func (e *FieldError) Unwrap() error { return e.Kind }

func fieldErr(kind error, field, format string, args ...any) error {
	return &FieldError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

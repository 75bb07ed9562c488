package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error on a single field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// FieldError is one entry of an ErrInvalidData response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrInvalidData carries every field problem found in one request body.
type ErrInvalidData struct {
	Errors []FieldError
}

func (e *ErrInvalidData) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid data: " + strings.Join(parts, "; ")
}

// ErrConflict indicates a resource already exists (e.g. duplicate provider name).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates a missing or invalid API token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// Validation accumulates field errors while checking an input.
type Validation struct {
	errs []FieldError
}

// Check records msg against field when ok is false.
func (v *Validation) Check(ok bool, field, msg string) {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Message: msg})
	}
}

// Merge appends the errors of another validation, prefixing their fields.
func (v *Validation) Merge(prefix string, other *Validation) {
	for _, fe := range other.errs {
		v.errs = append(v.errs, FieldError{Field: prefix + fe.Field, Message: fe.Message})
	}
}

// Err returns nil when nothing failed, otherwise an *ErrInvalidData.
func (v *Validation) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ErrInvalidData{Errors: v.errs}
}

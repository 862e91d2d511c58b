package policy

import (
	"errors"
	"fmt"
)

// AuthRequiredError indicates a write operation was attempted without a store
// handle or owner. It is always raised, never swallowed.
type AuthRequiredError struct {
	Operation string // Operation that required authentication ("save", "patch", "delete", ...)
}

// Error implements the error interface.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("authentication required for %s: no store handle or owner", e.Operation)
}

// NewAuthRequiredError creates a new AuthRequiredError.
func NewAuthRequiredError(operation string) *AuthRequiredError {
	return &AuthRequiredError{Operation: operation}
}

// IsAuthRequired reports whether err is an AuthRequiredError.
func IsAuthRequired(err error) bool {
	var e *AuthRequiredError
	return errors.As(err, &e)
}

// NotFoundError indicates the target policy or config version does not exist
// or is not owned by the caller.
type NotFoundError struct {
	Resource string // Resource type ("policy", "schema_version")
	ID       string // Identifier that was looked up
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// ValidationError indicates a malformed policy document or action
// configuration. It stops the affected operation only.
type ValidationError struct {
	Field   string // Field or config key that failed validation
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed [field=%s]: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

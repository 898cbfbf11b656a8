package model

import "fmt"

// ValidationError reports malformed input. No state was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid returns a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports a confirmation code that does not match the
// picker's assigned code. When Hint is set, the message carries the
// assigned code so the picker can correct the entry.
type AuthorizationError struct {
	User string
	Hint string
}

func (e *AuthorizationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("wrong code, you can only use your assigned code: %s", e.Hint)
	}
	return "wrong code"
}

// Redacted returns a copy of the error without the code hint.
func (e *AuthorizationError) Redacted() *AuthorizationError {
	return &AuthorizationError{User: e.User}
}

// InvariantViolation reports a decrement that would push a quantity
// below zero. Quantities are never clamped.
type InvariantViolation struct {
	ItemID string
	Field  string
	Have   int
	Need   int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("insufficient %s: have %d, need %d", e.Field, e.Have, e.Need)
}

// ConflictError reports a concurrent write to the same item. The caller
// may re-read and resubmit.
type ConflictError struct {
	ItemID string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting update on item %s: %s", e.ItemID, e.Reason)
}

// NotFoundError reports a lookup that resolved to nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

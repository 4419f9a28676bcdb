package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced entity does not exist.
	// Keeping this sentinel in domain lets handlers map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden signals the actor lacks authorization for the resource.
	ErrForbidden = errors.New("access denied")
	// ErrUnauthorized signals a missing or invalid actor identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrInvalidCredentials hides whether email or password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is returned when a deactivated account tries to authenticate.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrInvalidState signals an operation that is not valid for the entity's
	// current status, e.g. responding to a request that is no longer Open.
	ErrInvalidState = errors.New("operation not valid for current status")
	// ErrDuplicateResponse enforces at most one response per (request, donor).
	ErrDuplicateResponse = errors.New("you have already responded to this request")
	// ErrInternal wraps unexpected storage failures; callers only see a generic message.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports missing or malformed input fields. Message, when
// set, overrides the generated field listing.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// NewValidationError builds a ValidationError for the given field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// IncompatibleBloodTypeError reports a donor whose blood group cannot be given
// to the request's required group. Both groups appear in the message.
type IncompatibleBloodTypeError struct {
	Donor     BloodType
	Recipient BloodType
}

func (e *IncompatibleBloodTypeError) Error() string {
	return fmt.Sprintf("blood type incompatible: %s cannot donate to %s", e.Donor, e.Recipient)
}

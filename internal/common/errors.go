// Package common defines shared constants and the error taxonomy used across
// client and server layers of the user service. Callers should use errors.Is
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Business errors surfaced to callers unchanged.
	ErrUsernameConflict   = errors.New("username already exists")
	ErrEmailConflict      = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Catch-all for unexpected registration failures.
	ErrRegistrationFailed = errors.New("registration failed")

	// Route policy rejected an anonymous caller.
	ErrAuthenticationRequired = errors.New("authentication required")

	// Malformed request input.
	ErrValidation = errors.New("validation failed")

	// Token parsing errors.
	ErrMalformedToken   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrClaimNotFound    = errors.New("claim not found")
)

// Error carries one of the sentinel kinds above together with a
// caller-facing message. The cause is kept for logs and never rendered.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UsernameConflict reports that username is already taken.
func UsernameConflict(username string) error {
	return &Error{Kind: ErrUsernameConflict, Message: fmt.Sprintf("Username '%s' already exists", username)}
}

// EmailConflict reports that email is already taken.
func EmailConflict(email string) error {
	return &Error{Kind: ErrEmailConflict, Message: fmt.Sprintf("Email '%s' already exists", email)}
}

// UserNotFound reports that no user matched the supplied identifier.
func UserNotFound() error {
	return &Error{Kind: ErrUserNotFound, Message: "User not found with the provided credentials"}
}

// InvalidCredentials reports a secret mismatch. A non-nil cause marks an
// unexpected failure that was masked as an authentication error.
func InvalidCredentials(cause error) error {
	if cause != nil {
		return &Error{Kind: ErrInvalidCredentials, Message: "Login failed due to an unexpected error", Cause: cause}
	}
	return &Error{Kind: ErrInvalidCredentials, Message: "Invalid credentials provided"}
}

// RegistrationFailed wraps an unexpected registration failure.
func RegistrationFailed(cause error) error {
	return &Error{Kind: ErrRegistrationFailed, Message: "Failed to register user", Cause: cause}
}

// IsBusinessError reports whether err is one of the pre-identified kinds that
// propagate through every layer unchanged.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrUsernameConflict) ||
		errors.Is(err, ErrEmailConflict) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidCredentials)
}

// Package common provides the error taxonomy and logging helpers shared across the client.
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConnectionMessage is shown whenever the backend cannot be reached.
const ConnectionMessage = "could not reach server"

// credentialSignal is the detail the backend returns for a rejected bearer token.
const credentialSignal = "could not validate credentials"

// Common application errors.
var (
	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New(ConnectionMessage)
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid input")
	// ErrNotAuthenticated is returned when an authenticated call is made without a credential.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrNoContent is returned when decoding a response that carried no body.
	ErrNoContent = errors.New("response has no content")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConnectionError reports that the transport never got an HTTP response.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return ConnectionMessage
}

// Unwrap exposes both the sentinel and the underlying network failure.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

// APIError reports that the backend answered with a non-success status.
// Authenticated records whether the rejected request carried a bearer credential.
type APIError struct {
	Detail        string
	Status        int
	Authenticated bool
}

func (e *APIError) Error() string {
	return e.Detail
}

// NewAPIError builds an APIError, synthesizing a detail from the status when none is given.
func NewAPIError(status int, detail string) *APIError {
	if strings.TrimSpace(detail) == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Detail: detail}
}

// ValidationError reports a malformed draft caught before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsConnection reports whether err is a transport failure.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsCredentialInvalid reports whether err means the backend rejected the bearer token.
// A 401 answer to a request that carried a credential is trusted first; the detail
// text is the fallback.
func IsCredentialInvalid(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Authenticated && apiErr.Status == http.StatusUnauthorized {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Detail), credentialSignal)
}

// UserMessage returns the text to show a user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsConnection(err) {
		return "Could not reach the Brokemate backend. Is the server running?"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return err.Error()
}

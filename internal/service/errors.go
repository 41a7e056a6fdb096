package service

import (
	"errors"

	"books-storefront/internal/client"
)

// Failure categories. Every error a service returns to a front end matches one of these with errors.Is.
var (
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrValidationFailed        = errors.New("validation failed")
	ErrPaymentInitiationFailed = errors.New("payment initiation failed")
	ErrUnexpectedResponseShape = errors.New("unexpected response shape")
	ErrResourceNotFound        = errors.New("resource not found")
	ErrAuthFailed              = errors.New("authentication failed")
	ErrBackend                 = errors.New("backend request failed")
	ErrInvalidTransition       = errors.New("invalid payment state transition")
)

// UserError carries the inline message shown for a failure.
type UserError struct {
	Kind    error
	Message string
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
	Err    error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Is(target error) bool {
	return target == e.Kind
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(kind error, message string, cause error) *UserError {
	return &UserError{Kind: kind, Message: message, Err: cause}
}

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var uErr *UserError
	if errors.As(err, &uErr) {
		return uErr.Message
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, client.ErrConnection) {
		return "Failed to connect to backend API."
	}
	return err.Error()
}

// backendError maps a client error to a UserError, keeping the backend's text for business failures.
func backendError(kind error, err error, fallback string) *UserError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return newUserError(kind, apiErr.Message, err)
	}
	return newUserError(kind, fallback, err)
}

package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrValidation marks malformed user input: wrong file type, empty
	// upload, out-of-range parameters. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrArtifactMissing marks an artifact store key that is absent or
	// expired. The two cases are indistinguishable; retrying cannot recover
	// expired data, so callers must fail the current stage.
	ErrArtifactMissing = errors.New("artifact missing or expired")

	// ErrRateLimited marks a provider rate-limit response. Inside a queued
	// stage it becomes a scheduled re-attempt; on synchronous call paths it
	// propagates as-is.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrParseFailure marks model output that is not valid or complete JSON.
	ErrParseFailure = errors.New("response parse failed")

	ErrNotFound = errors.New("resource not found")
	ErrInternal = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func ValidationErrorf(format string, args ...interface{}) error {
	return NewAppError("VALIDATION_ERROR", fmt.Sprintf(format, args...), ErrValidation)
}

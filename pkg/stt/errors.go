package stt

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrTranscription matches every failure returned by a Transcriber.
	ErrTranscription = errors.New("stt: transcription failed")

	// ErrTimeout is returned when polling exhausts its attempt ceiling.
	ErrTimeout = fmt.Errorf("%w: polling timed out", ErrTranscription)

	// ErrFileNotFound is returned when the input audio path does not exist.
	ErrFileNotFound = fmt.Errorf("%w: audio file not found", ErrTranscription)

	// ErrNoAPIKey is returned when a cloud provider is built without a key.
	ErrNoAPIKey = errors.New("stt: API key required")

	// ErrNoCredentials is returned when Google Speech has no credentials file.
	ErrNoCredentials = errors.New("stt: credentials file required")
)

// APIError represents a non-success response from an STT API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API, or the raw body.
	Message string

	// Provider identifies which provider returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("stt [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("stt [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes every provider failure match ErrTranscription.
func (e *ProviderError) Is(target error) bool {
	return target == ErrTranscription
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

package models

import (
	"context"
	"errors"
	"fmt"
)

// Error codes used in CLI output and internal error handling.
const (
	ErrCodeConfiguration = "CONFIGURATION_INVALID"
	ErrCodeSession       = "SESSION_FAILED"
	ErrCodeEngine        = "ENGINE_FAILED"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeTimeout       = "NAVIGATION_TIMEOUT"
)

// SearchError is the internal error type carrying an error code plus the
// provider/query/URL context known at the point of failure.
// It implements the error interface and supports error wrapping via Unwrap.
type SearchError struct {
	Code     string
	Message  string
	Provider string
	Query    string
	URL      string
	Err      error // wrapped original error
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Provider != "" {
		msg += fmt.Sprintf(" (provider=%s", e.Provider)
		if e.Query != "" {
			msg += fmt.Sprintf(" query=%q", e.Query)
		}
		if e.URL != "" {
			msg += fmt.Sprintf(" url=%s", e.URL)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports an invalid or unregistered configuration value.
func NewConfigurationError(message string, err error) *SearchError {
	return &SearchError{Code: ErrCodeConfiguration, Message: message, Err: err}
}

// NewSessionError reports a browser engine or context lifecycle failure.
func NewSessionError(message string, err error) *SearchError {
	return &SearchError{Code: ErrCodeSession, Message: message, Err: err}
}

// NewEngineError reports an adapter-level failure (navigation, interaction,
// or a wrapped downstream failure) with the provider/query/URL context.
func NewEngineError(provider, query, url, message string, err error) *SearchError {
	code := ErrCodeEngine
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = ErrCodeTimeout
	}
	return &SearchError{
		Code:     code,
		Message:  message,
		Provider: provider,
		Query:    query,
		URL:      url,
		Err:      err,
	}
}

// NewNavigationError reports a failed page load. Deadline and cancellation
// causes are classified under the timeout code.
func NewNavigationError(provider, query, url string, err error) *SearchError {
	e := NewEngineError(provider, query, url, "navigation to target URL failed", err)
	if e.Code == ErrCodeEngine {
		e.Code = ErrCodeNavigation
	}
	return e
}

// IsConfigurationError reports whether err is a configuration failure.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsSessionError reports whether err is an engine/context lifecycle failure.
func IsSessionError(err error) bool {
	return hasCode(err, ErrCodeSession)
}

// IsEngineError reports whether err is an adapter-level failure, including
// navigation failures and timeouts.
func IsEngineError(err error) bool {
	return hasCode(err, ErrCodeEngine) ||
		hasCode(err, ErrCodeNavigation) ||
		hasCode(err, ErrCodeTimeout)
}

func hasCode(err error, code string) bool {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

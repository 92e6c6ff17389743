package fetch

import (
	"errors"
	"fmt"
)

// Error is a classified fetch failure. Every failure that crosses the
// package boundary is one of these; callers never see raw transport
// errors.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Target is the request the failure belongs to (method + path).
	Target string

	// StatusCode is the HTTP status for application errors, 0 otherwise.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes fetch failures.
type ErrorCode string

const (
	// ErrCodeNetworkUnavailable indicates a transport failure: timeout
	// or connection error. Transient; triggers cache fallback or
	// mutation queuing. A non-2xx response is never this code.
	ErrCodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"

	// ErrCodeAssetUnavailable indicates a cache-first miss with no
	// network. Fatal for that request; not retried automatically.
	ErrCodeAssetUnavailable ErrorCode = "ASSET_UNAVAILABLE"

	// ErrCodeValidationRejected indicates the server rejected the
	// payload (4xx). Permanent; a queued mutation stays queued for
	// user action and is never silently retried.
	ErrCodeValidationRejected ErrorCode = "VALIDATION_REJECTED"

	// ErrCodeServerError indicates a non-2xx, non-4xx response (5xx).
	// An application error, distinct from a network failure: reads do
	// not fall back to cache on it, but a draining queue stops.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"

	// ErrCodeOffline is the synthesized marker for "no network and no
	// cached data". Distinguishable from a real API error so the UI
	// can say "no cached data" instead of a generic failure.
	ErrCodeOffline ErrorCode = "OFFLINE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (target=%s, status=%d)", e.Code, e.Message, e.Target, e.StatusCode)
	}
	if e.Target != "" {
		return fmt.Sprintf("%s: %s (target=%s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code, or "" if err is not a fetch error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsOffline reports whether err is the synthesized offline marker.
func IsOffline(err error) bool {
	return CodeOf(err) == ErrCodeOffline
}

// IsNetworkUnavailable reports whether err is a transport failure.
func IsNetworkUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeNetworkUnavailable
}

// IsAssetUnavailable reports whether err is a fatal asset miss.
func IsAssetUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeAssetUnavailable
}

// IsValidationRejected reports whether err is a permanent rejection.
func IsValidationRejected(err error) bool {
	return CodeOf(err) == ErrCodeValidationRejected
}

// Transient reports whether err may succeed on retry: transport
// failures, the offline marker, and 5xx responses. Validation
// rejections and asset misses are not transient.
func Transient(err error) bool {
	switch CodeOf(err) {
	case ErrCodeNetworkUnavailable, ErrCodeOffline, ErrCodeServerError:
		return true
	}
	return false
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(target string, err error) *Error {
	return &Error{
		Code:    ErrCodeNetworkUnavailable,
		Message: "network request failed",
		Target:  target,
		Err:     err,
	}
}

// NewOfflineError synthesizes the "no cached data" marker.
func NewOfflineError(target string) *Error {
	return &Error{
		Code:    ErrCodeOffline,
		Message: "offline and no cached data",
		Target:  target,
	}
}

// NewAssetError marks a cache-first miss with no network.
func NewAssetError(target string, err error) *Error {
	return &Error{
		Code:    ErrCodeAssetUnavailable,
		Message: "asset not cached and network unreachable",
		Target:  target,
		Err:     err,
	}
}

// NewStatusError classifies a non-2xx response: 4xx is a validation
// rejection, everything else a server error.
func NewStatusError(target string, status int, body string) *Error {
	code := ErrCodeServerError
	message := "server returned an error"
	if status >= 400 && status < 500 {
		code = ErrCodeValidationRejected
		message = "server rejected the request"
	}
	if body != "" {
		message = fmt.Sprintf("%s: %s", message, body)
	}
	return &Error{
		Code:       code,
		Message:    message,
		Target:     target,
		StatusCode: status,
	}
}

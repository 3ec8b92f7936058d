package fastrouter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrorType discriminates the kinds of errors raised by the SDK.
type ErrorType string

const (
	// ErrorTypeAuthentication indicates a missing API key or an upstream
	// auth rejection (401/403).
	ErrorTypeAuthentication ErrorType = "authentication_error"
	// ErrorTypeValidation indicates the request failed local validation
	// before any network I/O.
	ErrorTypeValidation ErrorType = "validation_error"
	// ErrorTypeAPI indicates a non-2xx upstream status or a transport-level
	// failure. Transport failures carry StatusCode 0.
	ErrorTypeAPI ErrorType = "api_error"
	// ErrorTypeMalformedResponse indicates a response body missing a field
	// required by the data model contract.
	ErrorTypeMalformedResponse ErrorType = "malformed_response_error"
	// ErrorTypeStreamDecode indicates the streaming decoder exceeded its
	// consecutive malformed line threshold.
	ErrorTypeStreamDecode ErrorType = "stream_decode_error"
)

// Error is the base error type for everything raised by this SDK. Callers
// can catch the whole family with errors.As(err, &e) for *fastrouter.Error,
// or inspect Type (or the Is* predicates) for targeted handling.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int // HTTP status, 0 for errors without one
	// Original error for debugging
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{Type: ErrorTypeAuthentication, Message: message}
}

// NewValidationError creates a local request validation error.
func NewValidationError(message string) *Error {
	return &Error{Type: ErrorTypeValidation, Message: message}
}

// NewAPIError creates an API error without an HTTP status, used for
// transport-level failures (connection refused, timeout).
func NewAPIError(message string, err error) *Error {
	return &Error{Type: ErrorTypeAPI, Message: message, Err: err}
}

// NewMalformedResponseError creates an error for a response body that
// violates the data model contract.
func NewMalformedResponseError(message string, err error) *Error {
	return &Error{Type: ErrorTypeMalformedResponse, Message: message, Err: err}
}

// NewStreamDecodeError creates an error for a stream that exceeded the
// malformed line tolerance.
func NewStreamDecodeError(message string, err error) *Error {
	return &Error{Type: ErrorTypeStreamDecode, Message: message, Err: err}
}

// ParseAPIError maps a non-2xx upstream response to an *Error. The body is
// probed for the machine-readable `error.message` field that
// OpenAI-compatible backends return; arbitrary or empty bodies fall back to
// a generic message.
func ParseAPIError(statusCode int, body []byte) *Error {
	message := extractErrorMessage(body)
	if message == "" {
		message = fmt.Sprintf("upstream returned HTTP %d", statusCode)
	}

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return &Error{Type: ErrorTypeAuthentication, Message: message, StatusCode: statusCode}
	}
	return &Error{Type: ErrorTypeAPI, Message: message, StatusCode: statusCode}
}

// extractErrorMessage pulls `error.message` out of an upstream error body.
// Falls back to the raw body text when it is not the expected JSON shape.
func extractErrorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	return string(body)
}

func errorOfType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsAuthenticationError reports whether err is an authentication error.
func IsAuthenticationError(err error) bool { return errorOfType(err, ErrorTypeAuthentication) }

// IsValidationError reports whether err is a local validation error.
func IsValidationError(err error) bool { return errorOfType(err, ErrorTypeValidation) }

// IsAPIError reports whether err is an upstream or transport error.
func IsAPIError(err error) bool { return errorOfType(err, ErrorTypeAPI) }

// IsMalformedResponseError reports whether err is a response contract error.
func IsMalformedResponseError(err error) bool { return errorOfType(err, ErrorTypeMalformedResponse) }

// IsStreamDecodeError reports whether err is a stream decode error.
func IsStreamDecodeError(err error) bool { return errorOfType(err, ErrorTypeStreamDecode) }

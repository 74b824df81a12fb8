// Package errors defines the application error taxonomy and the structured
// logger shared by all internal packages.
//
// Every failure in the signing pipeline is deterministic (bad input or bad
// encoding), so the taxonomy distinguishes those from the failures only the
// connection boundary can produce: authentication rejections, transport
// (TLS) failures and plain network errors. Callers branch on the type via
// errors.Is rather than string matching.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	// Deterministic, pre-crypto failures.
	ErrorTypeInput    ErrorType = "INPUT_ERROR"
	ErrorTypeEncoding ErrorType = "ENCODING_ERROR"
	ErrorTypeConfig   ErrorType = "CONFIG_ERROR"

	// Connection-boundary failures.
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeTransport      ErrorType = "TRANSPORT_ERROR"
	ErrorTypeNetwork        ErrorType = "NETWORK_ERROR"

	// Everything else.
	ErrorTypeInternal ErrorType = "INTERNAL_ERROR"
)

// AppError is the unified application error.
type AppError struct {
	Type        ErrorType              `json:"type"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	OriginalErr error                  `json:"-"`
}

// New creates a new application error.
func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

// Newf creates a new application error with a formatted message.
func Newf(errorType ErrorType, format string, args ...interface{}) *AppError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. Returns nil for a nil error.
func Wrap(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	appErr := New(errorType, message)
	appErr.OriginalErr = err
	appErr.Details = err.Error()
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, errorType ErrorType, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, errorType, fmt.Sprintf(format, args...))
}

// WithContext attaches a context field to the error.
//
// Never attach secret material here: context fields are logged verbatim.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s [%s]: %s", e.Message, e.Type, e.OriginalErr.Error())
	}
	if e.Details != "" {
		return fmt.Sprintf("%s [%s] (details: %s)", e.Message, e.Type, e.Details)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Type)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.OriginalErr
}

// Is matches AppErrors by type, so the sentinel values below work with
// errors.Is.
func (e *AppError) Is(target error) bool {
	if targetErr, ok := target.(*AppError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// HTTPStatus maps the error type to a response status for the sidecar API.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeInput, ErrorTypeEncoding:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeNetwork, ErrorTypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinel values for errors.Is checks.
var (
	ErrInput          = New(ErrorTypeInput, "invalid input")
	ErrEncoding       = New(ErrorTypeEncoding, "encoding failed")
	ErrConfig         = New(ErrorTypeConfig, "configuration error")
	ErrAuthentication = New(ErrorTypeAuthentication, "authentication failed")
	ErrTransport      = New(ErrorTypeTransport, "transport negotiation failed")
	ErrNetwork        = New(ErrorTypeNetwork, "network error")
	ErrInternal       = New(ErrorTypeInternal, "internal error")
)

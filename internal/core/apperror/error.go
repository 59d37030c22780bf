// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All identifier engine and service errors use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal      = "INTERNAL_ERROR"
	CodeDatabase      = "DATABASE_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Identifier rule violations (422)
	CodeIdentifierFormat = "IDENTIFIER_FORMAT_ERROR"
	CodeCheckDigit       = "CHECK_DIGIT_ERROR"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeDuplicate          = "DUPLICATE_ENTRY"
	CodeSequenceExhausted  = "SEQUENCE_EXHAUSTED"
	CodeDuplicateExhausted = "DUPLICATE_EXHAUSTED"
)

// AppError is the standard error type for the service.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (identifier, pattern, type)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConfiguration creates an error for an invalid identifier type setup.
// It is never the caller's fault at request time, hence 500.
func NewConfiguration(message string) *AppError {
	return &AppError{
		Code:       CodeConfiguration,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewFormat creates an identifier format error (422).
// Raised when a seed, resumed or freshly computed identifier does not match its pattern.
func NewFormat(identifier, pattern string) *AppError {
	return &AppError{
		Code:       CodeIdentifierFormat,
		Message:    fmt.Sprintf("Invalid identifier format for pattern %s. Got %q", pattern, identifier),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"identifier": identifier, "pattern": pattern},
	}
}

// NewFormatMessage creates an identifier format error with a custom message.
func NewFormatMessage(message string) *AppError {
	return &AppError{
		Code:       CodeIdentifierFormat,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewCheckDigit creates a check digit mismatch error (422)
func NewCheckDigit(identifier, message string) *AppError {
	return &AppError{
		Code:       CodeCheckDigit,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"identifier": identifier},
	}
}

// NewSequenceExhausted creates an error for a body that has no room left (409)
func NewSequenceExhausted(identifier string) *AppError {
	return &AppError{
		Code:       CodeSequenceExhausted,
		Message:    fmt.Sprintf("Identifier sequence exhausted after %q", identifier),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"identifier": identifier},
	}
}

// NewDuplicateExhausted creates an error when no unique random identifier could be produced (409)
func NewDuplicateExhausted(attempts int64) *AppError {
	return &AppError{
		Code: CodeDuplicateExhausted,
		Message: "Unable to produce a unique identifier, all are taken. " +
			"Increase the length of the random segment",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"attempts": attempts},
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsFormatError checks if error is CodeIdentifierFormat
func IsFormatError(err error) bool {
	return HasCode(err, CodeIdentifierFormat)
}

// IsCheckDigitError checks if error is CodeCheckDigit
func IsCheckDigitError(err error) bool {
	return HasCode(err, CodeCheckDigit)
}

// IsSequenceExhausted checks if error is CodeSequenceExhausted
func IsSequenceExhausted(err error) bool {
	return HasCode(err, CodeSequenceExhausted)
}

// IsDuplicateExhausted checks if error is CodeDuplicateExhausted
func IsDuplicateExhausted(err error) bool {
	return HasCode(err, CodeDuplicateExhausted)
}

// IsDuplicate checks if error is CodeDuplicate
func IsDuplicate(err error) bool {
	return HasCode(err, CodeDuplicate)
}

// IsConfiguration checks if error is CodeConfiguration
func IsConfiguration(err error) bool {
	return HasCode(err, CodeConfiguration)
}

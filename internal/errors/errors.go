package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tessera error code.
type ErrorCode string

const (
	ErrConfiguration  ErrorCode = "CONFIGURATION"   // 400 missing required input (empty code set, absent credential)
	ErrValidation     ErrorCode = "VALIDATION"      // 400 bad or missing field values
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409 duplicate code name, already-promoted sentence
	ErrUpstream       ErrorCode = "UPSTREAM"        // 502 non-success response from the completion endpoint
	ErrResponseFormat ErrorCode = "RESPONSE_FORMAT" // 502 completion response not parseable as expected JSON
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// TesseraError represents a structured error with code, status, and details.
type TesseraError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TesseraError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfiguration creates a 400 error for missing required configuration or input.
func NewConfiguration(msg string) *TesseraError {
	return &TesseraError{
		Code:    ErrConfiguration,
		Status:  400,
		Message: msg,
	}
}

// NewValidation creates a 400 error for invalid field values.
func NewValidation(msg string) *TesseraError {
	return &TesseraError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing code, segment, or document.
func NewNotFound(kind, identifier string) *TesseraError {
	return &TesseraError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewConflict creates a 409 error for duplicate names or already-existing items.
func NewConflict(msg string) *TesseraError {
	return &TesseraError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewUpstream creates a 502 error carrying the status returned by the
// completion endpoint.
func NewUpstream(status int) *TesseraError {
	return &TesseraError{
		Code:    ErrUpstream,
		Status:  502,
		Message: fmt.Sprintf("completion API request failed: %d", status),
		Details: map[string]any{"upstream_status": status},
	}
}

// NewResponseFormat creates a 502 error for a completion response that is not
// parseable as the expected JSON shape.
func NewResponseFormat(msg string) *TesseraError {
	return &TesseraError{
		Code:    ErrResponseFormat,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the original error is kept in Details for logging.
func NewInternal(err error) *TesseraError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &TesseraError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (possibly wrapped) is a TesseraError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TesseraError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}

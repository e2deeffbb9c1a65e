package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeOCR        ErrorType = "ocr"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    detail,
		StatusCode: http.StatusBadRequest,
	}
}

// NewProcessingError creates an error for OCR output that could not be decoded.
func NewProcessingError(message string, cause error) *AppError {
	return newServerError(ErrorTypeProcessing, message, cause)
}

// NewNetworkError creates an error for a failed source fetch.
func NewNetworkError(message string, cause error) *AppError {
	return newServerError(ErrorTypeNetwork, message, cause)
}

// NewStorageError creates an error for a failed object storage call.
func NewStorageError(message string, cause error) *AppError {
	return newServerError(ErrorTypeStorage, message, cause)
}

// NewOCRError creates an error for a failed annotation submission or operation.
func NewOCRError(message string, cause error) *AppError {
	return newServerError(ErrorTypeOCR, message, cause)
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	return newServerError(ErrorTypeInternal, message, cause)
}

// Callers only ever see a generic 500 for these, whatever the cause.
func newServerError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:       errorType,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// Is matches API errors by code so wrapped copies compare equal to the
// predefined values.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.ErrorCode == e.ErrorCode
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeInvalidWindow       = "INVALID_WINDOW"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeDatasetNotFound     = "DATASET_NOT_FOUND"
	CodeNotFound            = "NOT_FOUND"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeMissingColumn       = "MISSING_COLUMN"
	CodeVolumeUnavailable   = "VOLUME_UNAVAILABLE"
	CodeEmptyFile           = "EMPTY_FILE"
	CodeInvalidWorkbook     = "INVALID_WORKBOOK"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest      = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed    = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrInvalidWindow       = New(http.StatusBadRequest, CodeInvalidWindow, "Invalid analysis window")
	ErrUnsupportedFileType = New(http.StatusBadRequest, CodeUnsupportedFileType, "Only .xlsx files are supported")

	// 404 Not Found
	ErrNotFound        = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrDatasetNotFound = New(http.StatusNotFound, CodeDatasetNotFound, "No dataset uploaded for this session")

	// 413 Payload Too Large
	ErrFileTooLarge = New(http.StatusRequestEntityTooLarge, CodeFileTooLarge, "Uploaded file exceeds the size limit")

	// 422 Unprocessable Entity
	ErrMissingColumn     = New(http.StatusUnprocessableEntity, CodeMissingColumn, "Required column is missing")
	ErrVolumeUnavailable = New(http.StatusUnprocessableEntity, CodeVolumeUnavailable, "Sales order volume cannot be determined")
	ErrEmptyFile         = New(http.StatusUnprocessableEntity, CodeEmptyFile, "Excel file is empty")
	ErrInvalidWorkbook   = New(http.StatusUnprocessableEntity, CodeInvalidWorkbook, "File is not a readable Excel workbook")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternal, "Internal server error")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// FileTooLarge reports the configured limit alongside the rejection.
func FileTooLarge(limit int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodeFileTooLarge,
		fmt.Sprintf("Uploaded file exceeds the %d byte limit", limit),
		map[string]int64{"max_bytes": limit})
}

// UnsupportedFileType names the rejected extension.
func UnsupportedFileType(ext string, allowed []string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeUnsupportedFileType, "Only .xlsx files are supported",
		map[string]interface{}{"extension": ext, "allowed": allowed})
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(err))
}

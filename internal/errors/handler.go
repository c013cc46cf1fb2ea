package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"cbmflow/internal/analysis"
	"cbmflow/internal/dataprocessing"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
)

// Domain-specific error types
const (
	TypeMissingColumn     = "/errors/dataset/missing-column"
	TypeVolumeUnavailable = "/errors/dataset/volume-unavailable"
	TypeEmptyFile         = "/errors/dataset/empty-file"
	TypeInvalidWorkbook   = "/errors/dataset/invalid-workbook"
	TypeInvalidWindow     = "/errors/analysis/invalid-window"
	TypeDatasetNotFound   = "/errors/session/dataset-not-found"
	TypeUnsupportedFile   = "/errors/upload/unsupported-file-type"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	// Dataset and analysis failures keep their message as the detail so
	// callers see which column or date was at fault.
	switch {
	case errors.Is(err, dataprocessing.ErrMissingOrderDate), errors.Is(err, dataprocessing.ErrMissingInvoiceDate):
		return domainProblem(http.StatusUnprocessableEntity, TypeMissingColumn, "Missing Column", CodeMissingColumn, err, path)
	case errors.Is(err, dataprocessing.ErrOrderVolumeUnavailable):
		return domainProblem(http.StatusUnprocessableEntity, TypeVolumeUnavailable, "Volume Unavailable", CodeVolumeUnavailable, err, path)
	case errors.Is(err, dataprocessing.ErrEmptyTable):
		return domainProblem(http.StatusUnprocessableEntity, TypeEmptyFile, "Empty File", CodeEmptyFile, err, path)
	case errors.Is(err, dataprocessing.ErrInvalidWorkbook):
		return domainProblem(http.StatusUnprocessableEntity, TypeInvalidWorkbook, "Invalid Workbook", CodeInvalidWorkbook, err, path)
	case errors.Is(err, analysis.ErrInvalidWindow), errors.Is(err, analysis.ErrInvalidDate):
		return domainProblem(http.StatusBadRequest, TypeInvalidWindow, "Invalid Window", CodeInvalidWindow, err, path)
	case errors.Is(err, analysis.ErrNoDataset):
		return domainProblem(http.StatusNotFound, TypeDatasetNotFound, "Dataset Not Found", CodeDatasetNotFound, err, path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	).WithExtension("error_code", CodeInternal)
}

func domainProblem(status int, problemType, title, code string, err error, path string) *ProblemDetails {
	return NewProblemDetails(status, problemType, title, err.Error(), path).
		WithExtension("error_code", code)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest:
		problemType = TypeValidation
	case CodeInvalidWindow:
		problemType = TypeInvalidWindow
	case CodeUnsupportedFileType:
		problemType = TypeUnsupportedFile
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeDatasetNotFound:
		problemType = TypeDatasetNotFound
	case CodeFileTooLarge:
		problemType = TypePayloadTooLarge
	case CodeMissingColumn:
		problemType = TypeMissingColumn
	case CodeVolumeUnavailable:
		problemType = TypeVolumeUnavailable
	case CodeEmptyFile:
		problemType = TypeEmptyFile
	case CodeInvalidWorkbook:
		problemType = TypeInvalidWorkbook
	case CodeRateLimitExceeded:
		problemType = TypeRateLimit
	case CodeServiceUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	status, problemType, code := http.StatusInternalServerError, TypeInternal, CodeInternal
	switch appErr.Type {
	case ErrTypeValidation:
		status, problemType, code = http.StatusBadRequest, TypeValidation, CodeValidationFailed
	case ErrTypeNotFound:
		status, problemType, code = http.StatusNotFound, TypeNotFound, CodeNotFound
	case ErrTypeParsing:
		status, problemType, code = http.StatusUnprocessableEntity, TypeInvalidWorkbook, CodeInvalidWorkbook
	}

	detail := appErr.Message
	if status >= http.StatusInternalServerError {
		detail = "An unexpected error occurred while processing your request"
	}
	problem := NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path).
		WithExtension("error_code", code)
	if len(appErr.Context) > 0 && status < http.StatusInternalServerError {
		problem.WithExtension("context", appErr.Context)
	}
	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = render.Render(w, r, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// JSON helper for consistent JSON responses
func (h *ErrorHandler) JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

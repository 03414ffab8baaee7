package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypePermission     ErrorType = "permission"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeDatabase       ErrorType = "database"
	ErrorTypeExternal       ErrorType = "external_api"
	ErrorTypeParse          ErrorType = "parse"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeBilling        ErrorType = "billing"
	ErrorTypeTimeout        ErrorType = "timeout"
)

// FieldError is a single rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents an application error with additional context
type AppError struct {
	Type       ErrorType
	Message    string
	Code       string
	Internal   error
	Context    map[string]interface{}
	Source     string
	Fields     []FieldError
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithFields attaches field-level validation failures.
func (e *AppError) WithFields(fields ...FieldError) *AppError {
	e.Fields = append(e.Fields, fields...)
	return e
}

// HTTPStatus maps the error type onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypePermission:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTimeout:
		return http.StatusRequestTimeout
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeBilling:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}
	if len(e.Fields) > 0 {
		fields = append(fields, "fields", e.Fields)
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(2),
		Context:  make(map[string]interface{}),
	}
}

func caller(skip int) string {
	_, file, line, _ := runtime.Caller(skip)
	return fmt.Sprintf("%s:%d", file, line)
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errorType
}

// HTTPStatus returns the response status for any error; non-AppErrors are 500.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	h.HandleWith(ctx, h.logger, err)
}

// HandleWith logs err with the given logger instead of the handler's own,
// so request-scoped attributes end up on the record.
func (h *Handler) HandleWith(ctx context.Context, logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = h.logger
	}

	if appErr, ok := As(err); ok {
		handleAppError(ctx, logger, appErr)
	} else {
		logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
	}
}

func handleAppError(ctx context.Context, logger *slog.Logger, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeAuthentication, ErrorTypePermission:
		logger.WarnContext(ctx, "Permission error", err.LogFields()...)
	case ErrorTypeNotFound:
		logger.InfoContext(ctx, "Not found", err.LogFields()...)
	case ErrorTypeRateLimit, ErrorTypeBilling:
		logger.WarnContext(ctx, "Upstream quota error", err.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeExternal, ErrorTypeParse, ErrorTypeInternal, ErrorTypeTimeout:
		logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

// Public messages returned for upstream failures.
const (
	MsgUpstreamRateLimit = "Rate limit exceeded. Please try again later."
	MsgUpstreamBilling   = "Payment required. Please add credits to your workspace."
	MsgGeneric           = "An error occurred while processing your request"
)

// ErrNotFound matches any not-found AppError with errors.Is.
var ErrNotFound = New(ErrorTypeNotFound, "NOT_FOUND", "Resource not found")

// Convenience functions for common errors
func NewValidationError(message string, fields ...FieldError) *AppError {
	e := New(ErrorTypeValidation, "VALIDATION", message)
	e.Source = caller(2)
	return e.WithFields(fields...)
}

func NewAuthenticationError(message string) *AppError {
	e := New(ErrorTypeAuthentication, "UNAUTHENTICATED", message)
	e.Source = caller(2)
	return e
}

func NewAuthorizationError(message string) *AppError {
	e := New(ErrorTypePermission, "FORBIDDEN", message)
	e.Source = caller(2)
	return e
}

func NewNotFoundError(resource string) *AppError {
	e := New(ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource))
	e.Source = caller(2)
	return e.WithContext("resource", resource)
}

func NewDatabaseError(err error) *AppError {
	e := Wrap(err, ErrorTypeDatabase, "DB_ERROR", "Database operation failed")
	e.Source = caller(2)
	return e
}

// NewExternalAPIError collapses an upstream failure into a generic public message.
func NewExternalAPIError(err error, api, message string) *AppError {
	e := Wrap(err, ErrorTypeExternal, "EXTERNAL_API", message)
	e.Source = caller(2)
	return e.WithContext("api", api)
}

func NewUpstreamRateLimitError(err error, api string, retryAfter time.Duration) *AppError {
	e := Wrap(err, ErrorTypeRateLimit, "RATE_LIMIT", MsgUpstreamRateLimit)
	e.Source = caller(2)
	e.RetryAfter = retryAfter
	return e.WithContext("api", api)
}

func NewUpstreamBillingError(err error, api string) *AppError {
	e := Wrap(err, ErrorTypeBilling, "PAYMENT_REQUIRED", MsgUpstreamBilling)
	e.Source = caller(2)
	return e.WithContext("api", api)
}

func NewParseError(err error, message string) *AppError {
	e := Wrap(err, ErrorTypeParse, "PARSE_ERROR", message)
	e.Source = caller(2)
	return e
}

func NewTimeoutError(operation string) *AppError {
	e := New(ErrorTypeTimeout, "TIMEOUT", "Request timeout")
	e.Source = caller(2)
	return e.WithContext("operation", operation)
}

func NewInternalError(err error) *AppError {
	e := Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal server error")
	e.Source = caller(2)
	return e
}

package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gw2vault-api/internal/gw2"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// WithDetails adds field-level error details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	e.Details = details
	return e
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    e.Code,
			"message": e.Message,
		},
	}

	if len(e.Details) > 0 {
		response["error"].(map[string]interface{})["details"] = e.Details
	}

	data, _ := json.Marshal(response)
	return data
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}

// ValidationError creates a 400 error with validation details.
func ValidationError(message string, details ...FieldError) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		Details:    details,
	}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{
		StatusCode: http.StatusForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
	}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    message,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
	}
}

// ServiceUnavailable creates a 503 Service Unavailable error.
func ServiceUnavailable(message string) *Error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return &Error{
		StatusCode: http.StatusServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
	}
}

// BadGateway creates a 502 error for a failed upstream call.
func BadGateway(message string) *Error {
	if message == "" {
		message = "Upstream API error"
	}
	return &Error{
		StatusCode: http.StatusBadGateway,
		Code:       "UPSTREAM_ERROR",
		Message:    message,
	}
}

// GatewayTimeout creates a 504 error for an upstream call that ran out of time.
func GatewayTimeout(message string) *Error {
	if message == "" {
		message = "Upstream API timed out"
	}
	return &Error{
		StatusCode: http.StatusGatewayTimeout,
		Code:       "UPSTREAM_TIMEOUT",
		Message:    message,
	}
}

// FromError maps domain errors to API errors. The message of the original
// error is kept so stage tags reach the caller.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var gwErr *gw2.Error
	if errors.As(err, &gwErr) {
		return fromGW2(gwErr.Kind, err.Error())
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return GatewayTimeout(err.Error())
	case errors.Is(err, context.Canceled):
		return &Error{StatusCode: 499, Code: "CLIENT_CLOSED_REQUEST", Message: "Request canceled"}
	}

	return InternalError("")
}

func fromGW2(kind gw2.Kind, message string) *Error {
	switch kind {
	case gw2.KindInvalidAPIKey:
		return &Error{StatusCode: http.StatusUnauthorized, Code: "INVALID_API_KEY", Message: message}
	case gw2.KindMissingPermissions:
		return &Error{StatusCode: http.StatusForbidden, Code: "MISSING_PERMISSIONS", Message: message}
	case gw2.KindRequestRejected:
		return &Error{StatusCode: http.StatusBadRequest, Code: "REQUEST_REJECTED", Message: message}
	case gw2.KindTimeout:
		return GatewayTimeout(message)
	case gw2.KindMalformedResponse:
		return &Error{StatusCode: http.StatusBadGateway, Code: "MALFORMED_RESPONSE", Message: message}
	}
	return BadGateway(message)
}

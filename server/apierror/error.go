package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nnnkkk7/sql-playground/pkg/query"
)

// Stable error codes returned to clients.
const (
	// Database errors
	CodeSQLSyntaxError    = "SQL_SYNTAX_ERROR"
	CodeTableNotFound     = "TABLE_NOT_FOUND"
	CodeDatabaseNotFound  = "DATABASE_NOT_FOUND"
	CodeDuplicateEntry    = "DUPLICATE_ENTRY"
	CodeDBAccessDenied    = "DB_ACCESS_DENIED"
	CodeDBConnectionLost  = "DB_CONNECTION_LOST"
	CodeDBConnectionError = "DB_CONNECTION_ERROR"
	CodeQueryTimeout      = "QUERY_TIMEOUT"
	CodeInternalError     = "INTERNAL_ERROR"

	// Request errors
	CodeInvalidSQL         = query.CodeInvalidSQL
	CodeQueryTooLong       = query.CodeQueryTooLong
	CodeInvalidParameters  = query.CodeInvalidParameters
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeEndpointNotFound   = "ENDPOINT_NOT_FOUND"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
)

// APIError is an error with the HTTP status and stable code it is reported with.
type APIError struct {
	Status  int
	Code    string
	Message string
	// Details carries the underlying driver message. It is only sent outside production.
	Details string
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another error by code.
func (e *APIError) Is(target error) bool {
	var apiErr *APIError
	if errors.As(target, &apiErr) {
		return e.Code == apiErr.Code
	}
	return false
}

// Internal reports whether the error is an unclassified server fault.
func (e *APIError) Internal() bool {
	return e.Status >= http.StatusInternalServerError && e.Code == CodeInternalError
}

// ErrorResponse represents the JSON response structure for errors.
// This is the unified response type used by all handlers.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// ToResponse converts the APIError to an ErrorResponse.
func (e *APIError) ToResponse(includeDetails bool) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
	if includeDetails {
		resp.Details = e.Details
	}
	return resp
}

// New creates an APIError with the given status, code and message.
func New(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// NewInvalidRequestBodyError creates an error for a body that is not valid JSON.
func NewInvalidRequestBodyError(err error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidRequestBody, "Request body must be a JSON object")
	e.Err = err
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewEndpointNotFoundError creates the error for unmatched routes.
func NewEndpointNotFoundError() *APIError {
	return New(http.StatusNotFound, CodeEndpointNotFound, "Endpoint not found")
}

// NewRateLimitedError creates the error for clients over the request budget.
func NewRateLimitedError() *APIError {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Too many requests, please try again later.")
}

// NewInternalError wraps an unexpected server fault.
func NewInternalError(err error) *APIError {
	e := New(internalError.status, internalError.code, internalError.message)
	e.Err = err
	return e
}

// FromError converts any error into an APIError.
// If the error is already an APIError, it returns it as-is.
// If the error is nil, it returns nil.
// Validation errors keep their code; everything else is classified as a database error.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verr *query.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusBadRequest
		if verr.Code == query.CodeQueryTooLong {
			status = http.StatusRequestEntityTooLarge
		}
		return &APIError{Status: status, Code: verr.Code, Message: verr.Message, Err: err}
	}

	code, message := Translate(err)
	classified := Classify(code, message)
	classified.Err = err
	return classified
}

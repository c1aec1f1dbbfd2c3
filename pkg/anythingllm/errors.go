package anythingllm

import (
	"errors"
	"fmt"
)

// Error represents an error response from the AnythingLLM API
type Error struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Body       string `json:"body,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("anythingllm: %s (status: %d)", e.Message, e.StatusCode)
}

// IsRetryable returns true if the error might be resolved by retrying
func (e *Error) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// IsClientError returns true if the error is due to client input
func (e *Error) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsAuthError returns true if the error is related to authentication
func (e *Error) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsNotFound returns true if the resource was not found
func (e *Error) IsNotFound() bool {
	return e.StatusCode == 404
}

// AsAPIError checks if an error is an AnythingLLM API error
func AsAPIError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFoundError checks if an error is a 404 from the API
func IsNotFoundError(err error) bool {
	if e, ok := AsAPIError(err); ok {
		return e.IsNotFound()
	}
	return false
}

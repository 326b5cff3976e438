package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the pathfinder API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`

	body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("pathfinder: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("pathfinder: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func hasStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == status
}

// IsNotFound returns true if the error is a 404 for a missing collection or document.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsInvalid returns true if the server rejected the request as malformed.
func IsInvalid(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsMemoryLimit returns true if the search was aborted at the server's memory ceiling.
func IsMemoryLimit(err error) bool {
	return hasStatus(err, http.StatusInsufficientStorage)
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, body: body}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}

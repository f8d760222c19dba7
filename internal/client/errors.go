package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedResponse indicates the service answered with a body that is not
// JSON or lacks a required numeric field.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error: %s", e.Status)
	}
	return fmt.Sprintf("server error: %s - %s", e.Status, e.Detail)
}

// Unavailable reports whether the service said its model is not loaded.
func (e *APIError) Unavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

// newAPIError builds an APIError, extracting a FastAPI style {"detail": ...}
// message from body when present.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			apiErr.Detail = s
		} else {
			// Validation errors carry a list of objects.
			apiErr.Detail = string(payload.Detail)
		}
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(body))
	return apiErr
}

// IsAPIError reports whether err wraps an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NetworkError means no response was received: dial or transport failure,
// or the caller's context ended.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a 4xx or 5xx response. Message is the server's "message"
// field when the body is an API response object, or the body text itself.
type HTTPError struct {
	Status  int
	Body    []byte
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

func newHTTPError(status int, body []byte) *HTTPError {
	return &HTTPError{Status: status, Body: body, Message: serverMessage(body)}
}

func serverMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Error
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	if strings.HasPrefix(trimmed, "<") {
		return ""
	}
	return trimmed
}

// MessageOf returns the text to show a user for err: the server-provided
// message when there is one, fallback otherwise.
func MessageOf(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

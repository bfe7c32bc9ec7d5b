package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures where no usable response came back from the
// backend (connection refused, timeout, undecodable body).
var ErrTransport = errors.New("backend unreachable")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Message)
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string `json:"message"`
}

func newAPIError(op string, status int, msg string) *APIError {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Op: op, Status: status, Message: msg}
}

// UserMessage returns the text to show an operator for err: the backend's
// own message for rejections and fallback for anything else.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

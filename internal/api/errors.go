package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/roach88/storefront/internal/model"
)

var (
	ErrBadRequest   = errors.New("api: bad request")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrConflict     = errors.New("api: conflict")
	ErrServer       = errors.New("api: server error")
	ErrNetwork      = errors.New("api: network error")
)

// Error is a non-2xx response from the storefront service.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Messages   []string
	RequestID  string
}

func newError(method, path, requestID string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, StatusCode: status, RequestID: requestID}
	var eb model.ErrorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		e.Messages = eb.Messages
	}
	return e
}

// Message returns the server's message(s), or the status text when the body
// carried none.
func (e *Error) Message() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, ", ")
	}
	return http.StatusText(e.StatusCode)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message())
}

// Is maps the status code onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

// NetworkError is a request that never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap exposes both ErrNetwork and the transport cause.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// an *Error.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// Messages returns the server messages carried by err, if any.
func Messages(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Messages
	}
	return nil
}

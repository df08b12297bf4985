// Package openlist provides an HTTP client for the OpenList file-server
// API: login, file operations, streamed uploads, signed-link downloads,
// offline-download tasks, and storage administration. Every response uses
// a uniform {code, message, data} envelope; a code other than 200 is a
// caller-visible failure regardless of the HTTP status line.
package openlist

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for envelope code classification.
// Use errors.Is(err, openlist.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("openlist: bad request")
	ErrUnauthorized = errors.New("openlist: unauthorized")
	ErrForbidden    = errors.New("openlist: forbidden")
	ErrNotFound     = errors.New("openlist: not found")
	ErrConflict     = errors.New("openlist: conflict")
	ErrServerError  = errors.New("openlist: server error")
)

// APIError wraps a sentinel error with the envelope code and the server's
// human-readable message. The code mirrors HTTP status semantics but is
// carried inside the response body, so a transport-level 200 can still
// yield an APIError.
type APIError struct {
	Code    int
	Message string
	Err     error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openlist: server returned code %d: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("openlist: server returned code %d", e.Code)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyCode maps an envelope code to a sentinel error.
// Returns nil for 200.
func classifyCode(code int) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrBadRequest
	}
}

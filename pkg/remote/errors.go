package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is returned when a request to the remote store could not be
// completed: the connection failed, the request timed out, or the response
// could not be read.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *TransportError) Hint() string {
	return "Check that the remote store is running and reachable (userdesk serve starts a local one)."
}

// RejectionError is returned when the remote store answers with a
// non-success status.
type RejectionError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s rejected with status %d", e.Op, e.StatusCode)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *RejectionError) Hint() string {
	switch e.StatusCode {
	case http.StatusNotFound:
		return "The record no longer exists on the remote store. Run 'userdesk list' to refresh."
	case http.StatusBadRequest:
		return "The remote store refused the record body. Check the name and email values."
	case http.StatusConflict:
		return "A record with this id already exists on the remote store."
	case http.StatusTooManyRequests:
		return "The remote store is rate limiting requests. Wait a moment and retry."
	default:
		return ""
	}
}

// IsNotFound reports whether err is a 404 rejection.
func IsNotFound(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej) && rej.StatusCode == http.StatusNotFound
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejection reports whether err is a rejection by the remote store.
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}

package memstore

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when an item is not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q item %q not found", e.Resource, e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("Check that item ID %q exists. Use GET /%s to list available items.", e.ID, e.Resource)
}

// ConflictError is returned when an item with the same ID already exists.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %q item %q already exists", e.Resource, e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ConflictError) Hint() string {
	return fmt.Sprintf("Item with ID %q already exists. Use PUT to update or omit the id.", e.ID)
}

// ValidationError is returned when a request body fails validation.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of field %q in your request body.", e.Field)
	}
	return "Send a flat JSON object with string name and email fields."
}

// PayloadTooLargeError is returned when a request body exceeds the size limit.
type PayloadTooLargeError struct {
	MaxSize int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("request body too large: max %d bytes allowed", e.MaxSize)
}

// StatusCode returns the HTTP status code for this error.
func (e *PayloadTooLargeError) StatusCode() int {
	return http.StatusRequestEntityTooLarge
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *PayloadTooLargeError) Hint() string {
	return fmt.Sprintf("Reduce request body size to under %d bytes.", e.MaxSize)
}

// CapacityError is returned when the collection has reached its item limit.
type CapacityError struct {
	Resource string
	MaxItems int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("resource %q has reached its maximum capacity of %d items", e.Resource, e.MaxItems)
}

// StatusCode returns the HTTP status code for this error.
func (e *CapacityError) StatusCode() int {
	return http.StatusInsufficientStorage
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *CapacityError) Hint() string {
	return fmt.Sprintf("Delete existing items or raise maxItems (currently %d).", e.MaxItems)
}

// StatusCodeError is an interface for errors that have an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id,omitempty"`
	Field    string `json:"field,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// ToErrorResponse converts an error to a status code and response body.
func ToErrorResponse(err error) (int, *ErrorResponse) {
	resp := &ErrorResponse{Message: err.Error()}

	var (
		notFound *NotFoundError
		conflict *ConflictError
		invalid  *ValidationError
		tooLarge *PayloadTooLargeError
		capacity *CapacityError
	)
	switch {
	case errors.As(err, &notFound):
		resp.Error = "not_found"
		resp.Resource = notFound.Resource
		resp.ID = notFound.ID
	case errors.As(err, &conflict):
		resp.Error = "conflict"
		resp.Resource = conflict.Resource
		resp.ID = conflict.ID
	case errors.As(err, &invalid):
		resp.Error = "invalid_body"
		resp.Field = invalid.Field
	case errors.As(err, &tooLarge):
		resp.Error = "payload_too_large"
	case errors.As(err, &capacity):
		resp.Error = "capacity_exceeded"
		resp.Resource = capacity.Resource
	default:
		resp.Error = "internal_error"
		return http.StatusInternalServerError, resp
	}

	var hinted HintError
	if errors.As(err, &hinted) {
		resp.Hint = hinted.Hint()
	}
	status := http.StatusInternalServerError
	var coded StatusCodeError
	if errors.As(err, &coded) {
		status = coded.StatusCode()
	}
	return status, resp
}

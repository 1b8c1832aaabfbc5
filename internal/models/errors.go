package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Handlers map them to HTTP statuses.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the error type services return. Fields carries form-level
// messages keyed by input name so handlers can re-render the form.
type AppError struct {
	Code    string
	Message string
	Err     error
	Fields  map[string][]string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// NewNotFoundError reports a missing post, comment, user or profile.
func NewNotFoundError(resource string, id any) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s %v does not exist", resource, id))
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message)
}

// NewFieldError is a validation error attached to a single form field.
func NewFieldError(field, message string) *AppError {
	e := newAppError(CodeValidation, message)
	e.Fields = map[string][]string{field: {message}}
	return e
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	return newAppError(CodeForbidden, message)
}

// NewInternalError wraps a storage or infrastructure failure.
func NewInternalError(err error) *AppError {
	e := newAppError(CodeInternal, "internal error")
	e.Err = err
	return e
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// errorBody is the JSON shape of failed AJAX requests such as the contact form.
type errorBody struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields map[string][]string `json:"errors,omitempty"`
}

// RespondWithError writes err as JSON. Wrapped causes are never exposed.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	body := errorBody{Error: err.Error()}
	var appErr *AppError
	if errors.As(err, &appErr) {
		body = errorBody{Error: appErr.Message, Code: appErr.Code, Fields: appErr.Fields}
	}
	return c.Status(status).JSON(body)
}

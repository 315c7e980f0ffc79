package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// AppError is the central interface for all typed shoplist errors. It lets
// the handler layer map a failure to a category and an HTTP status without
// inspecting concrete types.
type AppError interface {
	Error() string
	Category() string
	HTTPStatus() int
	Unwrap() error
}

// FieldErrors maps a field name to the message describing why it was
// rejected. Errors are reported next to the offending field, never as a
// generic failure.
type FieldErrors map[string]string

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

// ValidationError represents rejected input. No write happens when one is
// returned.
type ValidationError struct {
	Msg    string
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed: %s", e.Fields)
	}
	return fmt.Sprintf("validation failed: %s", e.Msg)
}
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError creates a validation error with a single message.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NewFieldErrors creates a validation error scoped to specific fields.
func NewFieldErrors(fields FieldErrors) AppError {
	return &ValidationError{Fields: fields}
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("not found: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError creates a missing-resource error.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError represents a uniqueness or business-rule conflict, such as a
// duplicate email at registration. It can carry field-scoped details so the
// form layer reports it inline.
type ConflictError struct {
	Msg    string
	Fields FieldErrors
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("conflict: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError creates a conflict error.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// NewFieldConflictError creates a conflict error attached to one field.
func NewFieldConflictError(field, msg string) AppError {
	return &ConflictError{Msg: msg, Fields: FieldErrors{field: msg}}
}

// UnauthorizedError means the caller is not authenticated. For browser
// requests the handler recovers by redirecting to the login page; the JSON
// API surfaces it as 401.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("unauthorized: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError creates an authentication-required error.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError means the caller is authenticated but lacks the role for
// the attempted action. This is a hard failure, never downgraded to a
// login redirect.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("forbidden: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError creates an insufficient-role error.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// InternalError represents an unexpected server-side failure. It wraps the
// underlying cause so logs keep the root error.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string    { return fmt.Sprintf("internal error: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError creates a server-side error wrapping its cause.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError is a shortcut for internal errors originating in the database.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %v", msg, err), err)
}

// MapToHTTPStatus translates any error into an HTTP status, a category and
// a client-safe message. Untyped errors become generic internal errors.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "an unexpected error occurred"
}

// FieldsOf extracts field-scoped messages from an error, if it carries any.
func FieldsOf(err error) FieldErrors {
	switch e := err.(type) {
	case *ValidationError:
		return e.Fields
	case *ConflictError:
		return e.Fields
	}
	return nil
}

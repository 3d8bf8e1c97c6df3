package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrIllegalTransition indicates that a status change was attempted from the wrong state.
var ErrIllegalTransition = errors.New("illegal status transition")

// ValidationError carries per-field messages for a failed input validation.
// It unwraps to ErrValidation so callers can branch with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IllegalTransitionError reports a guarded status transition that lost its
// precondition. Current holds the status found when the transition failed.
type IllegalTransitionError struct {
	Current string
	Edge    string
	Message string
}

func NewIllegalTransitionError(current, edge, message string) *IllegalTransitionError {
	return &IllegalTransitionError{Current: current, Edge: edge, Message: message}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s from status %s: %s", e.Edge, e.Current, e.Message)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// AppError wraps an unexpected fault with an HTTP-ish code and a safe message.
// The wrapped cause is for logs only and never rendered to users.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError builds an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

package common

import (
	"errors"
	"fmt"
)

// Business logic errors
var (
	// General errors
	ErrNotFound = errors.New("resource not found")

	// Content errors
	ErrItemNotFound    = errors.New("content item not found")
	ErrVersionNotFound = errors.New("version not found")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrScheduleInPast  = errors.New("scheduled time must be in the future")
	ErrUnknownInterval = errors.New("unknown interval")
	ErrSweepInProgress = errors.New("sweep already running")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// Code 사용자에게 노출되는 에러 코드 (restore RPC 등)
type Code string

const (
	CodeInvalidArgument  Code = "invalid-argument"
	CodeUnauthenticated  Code = "unauthenticated"
	CodePermissionDenied Code = "permission-denied"
	CodeNotFound         Code = "not-found"
	CodeConflict         Code = "conflict"
	CodeInternal         Code = "internal"
)

// AppError is a structured error returned from direct user actions.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError
func NewAppError(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidArgument wraps err as an invalid-argument AppError
func InvalidArgument(message string, err error) *AppError {
	return NewAppError(CodeInvalidArgument, message, err)
}

// Unauthenticated wraps err as an unauthenticated AppError
func Unauthenticated(message string) *AppError {
	return NewAppError(CodeUnauthenticated, message, ErrUnauthorized)
}

// NotFound wraps err as a not-found AppError
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, err)
}

// Internal wraps err as an internal AppError
func Internal(message string, err error) *AppError {
	return NewAppError(CodeInternal, message, err)
}

// CodeOf classifies any error into a wire code. Unknown errors are internal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, ErrVersionNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthenticated
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrScheduleInPast),
		errors.Is(err, ErrUnknownInterval):
		return CodeInvalidArgument
	case errors.Is(err, ErrSweepInProgress):
		return CodeConflict
	}
	return CodeInternal
}

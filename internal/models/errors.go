package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindConflict    ErrorKind = "conflict"
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindSource      ErrorKind = "source"
	ErrorKindPersistence ErrorKind = "persistence"
	ErrorKindInternal    ErrorKind = "internal"
)

type AppError struct {
	Kind     ErrorKind      `json:"kind"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Cause    error          `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (err *AppError) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", err.Code, err.Message, err.Cause)
	}
	return fmt.Sprintf("%s: %s", err.Code, err.Message)
}

func (err *AppError) Unwrap() error {
	return err.Cause
}

func (err *AppError) WithCause(cause error) *AppError {
	copied := *err
	copied.Cause = cause
	return &copied
}

func (err *AppError) WithMetadata(key string, value any) *AppError {
	copied := *err
	copied.Metadata = make(map[string]any, len(err.Metadata)+1)
	for k, v := range err.Metadata {
		copied.Metadata[k] = v
	}
	copied.Metadata[key] = value
	return &copied
}

func newAppError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func NewNotFoundError(code, message string) *AppError {
	return newAppError(ErrorKindNotFound, code, message)
}

func NewConflictError(code, message string) *AppError {
	return newAppError(ErrorKindConflict, code, message)
}

func NewValidationError(code, message string) *AppError {
	return newAppError(ErrorKindValidation, code, message)
}

func NewSourceError(code, message string) *AppError {
	return newAppError(ErrorKindSource, code, message)
}

func NewPersistenceError(code, message string) *AppError {
	return newAppError(ErrorKindPersistence, code, message)
}

func NewInternalError(code, message string) *AppError {
	return newAppError(ErrorKindInternal, code, message)
}

// KindOf classifies any error for transport mapping; wrapped AppErrors keep
// their kind, everything else is internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrorKindInternal
}

var (
	ErrAgentNotFound  = NewNotFoundError("AGENT_NOT_FOUND", "No agent configured under this id")
	ErrAgentRunning   = NewConflictError("AGENT_ALREADY_RUNNING", "A run for this agent is already in flight")
	ErrGroupNotFound  = NewNotFoundError("GROUP_NOT_FOUND", "Group does not exist")
	ErrRecordNotFound = NewNotFoundError("RECORD_NOT_FOUND", "Canonical record does not exist")
	ErrGroupExists    = NewConflictError("GROUP_EXISTS", "A group with this category and title already exists")
)

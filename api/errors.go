// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-mux.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrStartup marks failures while registering the control signal,
	// creating the multiplexer or binding the listener.
	ErrStartup = errors.New("startup failed")

	// ErrFatalWait marks a readiness wait that failed for a reason other
	// than signal interruption. The main loop shuts down on it.
	ErrFatalWait = errors.New("readiness wait failed")

	// ErrInterrupted is returned by a readiness wait interrupted by signal
	// delivery. It is never fatal; callers retry with a fresh watch set.
	ErrInterrupted = errors.New("wait interrupted")

	ErrClosed          = errors.New("resource is closed")
	ErrAlreadyRunning  = errors.New("server already running")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeStartup
	ErrCodeFatalWait
	ErrCodeAccept
	ErrCodeRead
	ErrCodeNotSupported
	ErrCodeInternal
)

// String returns the short name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeStartup:
		return "startup"
	case ErrCodeFatalWait:
		return "fatal_wait"
	case ErrCodeAccept:
		return "accept"
	case ErrCodeRead:
		return "read"
	case ErrCodeNotSupported:
		return "not_supported"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Err:     cause,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

package commands

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of a command failure
type ErrorType int

const (
	// ErrTypeInvalidParameter indicates a payload field failed validation; nothing was persisted
	ErrTypeInvalidParameter ErrorType = iota
	// ErrTypeUnknownIdentifier indicates an unrecognized identifier such as a protocol id; nothing was persisted
	ErrTypeUnknownIdentifier
	// ErrTypePersistence indicates the input was accepted but could not be made durable
	ErrTypePersistence
	// ErrTypeServiceStart indicates a sub-service or the radio failed to start after the change
	ErrTypeServiceStart
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidParameter:
		return "Invalid Parameter"
	case ErrTypeUnknownIdentifier:
		return "Unknown Identifier"
	case ErrTypePersistence:
		return "Persistence Failure"
	case ErrTypeServiceStart:
		return "Service Start Failure"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// CommandError is a failure reported by a command handler.
type CommandError struct {
	Type  ErrorType // Category of error
	Field string    // Offending field, service name for ErrTypeServiceStart
	Value string    // Offending value as typed, masked for secrets
	Err   error     // Underlying error (if any)
}

// Error implements the error interface
func (e *CommandError) Error() string {
	switch e.Type {
	case ErrTypeInvalidParameter, ErrTypeUnknownIdentifier:
		return fmt.Sprintf("%s '%s' is not valid", e.Field, e.Value)
	case ErrTypeServiceStart:
		return fmt.Sprintf("%s failed to start: %v", e.Field, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}
	return e.Type.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewInvalidParameter reports a field that failed validation
func NewInvalidParameter(field, value string) *CommandError {
	return &CommandError{Type: ErrTypeInvalidParameter, Field: field, Value: value}
}

// NewInvalidSecret reports a secret field that failed validation without echoing it
func NewInvalidSecret(field, value string) *CommandError {
	return &CommandError{Type: ErrTypeInvalidParameter, Field: field, Value: maskSecret(value)}
}

// NewUnknownIdentifier reports an identifier outside the closed set for field
func NewUnknownIdentifier(field, value string) *CommandError {
	return &CommandError{Type: ErrTypeUnknownIdentifier, Field: field, Value: value}
}

// NewPersistenceError wraps a failed settings write
func NewPersistenceError(err error) *CommandError {
	return &CommandError{Type: ErrTypePersistence, Err: err}
}

// NewServiceStartError reports a sub-service, or the radio, that did not start
func NewServiceStartError(service string, err error) *CommandError {
	return &CommandError{Type: ErrTypeServiceStart, Field: service, Err: err}
}

func isType(err error, t ErrorType) bool {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Type == t
	}
	return false
}

// IsInvalidParameter checks if an error is a validation failure
func IsInvalidParameter(err error) bool {
	return isType(err, ErrTypeInvalidParameter)
}

// IsUnknownIdentifier checks if an error is an unknown identifier
func IsUnknownIdentifier(err error) bool {
	return isType(err, ErrTypeUnknownIdentifier)
}

// IsPersistenceError checks if an error is a persistence failure
func IsPersistenceError(err error) bool {
	return isType(err, ErrTypePersistence)
}

// IsServiceStartError checks if an error is a service start failure
func IsServiceStartError(err error) bool {
	return isType(err, ErrTypeServiceStart)
}

// IsRejected reports whether err means the command was refused with no persistence
func IsRejected(err error) bool {
	return IsInvalidParameter(err) || IsUnknownIdentifier(err)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}

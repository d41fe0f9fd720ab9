// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Table errors.
	ErrEmptyInput       = errors.New("empty input")
	ErrInvalidSelection = errors.New("invalid column selection")
	ErrNoData           = errors.New("no valid data found")
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")

	// Batch errors.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// EmptyInputError is returned when a record set has no records or no columns.
type EmptyInputError struct {
	Reason string
}

func (e *EmptyInputError) Error() string {
	if e.Reason == "" {
		return ErrEmptyInput.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEmptyInput, e.Reason)
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

// InvalidSelectionError is returned when a caller names a column that is not in the record set.
type InvalidSelectionError struct {
	Column    string
	Available []string
}

func (e *InvalidSelectionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s: column %q not found", ErrInvalidSelection, e.Column)
	}
	return fmt.Sprintf("%s: column %q not found (available: %s)",
		ErrInvalidSelection, e.Column, strings.Join(e.Available, ", "))
}

func (e *InvalidSelectionError) Unwrap() error {
	return ErrInvalidSelection
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

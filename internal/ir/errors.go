package ir

import (
	"errors"
	"fmt"
)

// Error is the typed failure returned by every engine component.
//
// Errors are data: the tool layer renders Code, Message and Details into the
// result document instead of propagating a bare failure to the caller.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context rendered next to the message
	// (available_columns, searched_in, shipment_id, ...).
	Details map[string]any

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeDirectoryNotFound indicates the data root does not exist.
	ErrCodeDirectoryNotFound ErrorCode = "DIRECTORY_NOT_FOUND"

	// ErrCodeSourceNotFound indicates no tabular file matched a source name.
	ErrCodeSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// ErrCodeUnknownColumn indicates a filter named a column the source lacks.
	ErrCodeUnknownColumn ErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeUnitNotFound indicates the tracked unit has no shipment record.
	ErrCodeUnitNotFound ErrorCode = "UNIT_NOT_FOUND"

	// ErrCodeParseFailure indicates a tabular file could not be read.
	ErrCodeParseFailure ErrorCode = "PARSE_FAILURE"

	// ErrCodeInvalidArgument indicates a malformed operation argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeInternal is the catch-all for anything unanticipated.
	ErrCodeInternal ErrorCode = "INTERNAL_FAILURE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain.
// Errors that are not *Error report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewDirectoryNotFound creates an Error for a missing data root.
func NewDirectoryNotFound(dir string) *Error {
	return &Error{
		Code:    ErrCodeDirectoryNotFound,
		Message: fmt.Sprintf("Data directory not found: %s", dir),
		Details: map[string]any{"data_directory": dir},
	}
}

// NewSourceNotFound creates an Error for an unresolvable source name.
func NewSourceNotFound(name, searchedIn string) *Error {
	return &Error{
		Code:    ErrCodeSourceNotFound,
		Message: fmt.Sprintf("No tabular file found matching: %s", name),
		Details: map[string]any{"searched_in": searchedIn},
	}
}

// NewUnknownColumn creates an Error for a filter on an undeclared column.
func NewUnknownColumn(column, source string, available []string) *Error {
	cols := make([]string, len(available))
	copy(cols, available)
	return &Error{
		Code:    ErrCodeUnknownColumn,
		Message: fmt.Sprintf("Column '%s' not found in %s", column, source),
		Details: map[string]any{"available_columns": cols},
	}
}

// NewUnitNotFound creates an Error for a unit absent from the shipment source.
func NewUnitNotFound(unitID string) *Error {
	return &Error{
		Code:    ErrCodeUnitNotFound,
		Message: "Shipment not found",
		Details: map[string]any{"shipment_id": unitID},
	}
}

// NewParseFailure creates an Error for an unreadable tabular file.
func NewParseFailure(path string, err error) *Error {
	return &Error{
		Code:    ErrCodeParseFailure,
		Message: fmt.Sprintf("Could not read %s", path),
		Err:     err,
	}
}

// NewInvalidArgument creates an Error for a malformed argument.
func NewInvalidArgument(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewInternal wraps an unanticipated failure.
func NewInternal(message string, err error) *Error {
	return &Error{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Package errors provides structured error types for bedforge.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP adapter and the library
//   - Machine-readable error codes for programmatic handling
//   - Field paths pointing at the offending template or content value
//   - Non-fatal warnings for content gaps that do not stop a render
//
// # Error Codes
//
// Codes are grouped into categories:
//   - Schema: missing or mistyped fields, out-of-range numbers, unknown enum values
//   - Graph: anchor cycles, unknown anchor targets, duplicate element ids or slots
//   - Capacity: zero or negative rows, columns, widths or heights
//   - Runtime: not found, unsupported, internal
//
// # Usage
//
//	err := errors.Invalid(errors.ErrCodeInvalidRange, "part.elements[2].font_size_pt", "must be > 0, got %v", v)
//	if errors.IsValidation(err) {
//	    // reject the request, nothing was rendered
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "render bed %d", idx)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Schema errors
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
	ErrCodeInvalidEnum   Code = "INVALID_ENUM"
	ErrCodeInvalidRange  Code = "INVALID_RANGE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Graph errors
	ErrCodeAnchorCycle      Code = "ANCHOR_CYCLE"
	ErrCodeUnknownAnchor    Code = "UNKNOWN_ANCHOR"
	ErrCodeDuplicateElement Code = "DUPLICATE_ELEMENT"
	ErrCodeDuplicateSlot    Code = "DUPLICATE_SLOT"

	// Capacity errors
	ErrCodeInvalidCapacity Code = "INVALID_CAPACITY"

	// Warnings (never returned as errors)
	ErrCodeContentGap   Code = "CONTENT_GAP"
	ErrCodeTextOverflow Code = "TEXT_OVERFLOW"
	ErrCodeAssetMissing Code = "ASSET_MISSING"
	ErrCodeUnknownSKU   Code = "UNKNOWN_SKU"

	// Runtime errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category groups error codes by the validation stage that produces them.
type Category string

// Error categories.
const (
	CategorySchema   Category = "schema"
	CategoryGraph    Category = "graph"
	CategoryCapacity Category = "capacity"
	CategoryWarning  Category = "warning"
	CategoryRuntime  Category = "runtime"
)

// Category returns the category the code belongs to.
func (c Code) Category() Category {
	switch c {
	case ErrCodeInvalidSchema, ErrCodeInvalidEnum, ErrCodeInvalidRange, ErrCodeInvalidFormat:
		return CategorySchema
	case ErrCodeAnchorCycle, ErrCodeUnknownAnchor, ErrCodeDuplicateElement, ErrCodeDuplicateSlot:
		return CategoryGraph
	case ErrCodeInvalidCapacity:
		return CategoryCapacity
	case ErrCodeContentGap, ErrCodeTextOverflow, ErrCodeAssetMissing, ErrCodeUnknownSKU:
		return CategoryWarning
	default:
		return CategoryRuntime
	}
}

// Error is a structured error with a code, an optional field path and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Field   string // Path of the offending value, e.g. "part.elements[2].font_size_pt"
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Invalid creates a validation Error pointing at field.
func Invalid(code Code, field string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetField extracts the field path from an error, if available.
func GetField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// IsValidation reports whether err is a schema, graph or capacity error.
// Validation errors are raised before any geometry is computed.
func IsValidation(err error) bool {
	switch GetCode(err).Category() {
	case CategorySchema, CategoryGraph, CategoryCapacity:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (prefixed by the field path) without the code.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}

// Warning is a non-fatal condition reported alongside a successful render.
// Slot is -1 when the warning is not tied to a slot.
type Warning struct {
	Code    Code   `json:"code"`
	Slot    int    `json:"slot"`
	Element string `json:"element,omitempty"`
	Message string `json:"message"`
}

// String formats the warning for logs.
func (w Warning) String() string {
	if w.Element != "" {
		return fmt.Sprintf("%s: slot %d: %s: %s", w.Code, w.Slot, w.Element, w.Message)
	}
	return fmt.Sprintf("%s: slot %d: %s", w.Code, w.Slot, w.Message)
}

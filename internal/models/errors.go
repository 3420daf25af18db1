package models

import (
	"errors"
	"fmt"
)

// Error kinds. Wrap them in FormatError or ParseError and test with errors.Is.
var (
	ErrNameTooLong        = errors.New("name too long")
	ErrInvalidChildType   = errors.New("invalid child type")
	ErrInvalidVertexArity = errors.New("invalid vertex arity")
	ErrInvalidMaterial    = errors.New("invalid material index")

	ErrUnexpectedToken = errors.New("unexpected token")
	ErrMissingBoundary = errors.New("missing boundary")
)

// FormatError reports a value that can never be part of a valid document.
// It is raised at assignment time, never at serialization time.
type FormatError struct {
	Kind   error  `json:"-"`
	Detail string `json:"detail"`
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %v: %s", e.Kind, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

// NewFormatError builds a FormatError with a formatted detail message.
func NewFormatError(kind error, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ParseError represents a structural mismatch found while reading a document.
// Line is 1-based; it is 0 when the stream ended before the expected line.
type ParseError struct {
	Kind     error  `json:"-"`
	Line     int    `json:"line"`
	Expected string `json:"expected"`
	Found    string `json:"found,omitempty"`
}

func (e *ParseError) Error() string {
	if errors.Is(e.Kind, ErrMissingBoundary) {
		return fmt.Sprintf("parse error: %v: expected %q before end of input", e.Kind, e.Expected)
	}
	return fmt.Sprintf("parse error: line %d: %v: expected %q, found %q", e.Line, e.Kind, e.Expected, e.Found)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// Reason returns the short name of the error kind, used in API responses.
func (e *ParseError) Reason() string {
	if e.Kind == nil {
		return ""
	}
	return e.Kind.Error()
}

// UnexpectedToken reports that line number line held found instead of expected.
func UnexpectedToken(line int, expected, found string) *ParseError {
	return &ParseError{Kind: ErrUnexpectedToken, Line: line, Expected: expected, Found: found}
}

// MissingBoundary reports that the input ended before expected was seen.
func MissingBoundary(expected string) *ParseError {
	return &ParseError{Kind: ErrMissingBoundary, Expected: expected}
}

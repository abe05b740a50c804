package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOrdered is returned by ordering-dependent operations (window
	// iteration, positional access) invoked before a sort dimension has
	// been established. This is a precondition violation by the caller,
	// not a recoverable condition.
	ErrNotOrdered = errors.New("no sort dimension established")
)

// ErrTypeMismatch indicates an attempt to compute the distance between two
// objects of incompatible concrete kinds.
type ErrTypeMismatch struct {
	Want string
	Got  string
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: cannot compute distance between %q and %q", e.Want, e.Got)
}

// ErrDimensionMismatch indicates that two fixed-length vectors of unequal
// length were compared.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrUnknownKind indicates a kind name with no registered factory.
type ErrUnknownKind struct {
	Kind string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown object kind %q", e.Kind)
}

// ParseError tags a malformed textual record with the offending line and,
// when known, the locator of the object being parsed. It is distinct from
// io.EOF, which signals a clean end of stream rather than corruption.
//
// The underlying cause (if any) can be accessed via errors.Unwrap.
type ParseError struct {
	Line    int
	Text    string
	Locator string
	cause   error
}

// NewParseError builds a ParseError for the given source line.
func NewParseError(line int, text, locator string, cause error) *ParseError {
	return &ParseError{Line: line, Text: text, Locator: locator, cause: cause}
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("malformed record at line %d: %q", e.Line, e.Text)
	if e.Locator != "" {
		msg += fmt.Sprintf(" (locator %q)", e.Locator)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.cause }

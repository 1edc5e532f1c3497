package errors

import (
	stderrors "errors"
	"fmt"
)

// A Recoverable error indicates whether a caller can reasonably continue
// (skip a source, retry with Reset, move on to the next row) after it occurs
type Recoverable interface {
	Recoverable() bool
}

// IsRecoverable returns true iff err (or an error it wraps) reports itself as recoverable
func IsRecoverable(err error) bool {
	var r Recoverable
	if stderrors.As(err, &r) {
		return r.Recoverable()
	}
	return false
}

// NotFoundError occurs when a file or remote object does not exist
type NotFoundError struct {
	Origin string
	Err    error
}

// Error returns a textual representation of this NotFoundError
func (e NotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Origin %s does not exist", e.Origin)
	}
	return fmt.Sprintf("Origin %s does not exist: %s", e.Origin, e.Err)
}

// Unwrap returns the underlying error
func (e NotFoundError) Unwrap() error { return e.Err }

// Recoverable returns true, since a caller may simply skip a missing origin
func (e NotFoundError) Recoverable() bool { return true }

// IOError occurs when reading from or writing to an origin or destination fails
type IOError struct {
	Op     string
	Origin string
	Err    error
}

// Error returns a textual representation of this IOError
func (e IOError) Error() string {
	return fmt.Sprintf("Unable to %s %s: %s", e.Op, e.Origin, e.Err)
}

// Unwrap returns the underlying error
func (e IOError) Unwrap() error { return e.Err }

// Recoverable returns true, since transport failures may be transient
func (e IOError) Recoverable() bool { return true }

// ShapeError occurs when a Row's width does not match an expected Schema
type ShapeError struct {
	Values  int
	Columns int
	Reason  string
}

// Error returns a textual representation of this ShapeError
func (e ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Row is not compatible with Schema: %s", e.Reason)
	}
	return fmt.Sprintf("Row width %d is not compatible with Schema of %d columns", e.Values, e.Columns)
}

// Recoverable returns false, since a shape mismatch indicates upstream corruption
func (e ShapeError) Recoverable() bool { return false }

// ConversionError occurs when a typed accessor cannot parse a cell
type ConversionError struct {
	Key   string
	Value string
	Type  string
	Err   error
}

// Error returns a textual representation of this ConversionError
func (e ConversionError) Error() string {
	return fmt.Sprintf("Column %s could not be parsed as %s. Was: %#v", e.Key, e.Type, e.Value)
}

// Unwrap returns the underlying parse error
func (e ConversionError) Unwrap() error { return e.Err }

// Recoverable returns true
func (e ConversionError) Recoverable() bool { return true }

// MalformedRowError occurs when a decoded record does not fit the Schema.
// The record has been consumed, so decoding may continue with the next one.
type MalformedRowError struct {
	Line    int
	Fields  int
	Columns int
	Reason  string
}

// Error returns a textual representation of this MalformedRowError
func (e MalformedRowError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Malformed row at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("Malformed row at line %d: %d fields but schema has %d columns", e.Line, e.Fields, e.Columns)
}

// Recoverable returns true
func (e MalformedRowError) Recoverable() bool { return true }

// ConfigurationError occurs when a factory identifier is unknown or registered twice
type ConfigurationError struct {
	Name   string
	Reason string
}

// Error returns a textual representation of this ConfigurationError
func (e ConfigurationError) Error() string {
	return fmt.Sprintf("Invalid configuration %s: %s", e.Name, e.Reason)
}

// Recoverable returns false, since configuration errors are fatal at startup
func (e ConfigurationError) Recoverable() bool { return false }

// NoMoreRowsError occurs when Next is called on an exhausted Source
type NoMoreRowsError struct{}

// Error returns a textual representation of this NoMoreRowsError
func (e NoMoreRowsError) Error() string {
	return "No more rows"
}

// ClosedError occurs when a closed or unopened Source or Sink is used
type ClosedError struct{ Description string }

// Error returns a textual representation of this ClosedError
func (e ClosedError) Error() string {
	return fmt.Sprintf("%s is not open", e.Description)
}

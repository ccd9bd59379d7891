package model

import (
	"errors"
	"fmt"
)

// FormatError reports malformed or insufficient tabular input
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "tabular format: " + e.Reason
}

// EmptyMatrixError reports an operation attempted against a matrix with zero clauses
type EmptyMatrixError struct {
	Op string
}

func (e *EmptyMatrixError) Error() string {
	return "clause matrix has no clauses: cannot " + e.Op
}

// NotFoundError reports a lookup of an unknown clause key
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("clause %q not found", e.Key)
}

// HostUnavailableError reports that the document host cannot be reached
type HostUnavailableError struct {
	Op  string
	Err error
}

func (e *HostUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document host unavailable (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("document host unavailable (%s)", e.Op)
}

func (e *HostUnavailableError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is or wraps a FormatError
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsHostUnavailable reports whether err is or wraps a HostUnavailableError
func IsHostUnavailable(err error) bool {
	var he *HostUnavailableError
	return errors.As(err, &he)
}

// IsEmptyMatrix reports whether err is or wraps an EmptyMatrixError
func IsEmptyMatrix(err error) bool {
	var me *EmptyMatrixError
	return errors.As(err, &me)
}

/*
errors.go - Centralized error types for the leave domain

PURPOSE:
  All domain error types in one place. Callers classify failures with
  errors.Is/errors.As; the API layer maps the classes to HTTP statuses.

ERROR CATEGORIES:
  1. Not-found errors  - unknown employee or leave record
  2. Conflict errors   - duplicate caller-assigned employee id
  3. Validation errors - bad input, unreadable or malformed spreadsheet

SEE ALSO:
  - reconcile package: wraps these with file-level context
  - api package: status-code mapping via IsNotFound/IsConflict/IsValidation
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLeaveNotFound is returned when a referenced leave record doesn't exist.
	ErrLeaveNotFound = errors.New("leave record not found")

	// ErrDuplicateEmployee is returned when creating or importing an employee
	// whose id already exists. Employee ids are caller-assigned, so this is a
	// client conflict, not a system failure.
	ErrDuplicateEmployee = errors.New("duplicate employee id")

	// ErrValidation is the root of all input-validation failures. Structured
	// validation errors below unwrap to it.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingColumnError reports required spreadsheet columns absent from an
// import file. The whole import is rejected; nothing is written.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("spreadsheet missing required columns: %v", e.Columns)
}

func (e *MissingColumnError) Unwrap() error { return ErrValidation }

// EmptyCellError reports an empty value in a required column. Row is the
// 1-based spreadsheet row (header is row 1).
type EmptyCellError struct {
	Column string
	Row    int
}

func (e *EmptyCellError) Error() string {
	return fmt.Sprintf("column %q has an empty value at row %d", e.Column, e.Row)
}

func (e *EmptyCellError) Unwrap() error { return ErrValidation }

// FieldError reports a single bad request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrLeaveNotFound)
}

// IsConflict returns true if the error is a duplicate-identifier conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmployee)
}

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

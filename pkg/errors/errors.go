// Package errors provides the error taxonomy for the reconciliation
// engine. Structural errors are the only fatal condition; everything else
// is recovered locally and surfaced through the sync report.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the reconciliation engine
var (
	// ErrStructural indicates a malformed or inconsistent sheet hierarchy
	ErrStructural = errors.New("structural error")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAmbiguousMatch indicates multiple equally valid match candidates
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrRefinementBound indicates canonicalization did not converge
	// within the iteration cap
	ErrRefinementBound = errors.New("refinement bound exceeded")
)

// StructuralError represents a malformed or inconsistent sheet hierarchy:
// a net referenced on sheets with no common ancestor, or a cyclic sheet
// reference. Fatal for the affected sheet subtree.
type StructuralError struct {
	Net     string // Net that exposed the problem, if any
	Sheets  []string
	Message string
}

// Error implements the error interface
func (e *StructuralError) Error() string {
	if e.Net != "" && len(e.Sheets) > 0 {
		return fmt.Sprintf("structural error: net %s referenced on sheets [%s]: %s",
			e.Net, strings.Join(e.Sheets, ", "), e.Message)
	}
	if e.Net != "" {
		return fmt.Sprintf("structural error: net %s: %s", e.Net, e.Message)
	}
	return fmt.Sprintf("structural error: %s", e.Message)
}

// Is implements errors.Is support
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// NewStructuralError creates a new StructuralError
func NewStructuralError(net string, sheets []string, message string) *StructuralError {
	return &StructuralError{Net: net, Sheets: sheets, Message: message}
}

// ValidationError represents invalid input at a construction boundary
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for field %s (%q): %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AmbiguousMatchError records multiple equally valid candidates under the
// value+footprint strategy. Never raised as a failure: the deterministic
// first-encountered candidate wins and the condition is reported.
type AmbiguousMatchError struct {
	Reference  string
	Candidates int
	Strategy   string
}

// Error implements the error interface
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match for %s: %d equally valid candidates under %s strategy",
		e.Reference, e.Candidates, e.Strategy)
}

// Is implements errors.Is support
func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}

// RefinementError records that signature refinement hit the iteration cap
// before stabilizing. The partial signature is still used; the condition
// downgrades confidence, it does not abort.
type RefinementError struct {
	Iterations int
	Bound      int
}

// Error implements the error interface
func (e *RefinementError) Error() string {
	return fmt.Sprintf("signature refinement did not converge within %d iterations", e.Bound)
}

// Is implements errors.Is support
func (e *RefinementError) Is(target error) bool {
	return target == ErrRefinementBound
}

// SheetError wraps a failure reconciling one sheet so sibling sheets can
// still complete. The project report carries one per failed sheet.
type SheetError struct {
	Sheet string
	Err   error
}

// Error implements the error interface
func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %s: %v", e.Sheet, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError
func NewSheetError(sheet string, err error) *SheetError {
	return &SheetError{Sheet: sheet, Err: err}
}

// ParseError represents an error decoding an interchange document
type ParseError struct {
	Format  string // "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// Helper functions for error checking

// IsStructural checks if an error is a structural hierarchy error
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAmbiguousMatch checks if an error records an ambiguous match
func IsAmbiguousMatch(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsRefinementBound checks if an error records a refinement bound overrun
func IsRefinementBound(err error) bool {
	return errors.Is(err, ErrRefinementBound)
}

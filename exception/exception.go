// Package exception defines the error taxonomy shared by the register
// engine: sentinel errors for common conditions plus structured error
// types for validation results and lock conflicts.
package exception

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Standard error variables for common conditions
var (
	ErrNotFound          = errors.New("not found")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// ValidationIssue is a single rule violation at a JSON path.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries the complete set of violations found while
// validating a schema definition or an object payload. Callers always
// receive every issue, never just the first one.
type ValidationError struct {
	Issues []ValidationIssue `json:"issues"`
}

func (ve *ValidationError) Error() string {
	if len(ve.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve.Issues))
	for _, issue := range ve.Issues {
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends an issue for the given path.
func (ve *ValidationError) Add(path, format string, args ...interface{}) {
	ve.Issues = append(ve.Issues, ValidationIssue{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// Empty reports whether no issues were collected.
func (ve *ValidationError) Empty() bool {
	return ve == nil || len(ve.Issues) == 0
}

// LockedError signals a write attempted on an object locked by a
// different holder. It carries the holder identity for the 423 response.
type LockedError struct {
	LockedBy string    `json:"lockedBy"`
	Process  string    `json:"process,omitempty"`
	Until    time.Time `json:"until"`
}

func (le *LockedError) Error() string {
	if le.Process != "" {
		return fmt.Sprintf("object is locked by %s (%s) until %s", le.LockedBy, le.Process, le.Until.Format(time.RFC3339))
	}
	return fmt.Sprintf("object is locked by %s until %s", le.LockedBy, le.Until.Format(time.RFC3339))
}

// IsNotFound checks whether err is a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation extracts a ValidationError from err when present.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsLocked extracts a LockedError from err when present.
func IsLocked(err error) (*LockedError, bool) {
	var le *LockedError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors distinguish failure classes at the HTTP boundary:
// not-found (404) and duplicate-proximity conflicts (409) are distinct from
// validation failures (400).
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateArea = errors.New("a fenced area already exists near these coordinates")
)

// FieldViolation is a single field-tagged validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated invariant of a candidate record,
// never just the first one.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, fv := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", fv.Field, fv.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// OrNil returns the error if any violation was recorded, otherwise nil.
// Returning a plain nil interface avoids the typed-nil trap at call sites.
func (e *ValidationError) OrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry mutations.
var (
	// ErrDuplicateID is returned when registering an id that already
	// exists. Distinct from validation failure.
	ErrDuplicateID = errors.New("region id already registered")

	// ErrNotFound is returned when mutating an unknown region.
	ErrNotFound = errors.New("region not found")
)

// ValidationError represents a single violated constraint.
type ValidationError struct {
	// Field is the region field at fault.
	Field string

	// Message describes what's wrong.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every violated constraint so callers see the
// full list of reasons, not just the first.
type ValidationErrors struct {
	Errors []*ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e.Errors), strings.Join(msgs, "\n  - "))
}

// Add adds a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// AsError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) AsError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// validate checks every registration constraint and returns the complete
// list of violations.
func validate(r Region) *ValidationErrors {
	errs := &ValidationErrors{}

	if strings.TrimSpace(r.ID) == "" {
		errs.Add("id", "must not be empty")
	}
	if r.Bounds.Width <= 0 {
		errs.Add("bounds.width", "must be positive")
	}
	if r.Bounds.Height <= 0 {
		errs.Add("bounds.height", "must be positive")
	}
	if r.Bounds.X < 0 {
		errs.Add("bounds.x", "must be non-negative")
	}
	if r.Bounds.Y < 0 {
		errs.Add("bounds.y", "must be non-negative")
	}
	if r.Priority < MinPriority || r.Priority > MaxPriority {
		errs.Add("priority", fmt.Sprintf("must be in [%d, %d]", MinPriority, MaxPriority))
	}
	if strings.TrimSpace(r.Accessibility.Label) == "" {
		errs.Add("accessibility.label", "must not be empty")
	}

	return errs
}

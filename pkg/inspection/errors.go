// Package inspection implements the configuration and calculation engine:
// configuration resolution, workshop-section merge, formula evaluation and
// the structural mutation operations on configuration documents. Everything
// here is pure over its inputs; persistence stays behind narrow store
// interfaces so the engine is testable without a database.
package inspection

import "fmt"

// NotFoundError reports a missing entity. Entity names the kind (company,
// configuration, vehicle, category, section, field, calculation, dropdown).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ValidationError reports a violated structural invariant by name.
type ValidationError struct {
	Invariant string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Invariant
}

// ConflictError reports a write that would break a uniqueness guarantee,
// such as a second default configuration for the same company.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Invariant: fmt.Sprintf(format, args...)}
}

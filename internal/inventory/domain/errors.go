package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict wraps storage constraint violations (duplicate tool number,
	// foreign key) that validation did not catch.
	ErrConflict = errors.New("conflict")
)

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Kind string // "part", "assembly", "tooling list", ...
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Code)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidArgumentError is returned when caller input violates a domain rule.
// No data has been changed when it is returned.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field == "" {
		return "invalid argument: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NotFound builds a NotFoundError.
func NotFound(kind, code string) error {
	return &NotFoundError{Kind: kind, Code: code}
}

// Invalid builds an InvalidArgumentError with a formatted reason.
func Invalid(field, format string, args ...any) error {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Entity kinds used in NotFoundError.
const (
	KindPart              = "part"
	KindAssembly          = "assembly"
	KindAssemblyItem      = "assembly item"
	KindToolingList       = "tooling list"
	KindToolingListItem   = "tooling list item"
	KindSequenceNamespace = "id sequence"
)

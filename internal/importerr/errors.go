// Package importerr defines the error kinds shared by the import
// pipeline, the cost engine, and the entity services, using the same
// fmt.Errorf("%w: ...") sentinel-wrapping style used elsewhere in the
// module, but with one sentinel per failure kind so callers can
// errors.Is/As against a specific failure instead of a single flat
// ErrValidation.
package importerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMalformed means a file was unreadable or failed schema
	// validation.
	ErrInputMalformed = errors.New("input malformed")

	// ErrReferenceUnresolved means a path- or slug-style reference does
	// not resolve to anything in the graph or the store.
	ErrReferenceUnresolved = errors.New("reference unresolved")

	// ErrDependencyCycle is raised by the dependency graph walker.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrMissingDependency means a referent was not yet persisted at
	// commit time.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrImmutableField means an attempt was made to mutate a slug, a
	// supplier link, or a parent link after creation.
	ErrImmutableField = errors.New("immutable field")

	// ErrUnitUnparseable means a quantity-with-unit string could not be
	// parsed.
	ErrUnitUnparseable = errors.New("unit unparseable")

	// ErrNoConversionPath means no standard table entry or custom rule
	// maps one unit to another.
	ErrNoConversionPath = errors.New("no conversion path")

	// ErrDepthExceeded means recipe recursion exceeded the bound.
	ErrDepthExceeded = errors.New("recipe depth exceeded")

	// ErrStoreFailure wraps an underlying store error verbatim.
	ErrStoreFailure = errors.New("store failure")

	// ErrInvariantViolation means a structural invariant such as
	// purchaseCost >= 0 or targetMargin in [0,100] was violated.
	ErrInvariantViolation = errors.New("invariant violation")
)

// CycleError carries the offending path for a DependencyCycle failure,
// e.g. "a -> b -> a".
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	msg := ErrDependencyCycle.Error()
	if len(e.Path) == 0 {
		return msg
	}
	out := msg + ": "
	for i, node := range e.Path {
		if i > 0 {
			out += " -> "
		}
		out += node
	}
	return out
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

// MissingDependencyError carries both slugs involved in a missing
// dependency failure.
type MissingDependencyError struct {
	Dependent string
	Referent  string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s: %q depends on unresolved %q", ErrMissingDependency, e.Dependent, e.Referent)
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// ImmutableFieldError names the field and the two values involved in a
// rejected mutation.
type ImmutableFieldError struct {
	Entity   string
	Field    string
	Current  string
	Attempt  string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s: %s.%s is immutable (have %q, got %q)", ErrImmutableField, e.Entity, e.Field, e.Current, e.Attempt)
}

func (e *ImmutableFieldError) Unwrap() error { return ErrImmutableField }

// DepthExceededError names the recipe slug and the bound that was hit.
type DepthExceededError struct {
	RecipeSlug string
	MaxDepth   int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("%s: %q exceeded depth %d", ErrDepthExceeded, e.RecipeSlug, e.MaxDepth)
}

func (e *DepthExceededError) Unwrap() error { return ErrDepthExceeded }

// Malformed wraps a per-file schema/parse failure with the offending
// message.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInputMalformed, fmt.Sprintf(format, args...))
}

// Invariant wraps a structural invariant violation with a message.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// Unresolved wraps a reference-resolution failure with a message.
func Unresolved(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReferenceUnresolved, fmt.Sprintf(format, args...))
}

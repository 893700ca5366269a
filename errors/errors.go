// Package errors defines the structured errors returned when a schema
// context cannot be assembled.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/yang/internal/source"
)

// Code classifies a reactor failure.
type Code string

const (
	// ErrUnresolvedImports indicates sources with unsatisfiable dependencies.
	ErrUnresolvedImports Code = "unresolved-imports"
	// ErrDuplicateModule indicates two sources with the same module identity.
	ErrDuplicateModule Code = "duplicate-module"
	// ErrInvalidRoot indicates a source whose top-level statement is not module or submodule.
	ErrInvalidRoot Code = "invalid-root"
	// ErrInvalidArgument indicates a statement argument failed to parse.
	ErrInvalidArgument Code = "invalid-argument"
	// ErrCardinality indicates a substatement occurs too few or too many times.
	ErrCardinality Code = "cardinality"
	// ErrUnknownPrefix indicates a prefix with no import or module binding.
	ErrUnknownPrefix Code = "unknown-prefix"
	// ErrUnknownModule indicates an import or belongs-to naming a module not in the build.
	ErrUnknownModule Code = "unknown-module"
	// ErrUnknownGrouping indicates a uses statement naming no reachable grouping.
	ErrUnknownGrouping Code = "unknown-grouping"
	// ErrUnknownType indicates a type statement naming no reachable typedef.
	ErrUnknownType Code = "unknown-type"
	// ErrUnknownFeature indicates an if-feature naming no defined feature.
	ErrUnknownFeature Code = "unknown-feature"
	// ErrUnknownIdentity indicates a base naming no defined identity.
	ErrUnknownIdentity Code = "unknown-identity"
	// ErrUnknownExtension indicates an extension keyword with no extension definition.
	ErrUnknownExtension Code = "unknown-extension"
	// ErrMissingTarget indicates an augment, deviation or refine target that does not exist.
	ErrMissingTarget Code = "missing-target"
	// ErrGroupingCycle indicates groupings that instantiate themselves.
	ErrGroupingCycle Code = "grouping-cycle"
	// ErrInvalidDeviation indicates a deviate operation that cannot be applied.
	ErrInvalidDeviation Code = "invalid-deviation"
	// ErrDuplicateDefinition indicates two definitions of one name in one namespace.
	ErrDuplicateDefinition Code = "duplicate-definition"
	// ErrStalled indicates statements whose prerequisites never became available.
	ErrStalled Code = "stalled"
)

// ErrFetchTimeout reports that fetching sources exceeded the configured
// timeout. Errors wrapping it also match context.DeadlineExceeded.
var ErrFetchTimeout = errors.New("source fetch timed out")

// FetchTimeout wraps cause as a fetch timeout.
func FetchTimeout(cause error) error {
	if cause == nil {
		cause = context.DeadlineExceeded
	}
	if !errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", ErrFetchTimeout, context.DeadlineExceeded, cause)
	}
	return fmt.Errorf("%w: %w", ErrFetchTimeout, cause)
}

// Unsatisfied lists the dependencies of one source that matched nothing.
type Unsatisfied struct {
	Source  source.Identifier
	Missing []source.Dependency
}

// SchemaResolutionError reports that a schema context could not be assembled.
// Resolution failures carry the resolved subset and the missing dependencies;
// reactor failures carry the failing source and the ReactorError as Cause.
//
//nolint:errname // public API name uses the domain term.
type SchemaResolutionError struct {
	Message     string
	Source      *source.Identifier
	Resolved    []source.Identifier
	Unresolved  []source.Identifier
	Unsatisfied []Unsatisfied
	Cause       error
}

// Error formats the failure with the failing source and missing dependencies.
func (e *SchemaResolutionError) Error() string {
	if e == nil {
		return "schema resolution <nil>"
	}
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Source != nil {
		fmt.Fprintf(&b, " (source %s)", e.Source)
	}
	for _, u := range e.Unsatisfied {
		deps := make([]string, len(u.Missing))
		for i, d := range u.Missing {
			deps[i] = d.Kind.String() + " " + d.String()
		}
		fmt.Fprintf(&b, "; %s missing %s", u.Source, strings.Join(deps, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the cause.
func (e *SchemaResolutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ReactorError reports a failure while building the statement model, with
// the originating source and statement location when known.
type ReactorError struct {
	Code    Code
	Source  source.Identifier
	Line    int
	Column  int
	Keyword string
	Message string
	Cause   error
}

// Error formats the failure for display, including code, location and cause.
func (e *ReactorError) Error() string {
	if e == nil {
		return "reactor <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Source.Name != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	}
	if e.Keyword != "" {
		fmt.Fprintf(&b, " (statement %s)", e.Keyword)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the cause.
func (e *ReactorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// AsResolution extracts a SchemaResolutionError from err.
func AsResolution(err error) (*SchemaResolutionError, bool) {
	if err == nil {
		return nil, false
	}
	var target *SchemaResolutionError
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// AsReactor extracts a ReactorError from err.
func AsReactor(err error) (*ReactorError, bool) {
	if err == nil {
		return nil, false
	}
	var target *ReactorError
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

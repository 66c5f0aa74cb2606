package executor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	language "github.com/gqlexec/gqlexec/internal/language"
)

// Location is a line/column position in the request document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is a located field error in the response error list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	// Err is the original error this wraps, if any. Not serialized.
	Err error `json:"-"`
}

func (e GraphQLError) Error() string { return e.Message }

func (e GraphQLError) Unwrap() error { return e.Err }

// locatedError attributes err to the field nodes' source positions and the
// current response path.
func locatedError(err error, nodes []*language.Field, path Path) GraphQLError {
	ge := GraphQLError{Message: err.Error(), Path: path, Err: err}
	for _, n := range nodes {
		if n != nil && n.Position != nil {
			ge.Locations = append(ge.Locations, Location{Line: n.Position.Line, Column: n.Position.Column})
		}
	}
	return ge
}

// errorSink is the per-request error accumulator. Unordered field execution
// appends from many goroutines, so access is serialized. Append order between
// unrelated errors is not meaningful; each error carries its own path.
type errorSink struct {
	mu   sync.Mutex
	errs []GraphQLError
}

func (s *errorSink) add(err GraphQLError) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// drain returns the accumulated errors. The sink must not be used afterwards.
func (s *errorSink) drain() []GraphQLError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errs == nil {
		return []GraphQLError{}
	}
	return s.errs
}

// errNullified signals that a located error has already been recorded and the
// nearest nullable ancestor must resolve to null. It never appears in the
// response; it only drives non-null bubbling through return values.
var errNullified = errors.New("field nullified by a non-null violation")

// Request-fatal errors: these abort execution before any resolver runs and
// surface as the sole top-level error with no data.

// AmbiguousOperationError reports a multi-operation document executed without
// an operation name.
type AmbiguousOperationError struct{}

func (AmbiguousOperationError) Error() string {
	return "operation name is required when the document contains multiple operations"
}

// UnknownOperationError reports an operation name that matches no operation
// in the document.
type UnknownOperationError struct {
	Name string
}

func (e UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}

// NoOperationError reports a document with zero operations.
type NoOperationError struct{}

func (NoOperationError) Error() string {
	return "document contains no operations"
}

// InvalidVariableTypeError reports a variable whose declared type is not a
// legal input type.
type InvalidVariableTypeError struct {
	Variable string
	Type     string
}

func (e InvalidVariableTypeError) Error() string {
	return fmt.Sprintf("variable $%s has invalid input type %s", e.Variable, e.Type)
}

// MissingRequiredVariableError reports an unsupplied non-null variable with
// no default.
type MissingRequiredVariableError struct {
	Variable string
	Type     string
}

func (e MissingRequiredVariableError) Error() string {
	return fmt.Sprintf("variable $%s of required type %s was not provided", e.Variable, e.Type)
}

// InvalidVariableValueError reports a supplied variable value that failed
// type-driven coercion, with one entry per structural problem.
type InvalidVariableValueError struct {
	Variable string
	Problems []string
}

func (e InvalidVariableValueError) Error() string {
	return fmt.Sprintf("variable $%s got invalid value: %s", e.Variable, strings.Join(e.Problems, "; "))
}

// Field-local errors: attributed to a response path, contained to null at a
// nullable ancestor or bubbled until one is found.

// NullabilityError reports a non-nullable field that resolved to null.
type NullabilityError struct {
	Parent string
	Field  string
}

func (e NullabilityError) Error() string {
	return fmt.Sprintf("cannot return null for non-nullable field %s.%s", e.Parent, e.Field)
}

// SerializationError reports a leaf value the type could not serialize.
type SerializationError struct {
	Type string
}

func (e SerializationError) Error() string {
	return fmt.Sprintf("expected a value of type %q", e.Type)
}

// TypeResolutionError reports an abstract value whose concrete type could not
// be determined.
type TypeResolutionError struct {
	Abstract string
	Parent   string
	Field    string
}

func (e TypeResolutionError) Error() string {
	return fmt.Sprintf("abstract type %s must resolve to an object type at runtime for field %s.%s", e.Abstract, e.Parent, e.Field)
}

// InvalidRuntimeTypeError reports a resolved concrete type that is not a
// registered possible type of the abstract type.
type InvalidRuntimeTypeError struct {
	RuntimeType string
	Abstract    string
}

func (e InvalidRuntimeTypeError) Error() string {
	return fmt.Sprintf("runtime object type %q is not a possible type for %q", e.RuntimeType, e.Abstract)
}

// InstanceMismatchError reports a value rejected by its object type's
// isTypeOf predicate.
type InstanceMismatchError struct {
	Type  string
	Value any
}

func (e InstanceMismatchError) Error() string {
	return fmt.Sprintf("expected a value of type %q but got %T", e.Type, e.Value)
}

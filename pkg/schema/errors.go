package schema

import (
	"errors"
	"strings"
)

// Sentinel errors for schema definition and resolution failures.
// Use the Is*Err helpers to test for them through wrapping.
var (
	// ErrInvalidSchema is returned for any definition error: reserved field
	// prefixes, duplicate or colliding names, malformed parent references,
	// unknown has-many targets.
	ErrInvalidSchema = errors.New("minazuki: invalid schema")

	// ErrCyclicSchema is returned when inheritance, ownership or junction
	// edges form a cycle.
	ErrCyclicSchema = errors.New("minazuki: cyclic schema")

	// ErrUnknownEntity is returned when an entity name that was never
	// registered is looked up.
	ErrUnknownEntity = errors.New("minazuki: unknown entity")

	// ErrResolverSealed is returned when entities are registered with a
	// relationship resolver after it has been queried.
	ErrResolverSealed = errors.New("minazuki: resolver already resolved")

	// ErrResolution indicates an internal-consistency failure while
	// ordering or composing a schema that passed definition checks.
	ErrResolution = errors.New("minazuki: resolution failed")
)

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsCyclicSchemaErr returns true if err is or wraps ErrCyclicSchema.
func IsCyclicSchemaErr(err error) bool {
	return errors.Is(err, ErrCyclicSchema)
}

// IsUnknownEntityErr returns true if err is or wraps ErrUnknownEntity.
func IsUnknownEntityErr(err error) bool {
	return errors.Is(err, ErrUnknownEntity)
}

// DefinitionError describes a defect in the input schema.
type DefinitionError struct {
	Entity  string // Entity name (synthesized name for collections)
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString("minazuki: definition error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrInvalidSchema.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewDefinitionError creates a new DefinitionError.
func NewDefinitionError(entity, field, message string, cause error) *DefinitionError {
	return &DefinitionError{
		Entity:  entity,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ResolutionError describes a failure while ordering or composing a schema
// that passed definition checks. It should be unreachable for schemas
// accepted by the expander and relationship resolver.
type ResolutionError struct {
	Phase   string // "sort", "compose", ...
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("minazuki: resolution error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is ErrResolution.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(phase, message string, cause error) *ResolutionError {
	return &ResolutionError{
		Phase:   phase,
		Message: message,
		Cause:   cause,
	}
}

// IsDefinitionError reports whether the error is a DefinitionError.
func IsDefinitionError(err error) bool {
	var defErr *DefinitionError
	return errors.As(err, &defErr)
}

// IsResolutionError reports whether the error is a ResolutionError.
func IsResolutionError(err error) bool {
	var resErr *ResolutionError
	return errors.As(err, &resErr)
}

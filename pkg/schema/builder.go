package schema

import (
	"fmt"
	"maps"
	"strings"
)

// Builder accumulates an entity definition. Errors are recorded as they
// occur and reported by Build, so calls can be chained.
type Builder struct {
	def  EntityDefinition
	errs []error
}

// NewEntity starts the definition of an entity (or, when passed to
// Collection, of a nested collection with this local name).
func NewEntity(name string) *Builder {
	b := &Builder{def: EntityDefinition{Name: name}}
	if name == "" {
		b.errs = append(b.errs, NewDefinitionError("", "", "entity name cannot be empty", nil))
	}
	return b
}

// Field declares a field with the given type tag.
func (b *Builder) Field(name, typ string) *Builder {
	return b.FieldWithOptions(name, typ, nil)
}

// FieldWithOptions declares a field carrying extra DSL options.
// Field names starting with ReservedPrefix are rejected here, at
// definition time.
func (b *Builder) FieldWithOptions(name, typ string, opts map[string]any) *Builder {
	switch {
	case name == "":
		b.errs = append(b.errs, NewDefinitionError(b.def.Name, "", "field name cannot be empty", nil))
		return b
	case strings.HasPrefix(name, ReservedPrefix):
		b.errs = append(b.errs, NewDefinitionError(b.def.Name, name,
			fmt.Sprintf("fields cannot start with %q", ReservedPrefix), nil))
		return b
	case typ == "":
		b.errs = append(b.errs, NewDefinitionError(b.def.Name, name, "field type cannot be empty", nil))
		return b
	}
	if _, exists := b.def.Field(name); exists {
		b.errs = append(b.errs, NewDefinitionError(b.def.Name, name, "field defined more than once", nil))
		return b
	}
	f := Field{Name: name, Type: typ}
	if len(opts) > 0 {
		f.Options = maps.Clone(opts)
	}
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Extends sets the parent entity.
func (b *Builder) Extends(parent string) *Builder {
	if parent == b.def.Name && parent != "" {
		b.errs = append(b.errs, NewDefinitionError(b.def.Name, "", "entity cannot extend itself", ErrCyclicSchema))
		return b
	}
	b.def.Parent = parent
	return b
}

// Collection nests an owned collection. Errors from the nested builder
// are reported by this builder's Build.
func (b *Builder) Collection(c *Builder) *Builder {
	child, err := c.Build()
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("collection %q of %q: %w", c.def.Name, b.def.Name, err))
		return b
	}
	if _, exists := b.def.Collection(child.Name); exists {
		b.errs = append(b.errs, NewDefinitionError(b.def.Name, "",
			fmt.Sprintf("collection %q defined more than once", child.Name), nil))
		return b
	}
	b.def.Collections = append(b.def.Collections, child)
	return b
}

// HasMany declares plural relations to the named entities. Repeated
// declarations of the same target are ignored.
func (b *Builder) HasMany(targets ...string) *Builder {
	for _, t := range targets {
		if t == "" {
			b.errs = append(b.errs, NewDefinitionError(b.def.Name, "", "has_many target cannot be empty", nil))
			continue
		}
		if containsString(b.def.HasMany, t) {
			continue
		}
		b.def.HasMany = append(b.def.HasMany, t)
	}
	return b
}

// Build returns the definition, or the first recorded error.
func (b *Builder) Build() (EntityDefinition, error) {
	if len(b.errs) > 0 {
		return EntityDefinition{}, b.errs[0]
	}
	return cloneDefinition(b.def), nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() EntityDefinition {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// cloneDefinition deep-copies a definition so values handed out by Build
// never alias builder state.
func cloneDefinition(d EntityDefinition) EntityDefinition {
	out := EntityDefinition{
		Name:   d.Name,
		Parent: d.Parent,
	}
	if len(d.Fields) > 0 {
		out.Fields = make([]Field, len(d.Fields))
		for i, f := range d.Fields {
			out.Fields[i] = Field{Name: f.Name, Type: f.Type, Options: maps.Clone(f.Options)}
		}
	}
	if len(d.Collections) > 0 {
		out.Collections = make([]EntityDefinition, len(d.Collections))
		for i, c := range d.Collections {
			out.Collections[i] = cloneDefinition(c)
		}
	}
	if len(d.HasMany) > 0 {
		out.HasMany = append([]string(nil), d.HasMany...)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

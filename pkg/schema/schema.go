// Package schema provides the entity definition types consumed by the
// minazuki resolver.
//
// A schema is an ordered list of top-level entity definitions. Each
// definition describes:
//
//   - Fields: named, typed attributes (string, integer, boolean, or a
//     reference to another entity)
//   - Parent: an optional single entity this one extends
//   - Collections: nested definitions owned by this entity, expanded to
//     top-level entities named "<owner>_<local>" during resolution
//   - HasMany: entities this one declares a plural relation to
//
// Definitions are values. They are constructed with the Builder returned
// by NewEntity, which validates field names at definition time:
//
//	song, err := schema.NewEntity("song").
//		Field("name", schema.TypeString).
//		Field("length_seconds", schema.TypeInteger).
//		Collection(schema.NewEntity("lyric").
//			Field("timestamp_seconds", schema.TypeInteger)).
//		Build()
//
// Declaration order is significant: it is the tie-breaker for every
// deterministic ordering produced by the resolver (entity positions,
// has-many results, junction creation).
//
// # Relationship to Other Packages
//
// The schema package is dependency-free (stdlib only) and imported by:
//   - pkg/parser (loads definitions from YAML/JSON files)
//   - internal/resolve (expands and resolves definitions)
//   - renderers, through the resolved model
package schema

// Basic field types understood by every renderer. Any other type tag is
// treated as a reference to the entity of that name.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// ReservedPrefix is the prefix field names may not start with. Renderers
// use it for synthesized attributes (ids, owner links).
const ReservedPrefix = "_"

// Field is a named attribute of an entity.
type Field struct {
	Name string
	// Type is the semantic type tag: one of the basic types or the name
	// of a referenced entity.
	Type string
	// Options holds any additional DSL options, passed to renderers
	// untouched (e.g. "index": true).
	Options map[string]any
}

// IsBasic reports whether the field has one of the basic scalar types.
func (f Field) IsBasic() bool {
	switch f.Type {
	case TypeString, TypeInteger, TypeBoolean:
		return true
	}
	return false
}

// IsIndexable reports whether the field type can back a database index.
func (f Field) IsIndexable() bool {
	return f.Type == TypeString || f.Type == TypeInteger
}

// IsReference reports whether the field refers to another entity.
func (f Field) IsReference() bool {
	return f.Type != "" && !f.IsBasic()
}

// Option returns the named DSL option and whether it was set.
func (f Field) Option(name string) (any, bool) {
	v, ok := f.Options[name]
	return v, ok
}

// EntityDefinition is a declared entity. For a nested collection, Name is
// the local collection name; the resolver synthesizes the global name.
type EntityDefinition struct {
	Name        string
	Fields      []Field
	Parent      string
	Collections []EntityDefinition
	HasMany     []string
}

// Field returns the field with the given name.
func (d EntityDefinition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Collection returns the nested collection with the given local name.
func (d EntityDefinition) Collection(name string) (EntityDefinition, bool) {
	for _, c := range d.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return EntityDefinition{}, false
}

// Schema is an ordered set of top-level entity definitions.
type Schema struct {
	Entities []EntityDefinition
}

// New creates a schema from definitions, rejecting duplicate top-level
// names.
func New(defs ...EntityDefinition) (Schema, error) {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			return Schema{}, NewDefinitionError(d.Name, "", "entity defined more than once", nil)
		}
		seen[d.Name] = true
	}
	return Schema{Entities: defs}, nil
}

// MustNew is like New but panics on error. Intended for tests and static
// schemas declared in code.
func MustNew(defs ...EntityDefinition) Schema {
	s, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Entity returns the top-level definition with the given name.
func (s Schema) Entity(name string) (EntityDefinition, bool) {
	for _, d := range s.Entities {
		if d.Name == name {
			return d, true
		}
	}
	return EntityDefinition{}, false
}

// Names returns the top-level entity names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Entities))
	for i, d := range s.Entities {
		names[i] = d.Name
	}
	return names
}

package resolve

import (
	"maps"
	"slices"

	"github.com/pthm/minazuki/internal/naming"
	"github.com/pthm/minazuki/pkg/schema"
)

// Entity is a fully resolved entity.
type Entity struct {
	// Index is the position in the global dependency order, starting at 0.
	Index int
	// Level is the stratum the entity was placed in; level 0 entities have
	// no dependencies.
	Level int

	Name     string
	Singular string
	Plural   string
	Pascal   string
	Label    string

	// Fields are the entity's own declared fields. Junctions have none.
	Fields []schema.Field
	Parent string
	// Composed holds the fields of every ancestor, namespaced per ancestor.
	Composed ComposedFields

	// Owner is the immediately containing entity for collections.
	Owner string
	// OwnerChain lists every owner, immediate owner first.
	OwnerChain []string
	// OwnerBases lists the local names of OwnerChain, so the chain of
	// song_lyric_line is [song_lyric song] and its bases are [lyric song].
	OwnerBases []string
	LocalName  string
	// Collections links local collection names to expanded entities, in
	// declaration order.
	Collections []CollectionRef

	// HasMany holds the resolved has-many targets: junction names for
	// mutual relations, entity names for direct ones.
	HasMany []string

	Junction bool
	// Members holds the two member names of a junction, byte-wise sorted.
	Members []string
}

// IsCollection reports whether the entity was expanded from a collection.
func (e *Entity) IsCollection() bool {
	return e.Owner != ""
}

// Collection returns the expanded name of the local collection.
func (e *Entity) Collection(local string) (string, bool) {
	for _, c := range e.Collections {
		if c.Local == local {
			return c.Entity, true
		}
	}
	return "", false
}

// Model is the resolved schema.
type Model struct {
	// Entities in dependency order; Entities[i].Index == i.
	Entities []*Entity
	// Levels holds the entity names of each stratum.
	Levels [][]string
	// MappingTables maps each junction to its two members.
	MappingTables map[string][]string
	// Owners maps each collection entity to its immediate owner.
	Owners map[string]string
	// Edges are the dependency edges the order was computed from.
	Edges []Edge

	byName map[string]*Entity
}

// Entity returns the named entity.
func (m *Model) Entity(name string) (*Entity, bool) {
	e, ok := m.byName[name]
	return e, ok
}

// Names returns the entity names in dependency order.
func (m *Model) Names() []string {
	names := make([]string, len(m.Entities))
	for i, e := range m.Entities {
		names[i] = e.Name
	}
	return names
}

// Roots returns the entities without dependencies.
func (m *Model) Roots() []*Entity {
	var roots []*Entity
	for _, e := range m.Entities {
		if e.Level == 0 {
			roots = append(roots, e)
		}
	}
	return roots
}

// Junctions returns the junction entities in dependency order.
func (m *Model) Junctions() []*Entity {
	var out []*Entity
	for _, e := range m.Entities {
		if e.Junction {
			out = append(out, e)
		}
	}
	return out
}

// Resolve expands, relates, sorts and composes s.
//
// Definition errors (entity or junction name collisions, unknown parents
// or has-many targets, inheritance and ownership cycles) are returned as
// *schema.DefinitionError. A cycle that still reaches the sorter is an
// internal error, returned as *schema.ResolutionError wrapping
// schema.ErrCyclicSchema.
func Resolve(s schema.Schema, opts ...Option) (*Model, error) {
	cfg := &config{inflector: naming.Default}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	x, err := Expand(s)
	if err != nil {
		return nil, err
	}

	mr := NewManyResolver()
	for _, name := range x.Order {
		if err := mr.Add(name, x.Entities[name].Definition); err != nil {
			return nil, err
		}
	}
	if err := mr.Validate(); err != nil {
		return nil, err
	}
	tables, err := mr.MappingTables()
	if err != nil {
		return nil, err
	}
	junctions, err := mr.Junctions()
	if err != nil {
		return nil, err
	}

	g := buildGraph(x, junctions, tables)
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	comp := NewCompositor(x.Entities)
	m := &Model{
		Levels:        levels,
		MappingTables: tables,
		Owners:        maps.Clone(x.Owners),
		Edges:         g.Edges(),
		byName:        make(map[string]*Entity, len(x.Order)+len(junctions)),
	}
	for lvl, names := range levels {
		for _, name := range names {
			e, err := assemble(name, x, mr, comp, tables, cfg.inflector)
			if err != nil {
				return nil, err
			}
			e.Index = len(m.Entities)
			e.Level = lvl
			m.Entities = append(m.Entities, e)
			m.byName[name] = e
		}
	}
	return m, nil
}

func buildGraph(x *Expansion, junctions []string, tables map[string][]string) *Graph {
	g := NewGraph()
	for _, name := range x.Order {
		g.AddNode(name)
	}
	for _, j := range junctions {
		g.AddNode(j)
	}
	for _, name := range x.Order {
		e := x.Entities[name]
		if e.Owner != "" {
			g.AddEdge(name, e.Owner, EdgeOwnership)
		}
		if p := e.Definition.Parent; p != "" {
			g.AddEdge(name, p, EdgeInheritance)
		}
	}
	for _, j := range junctions {
		for _, member := range tables[j] {
			g.AddEdge(j, member, EdgeJunction)
		}
	}
	return g
}

func assemble(name string, x *Expansion, mr *ManyResolver, comp *Compositor, tables map[string][]string, inf naming.Inflector) (*Entity, error) {
	e := &Entity{
		Name:     name,
		Singular: inf.Singular(name),
		Plural:   inf.Plural(name),
		Pascal:   inf.Pascal(name),
		Label:    inf.Label(name),
	}

	if members, ok := tables[name]; ok {
		e.Junction = true
		e.Members = slices.Clone(members)
		e.Composed = ComposedFields{}
		e.LocalName = name
		return e, nil
	}

	xe := x.Entities[name]
	composed, err := comp.Compose(name)
	if err != nil {
		return nil, err
	}
	hasMany, err := mr.HasManyOf(name)
	if err != nil {
		return nil, err
	}

	e.Fields = slices.Clone(xe.Definition.Fields)
	e.Parent = xe.Definition.Parent
	e.Composed = composed
	e.Owner = xe.Owner
	e.OwnerChain = x.OwnerChain(name)
	for i, o := range e.OwnerChain {
		owner := ""
		if i+1 < len(e.OwnerChain) {
			owner = e.OwnerChain[i+1]
		}
		e.OwnerBases = append(e.OwnerBases, schema.LocalName(owner, o))
	}
	e.LocalName = xe.LocalName
	e.Collections = slices.Clone(xe.Collections)
	e.HasMany = hasMany
	return e, nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

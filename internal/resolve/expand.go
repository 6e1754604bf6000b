package resolve

import (
	"fmt"
	"strings"

	"github.com/pthm/minazuki/pkg/schema"
)

// Expanded is an entity after collection expansion.
type Expanded struct {
	// Name is the global name. For collections it is synthesized from the
	// owner's name and LocalName.
	Name      string
	LocalName string
	// Owner is the name of the immediately containing entity, empty for
	// top-level entities.
	Owner string
	// Definition is the declared definition. Its Collections still carry
	// local names; use Collections for the expanded names.
	Definition  schema.EntityDefinition
	Collections []CollectionRef
}

// CollectionRef links a collection's local name to its expanded entity.
type CollectionRef struct {
	Local  string
	Entity string
}

// Expansion is the output of Expand.
type Expansion struct {
	// Order lists entity names breadth-first: top-level entities in
	// declaration order, then their collections level by level.
	Order    []string
	Entities map[string]*Expanded
	// Owners maps each collection entity to its immediate owner.
	Owners map[string]string
	// Deps maps each entity to the entities it depends on through
	// ownership and inheritance.
	Deps map[string][]string
}

// Entity returns the expanded entity with the given name.
func (x *Expansion) Entity(name string) (*Expanded, bool) {
	e, ok := x.Entities[name]
	return e, ok
}

type frontierItem struct {
	name  string
	owner string
	def   schema.EntityDefinition
}

// Expand flattens nested collections into top-level entities.
//
// The walk is breadth-first by levels: every entity of the current
// frontier is recorded with its inheritance edge, and each of its
// collections gets a synthesized name, an ownership edge and an owner
// entry before joining the next frontier. Expansion stops when a
// frontier declares no collections.
//
// Expand fails with a *schema.DefinitionError when two entities end up
// with the same name, when a parent reference names no expanded entity,
// or when inheritance and ownership edges form a cycle.
func Expand(s schema.Schema) (*Expansion, error) {
	x := &Expansion{
		Entities: make(map[string]*Expanded),
		Owners:   make(map[string]string),
		Deps:     make(map[string][]string),
	}

	frontier := make([]frontierItem, 0, len(s.Entities))
	for _, d := range s.Entities {
		frontier = append(frontier, frontierItem{name: d.Name, def: d})
	}

	for len(frontier) > 0 {
		var next []frontierItem
		for _, item := range frontier {
			if err := x.record(item); err != nil {
				return nil, err
			}
			for _, c := range item.def.Collections {
				next = append(next, frontierItem{
					name:  schema.CollectionName(item.name, c.Name),
					owner: item.name,
					def:   c,
				})
			}
		}
		frontier = next
	}

	if err := x.checkParents(); err != nil {
		return nil, err
	}
	if err := x.checkDeps(); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *Expansion) record(item frontierItem) error {
	if prev, exists := x.Entities[item.name]; exists {
		msg := "entity defined more than once"
		if item.owner != "" || prev.Owner != "" {
			msg = fmt.Sprintf("synthesized name collides with %s", describe(prev))
		}
		return schema.NewDefinitionError(item.name, "", msg, nil)
	}

	e := &Expanded{
		Name:       item.name,
		LocalName:  item.def.Name,
		Owner:      item.owner,
		Definition: item.def,
	}
	for _, c := range item.def.Collections {
		e.Collections = append(e.Collections, CollectionRef{
			Local:  c.Name,
			Entity: schema.CollectionName(item.name, c.Name),
		})
	}

	x.Order = append(x.Order, item.name)
	x.Entities[item.name] = e
	if item.owner != "" {
		x.Owners[item.name] = item.owner
		x.addDep(item.name, item.owner)
	}
	if item.def.Parent != "" {
		x.addDep(item.name, item.def.Parent)
	}
	return nil
}

func (x *Expansion) addDep(from, to string) {
	for _, d := range x.Deps[from] {
		if d == to {
			return
		}
	}
	x.Deps[from] = append(x.Deps[from], to)
}

// checkParents verifies that every parent reference resolves and that the
// inheritance forest has no cycles.
func (x *Expansion) checkParents() error {
	for _, name := range x.Order {
		parent := x.Entities[name].Definition.Parent
		if parent == "" {
			continue
		}
		if _, ok := x.Entities[parent]; !ok {
			return schema.NewDefinitionError(name, "",
				fmt.Sprintf("malformed parent reference %q", parent), schema.ErrUnknownEntity)
		}
	}

	// Each chain is walked once; a node seen earlier in the same walk
	// closes a cycle.
	done := make(map[string]bool, len(x.Order))
	for _, name := range x.Order {
		var path []string
		onPath := make(map[string]int)
		for n := name; n != "" && !done[n]; n = x.Entities[n].Definition.Parent {
			if i, seen := onPath[n]; seen {
				cycle := append(path[i:], n)
				return schema.NewDefinitionError(n, "",
					"inheritance cycle: "+strings.Join(cycle, " → "), schema.ErrCyclicSchema)
			}
			onPath[n] = len(path)
			path = append(path, n)
		}
		for _, n := range path {
			done[n] = true
		}
	}
	return nil
}

// checkDeps rejects cycles that mix inheritance and ownership, such as an
// owner extending one of its own collections. Pure inheritance cycles are
// reported by checkParents first.
func (x *Expansion) checkDeps() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	type frame struct {
		name string
		next int
	}

	state := make(map[string]int, len(x.Order))
	for _, root := range x.Order {
		if state[root] != unvisited {
			continue
		}
		state[root] = visiting
		stack := []frame{{name: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := x.Deps[top.name]
			if top.next == len(deps) {
				state[top.name] = visited
				stack = stack[:len(stack)-1]
				continue
			}
			dep := deps[top.next]
			top.next++

			switch state[dep] {
			case visiting:
				var cycle []string
				for i := range stack {
					if stack[i].name == dep || len(cycle) > 0 {
						cycle = append(cycle, stack[i].name)
					}
				}
				cycle = append(cycle, dep)
				return schema.NewDefinitionError(dep, "",
					"cycle through inheritance and ownership: "+strings.Join(cycle, " → "), schema.ErrCyclicSchema)
			case unvisited:
				state[dep] = visiting
				stack = append(stack, frame{name: dep})
			}
		}
	}
	return nil
}

// Ancestors returns the inheritance chain of name, root first, excluding
// name itself.
func (x *Expansion) Ancestors(name string) []string {
	var chain []string
	e, ok := x.Entities[name]
	for ok && e.Definition.Parent != "" {
		chain = append([]string{e.Definition.Parent}, chain...)
		e, ok = x.Entities[e.Definition.Parent]
	}
	return chain
}

// OwnerChain returns the owners of name, immediate owner first.
func (x *Expansion) OwnerChain(name string) []string {
	var chain []string
	for o := x.Owners[name]; o != ""; o = x.Owners[o] {
		chain = append(chain, o)
	}
	return chain
}

func describe(e *Expanded) string {
	if e.Owner == "" {
		return fmt.Sprintf("top-level entity %q", e.Name)
	}
	return fmt.Sprintf("collection %q of %q", e.LocalName, e.Owner)
}
